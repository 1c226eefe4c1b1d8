package types

// Action payloads carried in Transaction.Data. Account fields accept either a
// bech32 "tb1..." address or 0x-prefixed hex.

type TokenCreatePayload struct {
	Issuer    string `json:"issuer"`
	MaxSupply Asset  `json:"maxSupply"`
}

type TokenIssuePayload struct {
	To       string `json:"to"`
	Quantity Asset  `json:"quantity"`
	Memo     string `json:"memo,omitempty"`
}

// TokenTransferPayload moves funds from the signer. Transfers to the treasure
// contract account are interpreted by the deposit hook through the memo.
type TokenTransferPayload struct {
	To       string `json:"to"`
	Quantity Asset  `json:"quantity"`
	Memo     string `json:"memo,omitempty"`
}

type TokenRetirePayload struct {
	Quantity Asset  `json:"quantity"`
	Memo     string `json:"memo,omitempty"`
}

// AddTreasurePayload creates a treasure. Owner defaults to the signer.
type AddTreasurePayload struct {
	Owner     string  `json:"owner,omitempty"`
	Title     string  `json:"title"`
	ImageURL  string  `json:"imageUrl"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Secret    string  `json:"secret,omitempty"`
}

type ModTreasurePayload struct {
	Key         uint64 `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl"`
	VideoURL    string `json:"videoUrl,omitempty"`
	MapURL      string `json:"mapUrl,omitempty"`
	Category    string `json:"category,omitempty"`
	Level       uint8  `json:"level"`
}

// KeyPayload addresses a single keyed record.
type KeyPayload struct {
	Key uint64 `json:"key"`
}

// AddAwardPayload queues a sponsor award. Owner defaults to the signer.
type AddAwardPayload struct {
	Owner       string `json:"owner,omitempty"`
	TreasureKey uint64 `json:"treasureKey"`
	Title       string `json:"title"`
	ImageURL    string `json:"imageUrl"`
	OrderURL    string `json:"orderUrl"`
	ValueX2     Asset  `json:"valueX2"`
	Fee         Asset  `json:"fee"`
}

type SettlePayload struct {
	TreasureKey   uint64 `json:"treasureKey"`
	Secret        string `json:"secret,omitempty"`
	VideoViews    uint64 `json:"videoViews"`
	TotalTurnover Asset  `json:"totalTurnover"`
	Finder        string `json:"finder"`
}

type SettingPayload struct {
	Key         string `json:"key"`
	StringValue string `json:"stringValue,omitempty"`
	AssetValue  *Asset `json:"assetValue,omitempty"`
	UintValue   uint32 `json:"uintValue,omitempty"`
}

type EraseSettingPayload struct {
	Key string `json:"key"`
}

type PausesPayload struct {
	Token      bool `json:"token"`
	Treasure   bool `json:"treasure"`
	Settlement bool `json:"settlement"`
}

type CrewPayload struct {
	ImageHash string `json:"imageHash"`
	Quote     string `json:"quote"`
}
