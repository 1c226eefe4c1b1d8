package types

// Receipt summarises a successfully applied transaction.
type Receipt struct {
	Height    uint64  `json:"height"`
	TxHash    []byte  `json:"txHash"`
	Type      string  `json:"type"`
	Signer    string  `json:"signer"`
	StateRoot []byte  `json:"stateRoot"`
	Timestamp int64   `json:"timestamp"`
	Events    []Event `json:"events"`
}
