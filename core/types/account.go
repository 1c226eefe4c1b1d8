package types

// Account is the per-address record created the first time an address signs a
// transaction or is named in genesis. Its existence makes the address a valid
// transfer recipient.
type Account struct {
	Nonce     uint64 `json:"nonce"`
	CreatedAt uint64 `json:"createdAt"`
}
