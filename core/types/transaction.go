package types

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
)

// TxType defines the action a transaction carries.
type TxType byte

const (
	TxTypeOpenAccount TxType = 0x01 // Registers the signer so it can receive transfers

	TxTypeTokenCreate   TxType = 0x10
	TxTypeTokenIssue    TxType = 0x11
	TxTypeTokenTransfer TxType = 0x12
	TxTypeTokenRetire   TxType = 0x13

	TxTypeAddTreasure     TxType = 0x20
	TxTypeModTreasure     TxType = 0x21
	TxTypeEraseTreasure   TxType = 0x22
	TxTypeRenewExpiration TxType = 0x23

	TxTypeAddAward   TxType = 0x30
	TxTypeEraseAward TxType = 0x31

	TxTypeSettle            TxType = 0x40 // Oracle settlement of a treasure chest
	TxTypeEraseCheckTicket  TxType = 0x41
	TxTypeEraseUnlockTicket TxType = 0x42
	TxTypeEraseResult       TxType = 0x43

	TxTypeAddSetting   TxType = 0x50
	TxTypeModSetting   TxType = 0x51
	TxTypeEraseSetting TxType = 0x52
	TxTypeSetPauses    TxType = 0x53

	TxTypeUpsertCrew TxType = 0x60
	TxTypeEraseCrew  TxType = 0x61
)

var txTypeNames = map[TxType]string{
	TxTypeOpenAccount:       "openaccount",
	TxTypeTokenCreate:       "create",
	TxTypeTokenIssue:        "issue",
	TxTypeTokenTransfer:     "transfer",
	TxTypeTokenRetire:       "retire",
	TxTypeAddTreasure:       "addtreasure",
	TxTypeModTreasure:       "modtreasure",
	TxTypeEraseTreasure:     "erasetreasure",
	TxTypeRenewExpiration:   "renewexpiration",
	TxTypeAddAward:          "addaward",
	TxTypeEraseAward:        "eraseaward",
	TxTypeSettle:            "settle",
	TxTypeEraseCheckTicket:  "erasecheck",
	TxTypeEraseUnlockTicket: "eraseunlock",
	TxTypeEraseResult:       "eraseresult",
	TxTypeAddSetting:        "addsetting",
	TxTypeModSetting:        "modsetting",
	TxTypeEraseSetting:      "erasesetting",
	TxTypeSetPauses:         "setpauses",
	TxTypeUpsertCrew:        "upsertcrew",
	TxTypeEraseCrew:         "erasecrew",
}

// String returns the action name used in logs and metrics.
func (t TxType) String() string {
	if name, ok := txTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseTxType resolves an action name back to its type.
func ParseTxType(name string) (TxType, bool) {
	for t, n := range txTypeNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

var errUnsigned = errors.New("transaction: missing signature")

// Transaction is a signed action. Data carries the JSON encoded action payload
// and the recovered signer is the authorising account.
type Transaction struct {
	Type  TxType          `json:"type"`
	Nonce uint64          `json:"nonce"`
	Data  json.RawMessage `json:"data"`

	R *big.Int `json:"r"`
	S *big.Int `json:"s"`
	V *big.Int `json:"v"`

	from []byte
}

// NewTransaction encodes the payload and returns an unsigned transaction.
func NewTransaction(txType TxType, nonce uint64, payload interface{}) (*Transaction, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Transaction{Type: txType, Nonce: nonce, Data: data}, nil
}

// Hash covers the type, nonce and payload.
func (tx *Transaction) Hash() ([]byte, error) {
	txData := struct {
		Type  TxType
		Nonce uint64
		Data  []byte
	}{tx.Type, tx.Nonce, tx.Data}

	b, err := json.Marshal(txData)
	if err != nil {
		return nil, err
	}
	hash := sha256.Sum256(b)
	return hash[:], nil
}

// Sign signs the transaction hash with the supplied secp256k1 key.
func (tx *Transaction) Sign(privKey *ecdsa.PrivateKey) error {
	hash, err := tx.Hash()
	if err != nil {
		return err
	}
	sig, err := crypto.Sign(hash, privKey)
	if err != nil {
		return err
	}
	tx.R = new(big.Int).SetBytes(sig[:32])
	tx.S = new(big.Int).SetBytes(sig[32:64])
	tx.V = new(big.Int).SetBytes([]byte{sig[64] + 27})
	tx.from = nil
	return nil
}

// From recovers the signer address from the signature.
func (tx *Transaction) From() ([20]byte, error) {
	var out [20]byte
	if tx.from != nil {
		copy(out[:], tx.from)
		return out, nil
	}
	if tx.R == nil || tx.S == nil || tx.V == nil {
		return out, errUnsigned
	}
	hash, err := tx.Hash()
	if err != nil {
		return out, err
	}
	rBytes, sBytes := tx.R.Bytes(), tx.S.Bytes()
	if len(rBytes) > 32 || len(sBytes) > 32 || tx.V.Uint64() < 27 {
		return out, errors.New("transaction: malformed signature")
	}
	sig := make([]byte, 65)
	copy(sig[32-len(rBytes):32], rBytes)
	copy(sig[64-len(sBytes):64], sBytes)
	sig[64] = byte(tx.V.Uint64() - 27)
	pubKey, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return out, err
	}
	tx.from = crypto.PubkeyToAddress(*pubKey).Bytes()
	copy(out[:], tx.from)
	return out, nil
}
