package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"treasurechain/config"
	"treasurechain/core/types"
	"treasurechain/crypto"
	nativecommon "treasurechain/native/common"
	"treasurechain/native/params"
	"treasurechain/native/treasure"
)

func decodePayload(data []byte, out interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}

func parseAccount(field, raw string) ([20]byte, error) {
	addr, err := crypto.ParseAccount(raw)
	if err != nil {
		return addr, fmt.Errorf("%w: %s: %v", nativecommon.ErrValidation, field, err)
	}
	return addr, nil
}

// accountOr resolves raw, falling back to def when raw is empty.
func accountOr(field, raw string, def [20]byte) ([20]byte, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	return parseAccount(field, raw)
}

func (p *Processor) dispatch(txType types.TxType, signer [20]byte, data []byte) error {
	auth := nativecommon.NewAuthority(signer)
	switch txType {
	case types.TxTypeOpenAccount:
		// The account was opened while checking the nonce.
		return nil
	case types.TxTypeTokenCreate:
		return p.applyTokenCreate(auth, data)
	case types.TxTypeTokenIssue:
		return p.applyTokenIssue(auth, data)
	case types.TxTypeTokenTransfer:
		return p.applyTokenTransfer(auth, signer, data)
	case types.TxTypeTokenRetire:
		return p.applyTokenRetire(auth, data)
	case types.TxTypeAddTreasure:
		return p.applyAddTreasure(auth, signer, data)
	case types.TxTypeModTreasure:
		return p.applyModTreasure(auth, signer, data)
	case types.TxTypeEraseTreasure:
		var payload types.KeyPayload
		if err := decodePayload(data, &payload); err != nil {
			return err
		}
		return p.treasure.EraseTreasure(auth, signer, payload.Key)
	case types.TxTypeRenewExpiration:
		var payload types.KeyPayload
		if err := decodePayload(data, &payload); err != nil {
			return err
		}
		return p.treasure.RenewExpiration(auth, payload.Key)
	case types.TxTypeAddAward:
		return p.applyAddAward(auth, signer, data)
	case types.TxTypeEraseAward:
		var payload types.KeyPayload
		if err := decodePayload(data, &payload); err != nil {
			return err
		}
		return p.treasure.EraseAward(auth, signer, payload.Key)
	case types.TxTypeSettle:
		return p.applySettle(auth, data)
	case types.TxTypeEraseCheckTicket, types.TxTypeEraseUnlockTicket:
		var payload types.KeyPayload
		if err := decodePayload(data, &payload); err != nil {
			return err
		}
		kind := treasure.TicketCheck
		if txType == types.TxTypeEraseUnlockTicket {
			kind = treasure.TicketUnlock
		}
		return p.treasure.EraseTicket(auth, kind, payload.Key)
	case types.TxTypeEraseResult:
		var payload types.KeyPayload
		if err := decodePayload(data, &payload); err != nil {
			return err
		}
		return p.treasure.EraseResult(auth, payload.Key)
	case types.TxTypeAddSetting, types.TxTypeModSetting:
		return p.applySetting(auth, txType, data)
	case types.TxTypeEraseSetting:
		var payload types.EraseSettingPayload
		if err := decodePayload(data, &payload); err != nil {
			return err
		}
		return p.params.EraseSetting(auth, payload.Key)
	case types.TxTypeSetPauses:
		var payload types.PausesPayload
		if err := decodePayload(data, &payload); err != nil {
			return err
		}
		return p.params.ApplyPauses(auth, config.Pauses{
			Token:      payload.Token,
			Treasure:   payload.Treasure,
			Settlement: payload.Settlement,
		})
	case types.TxTypeUpsertCrew:
		var payload types.CrewPayload
		if err := decodePayload(data, &payload); err != nil {
			return err
		}
		return p.treasure.UpsertCrew(auth, signer, payload.ImageHash, payload.Quote)
	case types.TxTypeEraseCrew:
		return p.treasure.EraseCrew(auth, signer)
	default:
		return fmt.Errorf("%w: 0x%02x", ErrUnknownAction, byte(txType))
	}
}

func (p *Processor) applyTokenCreate(auth nativecommon.Authority, data []byte) error {
	var payload types.TokenCreatePayload
	if err := decodePayload(data, &payload); err != nil {
		return err
	}
	issuer, err := parseAccount("issuer", payload.Issuer)
	if err != nil {
		return err
	}
	return p.tokens.Create(auth, issuer, payload.MaxSupply)
}

func (p *Processor) applyTokenIssue(auth nativecommon.Authority, data []byte) error {
	var payload types.TokenIssuePayload
	if err := decodePayload(data, &payload); err != nil {
		return err
	}
	to, err := parseAccount("to", payload.To)
	if err != nil {
		return err
	}
	return p.tokens.Issue(auth, to, payload.Quantity, payload.Memo)
}

func (p *Processor) applyTokenTransfer(auth nativecommon.Authority, signer [20]byte, data []byte) error {
	var payload types.TokenTransferPayload
	if err := decodePayload(data, &payload); err != nil {
		return err
	}
	to, err := parseAccount("to", payload.To)
	if err != nil {
		return err
	}
	return p.tokens.Transfer(auth, signer, to, payload.Quantity, payload.Memo)
}

func (p *Processor) applyTokenRetire(auth nativecommon.Authority, data []byte) error {
	var payload types.TokenRetirePayload
	if err := decodePayload(data, &payload); err != nil {
		return err
	}
	return p.tokens.Retire(auth, payload.Quantity, payload.Memo)
}

func (p *Processor) applyAddTreasure(auth nativecommon.Authority, signer [20]byte, data []byte) error {
	var payload types.AddTreasurePayload
	if err := decodePayload(data, &payload); err != nil {
		return err
	}
	owner, err := accountOr("owner", payload.Owner, signer)
	if err != nil {
		return err
	}
	_, err = p.treasure.AddTreasure(auth, signer, treasure.AddTreasureRequest{
		Owner:     owner,
		Title:     payload.Title,
		ImageURL:  payload.ImageURL,
		Latitude:  payload.Latitude,
		Longitude: payload.Longitude,
		Secret:    payload.Secret,
	})
	return err
}

func (p *Processor) applyModTreasure(auth nativecommon.Authority, signer [20]byte, data []byte) error {
	var payload types.ModTreasurePayload
	if err := decodePayload(data, &payload); err != nil {
		return err
	}
	return p.treasure.ModTreasure(auth, signer, payload.Key, treasure.TreasureUpdate{
		Title:       payload.Title,
		Description: payload.Description,
		ImageURL:    payload.ImageURL,
		VideoURL:    payload.VideoURL,
		MapURL:      payload.MapURL,
		Category:    payload.Category,
		Level:       payload.Level,
	})
}

func (p *Processor) applyAddAward(auth nativecommon.Authority, signer [20]byte, data []byte) error {
	var payload types.AddAwardPayload
	if err := decodePayload(data, &payload); err != nil {
		return err
	}
	owner, err := accountOr("owner", payload.Owner, signer)
	if err != nil {
		return err
	}
	_, err = p.treasure.AddAward(auth, signer, treasure.AddAwardRequest{
		Owner:       owner,
		TreasureKey: payload.TreasureKey,
		Title:       payload.Title,
		ImageURL:    payload.ImageURL,
		OrderURL:    payload.OrderURL,
		ValueX2:     payload.ValueX2,
		Fee:         payload.Fee,
	})
	return err
}

func (p *Processor) applySettle(auth nativecommon.Authority, data []byte) error {
	var payload types.SettlePayload
	if err := decodePayload(data, &payload); err != nil {
		return err
	}
	finder, err := parseAccount("finder", payload.Finder)
	if err != nil {
		return err
	}
	_, err = p.treasure.Settle(auth, treasure.SettleRequest{
		TreasureKey:   payload.TreasureKey,
		Secret:        payload.Secret,
		VideoViews:    payload.VideoViews,
		TotalTurnover: payload.TotalTurnover,
		Finder:        finder,
	})
	return err
}

func (p *Processor) applySetting(auth nativecommon.Authority, txType types.TxType, data []byte) error {
	var payload types.SettingPayload
	if err := decodePayload(data, &payload); err != nil {
		return err
	}
	setting := params.Setting{
		Key:         payload.Key,
		StringValue: payload.StringValue,
		AssetValue:  payload.AssetValue,
		UintValue:   payload.UintValue,
	}
	if txType == types.TxTypeAddSetting {
		return p.params.AddSetting(auth, setting)
	}
	return p.params.ModSetting(auth, setting)
}
