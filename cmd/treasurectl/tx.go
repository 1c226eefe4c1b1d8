package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"treasurechain/core/types"
	"treasurechain/native/treasure"
)

func signAndSubmit(c *cli.Context, txType types.TxType, payload interface{}) error {
	key, err := loadKey(c)
	if err != nil {
		return err
	}
	api := newClient(c.String("rpc"))
	nonce, err := api.nonce(c.Context, key.PubKey().Address().String())
	if err != nil {
		return fmt.Errorf("fetch nonce: %w", err)
	}
	tx, err := types.NewTransaction(txType, nonce, payload)
	if err != nil {
		return err
	}
	if err := tx.Sign(key.PrivateKey); err != nil {
		return err
	}
	receipt, err := api.submit(c.Context, tx)
	if err != nil {
		return err
	}
	return printJSON(c, receipt)
}

func parseAssetFlag(c *cli.Context, name string) (types.Asset, error) {
	asset, err := types.ParseAsset(c.String(name))
	if err != nil {
		return types.Asset{}, fmt.Errorf("--%s: %w", name, err)
	}
	return asset, nil
}

func checkMemo(treasureKey uint64) string {
	return fmt.Sprintf("%s%d", treasure.MemoCheckTreasure, treasureKey)
}

func unlockMemo(treasureKey uint64, secret string) string {
	return fmt.Sprintf("%s%d-%s", treasure.MemoUnlock, treasureKey, secret)
}

func activateMemo(awardKey uint64) string {
	return fmt.Sprintf("%s%d", treasure.MemoActivateAward, awardKey)
}

func commandSend() *cli.Command {
	return &cli.Command{
		Name:      "send",
		Usage:     "sign and submit any action with a raw JSON payload",
		ArgsUsage: "<action> <json>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("usage: send <action> <json>")
			}
			txType, ok := types.ParseTxType(c.Args().Get(0))
			if !ok {
				return fmt.Errorf("unknown action %q", c.Args().Get(0))
			}
			raw := json.RawMessage(c.Args().Get(1))
			if !json.Valid(raw) {
				return fmt.Errorf("payload is not valid JSON")
			}
			return signAndSubmit(c, txType, raw)
		},
	}
}

func commandTransfer() *cli.Command {
	return &cli.Command{
		Name:  "transfer",
		Usage: "transfer tokens from the signer",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "to", Required: true},
			&cli.StringFlag{Name: "quantity", Required: true, Usage: `e.g. "1.0000 EOS"`},
			&cli.StringFlag{Name: "memo"},
		},
		Action: func(c *cli.Context) error {
			quantity, err := parseAssetFlag(c, "quantity")
			if err != nil {
				return err
			}
			return signAndSubmit(c, types.TxTypeTokenTransfer, types.TokenTransferPayload{
				To:       c.String("to"),
				Quantity: quantity,
				Memo:     c.String("memo"),
			})
		},
	}
}

var contractFlag = &cli.StringFlag{Name: "contract", Required: true, EnvVars: []string{"TREASURE_CONTRACT"}, Usage: "treasure contract account"}

func commandCheck() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "buy a check ticket for a treasure",
		Flags: []cli.Flag{
			contractFlag,
			&cli.Uint64Flag{Name: "treasure", Required: true},
			&cli.StringFlag{Name: "price", Required: true, Usage: "current check price, see GET /prices"},
		},
		Action: func(c *cli.Context) error {
			price, err := parseAssetFlag(c, "price")
			if err != nil {
				return err
			}
			return signAndSubmit(c, types.TxTypeTokenTransfer, types.TokenTransferPayload{
				To:       c.String("contract"),
				Quantity: price,
				Memo:     checkMemo(c.Uint64("treasure")),
			})
		},
	}
}

func commandUnlock() *cli.Command {
	return &cli.Command{
		Name:  "unlock",
		Usage: "buy an unlock ticket carrying a secret guess",
		Flags: []cli.Flag{
			contractFlag,
			&cli.Uint64Flag{Name: "treasure", Required: true},
			&cli.StringFlag{Name: "secret", Required: true},
			&cli.StringFlag{Name: "price", Required: true, Usage: "current unlock price, see GET /prices"},
		},
		Action: func(c *cli.Context) error {
			price, err := parseAssetFlag(c, "price")
			if err != nil {
				return err
			}
			return signAndSubmit(c, types.TxTypeTokenTransfer, types.TokenTransferPayload{
				To:       c.String("contract"),
				Quantity: price,
				Memo:     unlockMemo(c.Uint64("treasure"), c.String("secret")),
			})
		},
	}
}

func commandActivateAward() *cli.Command {
	return &cli.Command{
		Name:  "activate-award",
		Usage: "pay a queued sponsor award",
		Flags: []cli.Flag{
			contractFlag,
			&cli.Uint64Flag{Name: "award", Required: true},
			&cli.StringFlag{Name: "amount", Required: true, Usage: "valueX2 plus fee"},
		},
		Action: func(c *cli.Context) error {
			amount, err := parseAssetFlag(c, "amount")
			if err != nil {
				return err
			}
			return signAndSubmit(c, types.TxTypeTokenTransfer, types.TokenTransferPayload{
				To:       c.String("contract"),
				Quantity: amount,
				Memo:     activateMemo(c.Uint64("award")),
			})
		},
	}
}

func commandAddTreasure() *cli.Command {
	return &cli.Command{
		Name:  "add-treasure",
		Usage: "create a treasure owned by the signer or --owner",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "owner"},
			&cli.StringFlag{Name: "title", Required: true},
			&cli.StringFlag{Name: "image", Required: true},
			&cli.Float64Flag{Name: "lat", Required: true},
			&cli.Float64Flag{Name: "lon", Required: true},
			&cli.StringFlag{Name: "secret"},
		},
		Action: func(c *cli.Context) error {
			return signAndSubmit(c, types.TxTypeAddTreasure, types.AddTreasurePayload{
				Owner:     c.String("owner"),
				Title:     c.String("title"),
				ImageURL:  c.String("image"),
				Latitude:  c.Float64("lat"),
				Longitude: c.Float64("lon"),
				Secret:    c.String("secret"),
			})
		},
	}
}

func commandSettle() *cli.Command {
	return &cli.Command{
		Name:  "settle",
		Usage: "oracle settlement of a treasure chest",
		Flags: []cli.Flag{
			&cli.Uint64Flag{Name: "treasure", Required: true},
			&cli.StringFlag{Name: "finder", Required: true},
			&cli.Uint64Flag{Name: "views"},
			&cli.StringFlag{Name: "turnover", Required: true},
			&cli.StringFlag{Name: "secret"},
		},
		Action: func(c *cli.Context) error {
			turnover, err := parseAssetFlag(c, "turnover")
			if err != nil {
				return err
			}
			return signAndSubmit(c, types.TxTypeSettle, types.SettlePayload{
				TreasureKey:   c.Uint64("treasure"),
				Secret:        c.String("secret"),
				VideoViews:    c.Uint64("views"),
				TotalTurnover: turnover,
				Finder:        c.String("finder"),
			})
		},
	}
}

func commandSetting() *cli.Command {
	return &cli.Command{
		Name:      "setting",
		Usage:     "add, modify or erase a parameter",
		ArgsUsage: "add|mod|erase",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "key", Required: true},
			&cli.StringFlag{Name: "string"},
			&cli.StringFlag{Name: "asset"},
			&cli.UintFlag{Name: "uint"},
		},
		Action: func(c *cli.Context) error {
			op := strings.ToLower(c.Args().First())
			if op == "erase" {
				return signAndSubmit(c, types.TxTypeEraseSetting, types.EraseSettingPayload{Key: c.String("key")})
			}
			payload := types.SettingPayload{
				Key:         c.String("key"),
				StringValue: c.String("string"),
				UintValue:   uint32(c.Uint("uint")),
			}
			if c.IsSet("asset") {
				asset, err := parseAssetFlag(c, "asset")
				if err != nil {
					return err
				}
				payload.AssetValue = &asset
			}
			switch op {
			case "add":
				return signAndSubmit(c, types.TxTypeAddSetting, payload)
			case "mod":
				return signAndSubmit(c, types.TxTypeModSetting, payload)
			default:
				return fmt.Errorf("usage: setting add|mod|erase --key ...")
			}
		},
	}
}

func commandPauses() *cli.Command {
	return &cli.Command{
		Name:  "pauses",
		Usage: "replace the module pause switches",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "token"},
			&cli.BoolFlag{Name: "treasure"},
			&cli.BoolFlag{Name: "settlement"},
		},
		Action: func(c *cli.Context) error {
			return signAndSubmit(c, types.TxTypeSetPauses, types.PausesPayload{
				Token:      c.Bool("token"),
				Treasure:   c.Bool("treasure"),
				Settlement: c.Bool("settlement"),
			})
		},
	}
}

func commandGet() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "query a read endpoint, e.g. get /treasures/1",
		ArgsUsage: "<path>",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if !strings.HasPrefix(path, "/") {
				return fmt.Errorf("path must start with /")
			}
			raw, err := newClient(c.String("rpc")).getRaw(c.Context, path)
			if err != nil {
				return err
			}
			return printJSON(c, raw)
		},
	}
}
