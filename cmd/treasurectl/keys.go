package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"treasurechain/cmd/internal/passphrase"
	"treasurechain/crypto"
)

func commandKeygen() *cli.Command {
	return &cli.Command{
		Name:  "keygen",
		Usage: "generate a secp256k1 key and write it to an encrypted keystore",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Required: true, Usage: "keystore output path"},
			&cli.BoolFlag{Name: "force", Usage: "overwrite an existing keystore"},
		},
		Action: func(c *cli.Context) error {
			path := c.String("out")
			if _, err := os.Stat(path); err == nil && !c.Bool("force") {
				return fmt.Errorf("%s already exists; pass --force to overwrite", path)
			}
			pass, err := passphrase.NewSource(c.String("pass-env")).Get()
			if err != nil {
				return err
			}
			key, err := crypto.GeneratePrivateKey()
			if err != nil {
				return err
			}
			if err := crypto.WriteKeyFile(path, key, pass); err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, key.PubKey().Address().String())
			return nil
		},
	}
}

func commandAddress() *cli.Command {
	return &cli.Command{
		Name:  "address",
		Usage: "print the address of the configured keystore",
		Action: func(c *cli.Context) error {
			key, err := loadKey(c)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, key.PubKey().Address().String())
			return nil
		},
	}
}

func loadKey(c *cli.Context) (*crypto.PrivateKey, error) {
	path := strings.TrimSpace(c.String("key"))
	if path == "" {
		return nil, errors.New("--key is required")
	}
	pass, err := passphrase.NewSource(c.String("pass-env")).Get()
	if err != nil {
		return nil, err
	}
	return crypto.ReadKeyFile(path, pass)
}
