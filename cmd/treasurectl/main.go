package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

const (
	defaultRPC     = "http://localhost:8080"
	defaultPassEnv = "TREASURE_KEY_PASS"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "treasurectl",
		Usage: "manage keys, sign actions and query a treasured node",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "rpc", Value: defaultRPC, EnvVars: []string{"TREASURE_RPC"}, Usage: "treasured HTTP endpoint"},
			&cli.StringFlag{Name: "key", EnvVars: []string{"TREASURE_KEY"}, Usage: "path to the signing keystore"},
			&cli.StringFlag{Name: "pass-env", Value: defaultPassEnv, Usage: "environment variable holding the keystore passphrase"},
		},
		Commands: []*cli.Command{
			commandKeygen(),
			commandAddress(),
			commandSend(),
			commandTransfer(),
			commandCheck(),
			commandUnlock(),
			commandActivateAward(),
			commandAddTreasure(),
			commandSettle(),
			commandSetting(),
			commandPauses(),
			commandGet(),
		},
	}
}

func printJSON(c *cli.Context, v interface{}) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
