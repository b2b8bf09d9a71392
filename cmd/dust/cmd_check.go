package main

import (
	"fmt"

	"github.com/ungetc/dust/internal/cli"
	"github.com/ungetc/dust/pkg/dust"

	flag "github.com/spf13/pflag"
)

func checkCmd(app *appContext) *cli.Command {
	flags := flag.NewFlagSet("check", flag.ContinueOnError)

	return &cli.Command{
		Flags: flags,
		Usage: "check",
		Short: "verify every arena block's fingerprint and hunk trailer",
		Exec: func(o *cli.IO, args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("check takes no positional arguments")
			}

			store, err := dust.OpenArenaOnly(app.fsys, app.storeCfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Check(); err != nil {
				return err
			}

			o.Println("ok")

			return nil
		},
	}
}
