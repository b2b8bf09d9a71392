package main

import (
	"fmt"

	"github.com/ungetc/dust/internal/cli"
	"github.com/ungetc/dust/pkg/dust"

	flag "github.com/spf13/pflag"
)

func rebuildIndexCmd(app *appContext) *cli.Command {
	flags := flag.NewFlagSet("rebuild-index", flag.ContinueOnError)

	return &cli.Command{
		Flags: flags,
		Usage: "rebuild-index <new-index-path>",
		Short: "reconstruct an index from the arena alone",
		Long:  "Scans the configured arena and writes a fresh index to <new-index-path>, which must differ from the currently configured index.",
		Exec: func(o *cli.IO, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("rebuild-index requires exactly one argument: <new-index-path>")
			}

			newPath := args[0]

			if newPath == app.storeCfg.IndexPath {
				return fmt.Errorf("%w: new index path %q must differ from the configured index %q", dust.ErrLogic, newPath, app.storeCfg.IndexPath)
			}

			err := dust.RebuildIndex(app.fsys, app.storeCfg.ArenaPath, newPath, app.cliCfg.indexStrategy(), app.cliCfg.NumBuckets)
			if err != nil {
				return err
			}

			o.Println("rebuilt index at", newPath)

			return nil
		},
	}
}
