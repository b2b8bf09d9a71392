package main

import (
	"io"

	"github.com/ungetc/dust/internal/cli"
	"github.com/ungetc/dust/pkg/dust"
	"github.com/ungetc/dust/pkg/fs"
)

// appContext carries the dependencies every subcommand needs, assembled
// once in main and passed explicitly rather than read from package-level
// globals.
type appContext struct {
	fsys     fs.FS
	stdin    io.Reader
	storeCfg dust.Config
	cliCfg   cliConfig
}

// allCommands returns every subcommand in display order.
func allCommands(app *appContext) []*cli.Command {
	return []*cli.Command{
		archiveCmd(app),
		extractCmd(app),
		listCmd(app),
		checkCmd(app),
		rebuildIndexCmd(app),
		inspectCmd(app),
	}
}
