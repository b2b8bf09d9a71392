package main

import (
	"fmt"
	"os"

	"github.com/ungetc/dust/internal/cli"
	"github.com/ungetc/dust/pkg/dust"

	flag "github.com/spf13/pflag"
)

func listCmd(app *appContext) *cli.Command {
	flags := flag.NewFlagSet("list", flag.ContinueOnError)

	return &cli.Command{
		Flags: flags,
		Usage: "list <archive-file>",
		Short: "print one line per archive record",
		Exec: func(o *cli.IO, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("list requires exactly one argument: <archive-file>")
			}

			archiveFile, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open archive %q: %w", args[0], err)
			}
			defer archiveFile.Close()

			root, err := dust.ReadArchive(archiveFile)
			if err != nil {
				return err
			}

			store, err := dust.OpenReadOnly(app.fsys, app.storeCfg)
			if err != nil {
				return err
			}
			defer store.Close()

			return dust.DecodeListing(store, root, func(entry dust.Entry) error {
				o.Println(describeEntry(entry))
				return nil
			})
		},
	}
}

func describeEntry(e dust.Entry) string {
	switch {
	case e.IsFile():
		return fmt.Sprintf("file  %06o %s  %s", e.Permissions, e.Fingerprint, e.Path)
	case e.IsDirectory():
		return fmt.Sprintf("dir   %06o %s  %s", e.Permissions, "--------------------------------", e.Path)
	case e.IsSymlink():
		return fmt.Sprintf("link  %06o %s -> %s", e.Permissions, e.Path, e.Target)
	default:
		return fmt.Sprintf("?     %06o %s", e.Permissions, e.Path)
	}
}
