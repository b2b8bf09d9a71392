package main

import (
	"bufio"
	"fmt"

	"github.com/ungetc/dust/internal/cli"
	"github.com/ungetc/dust/pkg/dust"

	flag "github.com/spf13/pflag"
)

func archiveCmd(app *appContext) *cli.Command {
	flags := flag.NewFlagSet("archive", flag.ContinueOnError)
	verbose := flags.BoolP("verbose", "v", false, "list each path on stderr once all paths are archived")

	return &cli.Command{
		Flags: flags,
		Usage: "archive [flags]",
		Short: "archive paths read from standard input",
		Long:  "Reads newline-separated paths from standard input, archives them, and writes archive bytes to standard output.",
		Exec: func(o *cli.IO, args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("archive takes no positional arguments")
			}

			store, err := dust.Open(app.fsys, app.storeCfg)
			if err != nil {
				return err
			}
			defer store.Close()

			var paths []string

			scanner := bufio.NewScanner(app.stdin)
			for scanner.Scan() {
				paths = append(paths, scanner.Text())
			}

			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read path list: %w", err)
			}

			// A failure on any single path aborts the whole job: no
			// archive bytes are written below, matching the rest of
			// the command's all-or-nothing error handling.
			root, err := dust.EncodeListing(store, paths)
			if err != nil {
				return err
			}

			if *verbose {
				for _, p := range paths {
					o.ErrPrintln("archived:", p)
				}
			}

			// WriteArchive's destination is the command's own stdout
			// writer, reached through the IO rather than os.Stdout
			// directly, so tests can capture it.
			return dust.WriteArchive(o.RawOut(), root)
		},
	}
}
