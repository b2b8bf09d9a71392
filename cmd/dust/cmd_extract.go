package main

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"github.com/ungetc/dust/internal/cli"
	"github.com/ungetc/dust/pkg/dust"

	flag "github.com/spf13/pflag"
)

func extractCmd(app *appContext) *cli.Command {
	flags := flag.NewFlagSet("extract", flag.ContinueOnError)
	dryRun := flags.Bool("dry-run", false, "verify the archive without writing files")

	return &cli.Command{
		Flags: flags,
		Usage: "extract <archive-file> [flags]",
		Short: "reconstruct paths from an archive",
		Long:  "Reconstructs the files, directories, and symlinks recorded in <archive-file>.",
		Exec: func(o *cli.IO, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("extract requires exactly one argument: <archive-file>")
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
				return extractEntry(o, store, entry, *dryRun)
			})
		},
	}
}

func extractEntry(o *cli.IO, store *dust.Store, entry dust.Entry, dryRun bool) error {
	switch {
	case entry.IsFile():
		return extractFileEntry(o, store, entry, dryRun)

	case entry.IsDirectory():
		if !dryRun {
			if err := os.MkdirAll(entry.Path, 0o755); err != nil {
				return fmt.Errorf("mkdir %q: %w", entry.Path, err)
			}

			if err := os.Chmod(entry.Path, os.FileMode(entry.Permissions)); err != nil {
				return fmt.Errorf("chmod %q: %w", entry.Path, err)
			}
		}

		return nil

	case entry.IsSymlink():
		if !dryRun {
			if err := os.Symlink(entry.Target, entry.Path); err != nil {
				return fmt.Errorf("symlink %q -> %q: %w", entry.Path, entry.Target, err)
			}
		}

		// Go has no portable lchmod: chmod-ing a symlink changes its
		// target's mode, not the link's own, so permission restoration
		// is skipped for symlinks rather than mis-applied.
		return nil

	default:
		return fmt.Errorf("%w: unknown record type for %q", dust.ErrFormat, entry.Path)
	}
}

func extractFileEntry(o *cli.IO, store *dust.Store, entry dust.Entry, dryRun bool) error {
	var (
		out  *os.File
		sink io.Writer
	)

	if !dryRun {
		f, err := os.Create(entry.Path)
		if err != nil {
			return fmt.Errorf("create %q: %w", entry.Path, err)
		}

		out = f
		sink = f
	}

	hasher := sha256.New()

	extractErr := dust.Extract(store, entry.Fingerprint, sink, hasher)

	if out != nil {
		if err := out.Close(); err != nil && extractErr == nil {
			extractErr = fmt.Errorf("close %q: %w", entry.Path, err)
		}
	}

	if extractErr != nil {
		return extractErr
	}

	var digest [sha256.Size]byte
	copy(digest[:], hasher.Sum(nil))

	if digest != entry.SHA256 {
		return fmt.Errorf("%w: %s: extracted content hash does not match recorded hash", dust.ErrIntegrity, entry.Path)
	}

	if !dryRun {
		if err := os.Chmod(entry.Path, os.FileMode(entry.Permissions)); err != nil {
			return fmt.Errorf("chmod %q: %w", entry.Path, err)
		}
	}

	return nil
}
