package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/peterh/liner"

	"github.com/ungetc/dust/internal/cli"
	"github.com/ungetc/dust/pkg/dust"

	flag "github.com/spf13/pflag"
)

// inspectCmd is a supplemental debugging tool: an interactive REPL for
// poking at an open store.
func inspectCmd(app *appContext) *cli.Command {
	flags := flag.NewFlagSet("inspect", flag.ContinueOnError)

	return &cli.Command{
		Flags: flags,
		Usage: "inspect",
		Short: "interactively inspect the configured store",
		Long:  "Opens an interactive shell with get/stat/bucket/help/quit commands for the configured arena and index.",
		Exec: func(o *cli.IO, args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("inspect takes no positional arguments")
			}

			store, err := dust.OpenReadOnly(app.fsys, app.storeCfg)
			if err != nil {
				return err
			}
			defer store.Close()

			numBuckets := app.storeCfg.NumBuckets
			if numBuckets == 0 {
				numBuckets = dust.DefaultNumBuckets
			}

			return runInspectREPL(o, store, numBuckets)
		},
	}
}

func runInspectREPL(o *cli.IO, store *dust.Store, numBuckets uint64) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)

	o.Println("dust inspect -- type 'help' for commands, 'quit' to exit")

	for {
		input, err := line.Prompt("dust> ")
		if err != nil {
			if err == liner.ErrPromptAborted {
				return nil
			}

			return nil
		}

		line.AppendHistory(input)

		fields := strings.Fields(input)
		if len(fields) == 0 {
			continue
		}

		cmd, rest := fields[0], fields[1:]

		switch cmd {
		case "quit", "exit", "q":
			return nil

		case "help":
			printInspectHelp(o)

		case "get":
			if len(rest) != 1 {
				o.Println("usage: get <fingerprint>")
				continue
			}

			inspectGet(o, store, rest[0])

		case "stat":
			if len(rest) != 1 {
				o.Println("usage: stat <fingerprint>")
				continue
			}

			inspectStat(o, store, rest[0])

		case "bucket":
			if len(rest) != 1 {
				o.Println("usage: bucket <fingerprint>")
				continue
			}

			inspectBucket(o, numBuckets, rest[0])

		default:
			o.Println("unknown command:", cmd, "(try 'help')")
		}
	}
}

func printInspectHelp(o *cli.IO) {
	o.Println("commands:")
	o.Println("  get <fingerprint>     print the block's type, size, and wtime")
	o.Println("  stat <fingerprint>    verify the block's fingerprint against its payload")
	o.Println("  bucket <fingerprint>  show which bucket the fingerprint hashes to under the configured bucket count")
	o.Println("  help                  show this help")
	o.Println("  quit                  exit")
}

func inspectBucket(o *cli.IO, numBuckets uint64, s string) {
	fp, err := parseFingerprint(s)
	if err != nil {
		o.Println("error:", err)
		return
	}

	o.Printf("bucket %d of %d\n", dust.BucketFor(fp, numBuckets), numBuckets)
}

func parseFingerprint(s string) (dust.Fingerprint, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return dust.Fingerprint{}, fmt.Errorf("invalid hex: %w", err)
	}

	if len(raw) != dust.FingerprintSize {
		return dust.Fingerprint{}, fmt.Errorf("fingerprint must be %d bytes, got %d", dust.FingerprintSize, len(raw))
	}

	var fp dust.Fingerprint
	copy(fp[:], raw)

	return fp, nil
}

func inspectGet(o *cli.IO, store *dust.Store, s string) {
	fp, err := parseFingerprint(s)
	if err != nil {
		o.Println("error:", err)
		return
	}

	block, err := store.Get(fp)
	if err != nil {
		o.Println("error:", err)
		return
	}

	o.Printf("type=%d size=%d wtime=%d\n", block.Type, block.Size, block.WTime)
}

func inspectStat(o *cli.IO, store *dust.Store, s string) {
	fp, err := parseFingerprint(s)
	if err != nil {
		o.Println("error:", err)
		return
	}

	block, err := store.Get(fp)
	if err != nil {
		o.Println("error:", err)
		return
	}

	sum := sha256.Sum256(block.Data())
	if sum == fp {
		o.Println("ok: payload hashes to the requested fingerprint")
	} else {
		o.Println("mismatch: payload hashes to", hex.EncodeToString(sum[:]))
	}
}
