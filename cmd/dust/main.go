// Command dust is a content-addressed, deduplicating archival store.
//
// Subcommands: archive, extract, list, check, rebuild-index, inspect. Run
// "dust --help" for a full listing.
package main

import (
	"os"
	"strings"

	"github.com/ungetc/dust/internal/cli"
	"github.com/ungetc/dust/pkg/dust"
	"github.com/ungetc/dust/pkg/fs"
)

func main() {
	os.Exit(run(os.Stdin, os.Stdout, os.Stderr, os.Args[1:]))
}

func run(stdin *os.File, stdout, stderr *os.File, args []string) int {
	storeCfg, err := dust.ConfigFromEnv(dust.EnvMap())
	if err != nil {
		stderr.WriteString("error: " + err.Error() + "\n")
		return 2
	}

	configPath, args := extractConfigPath(args)

	cliCfg, err := loadCLIConfig(configPath)
	if err != nil {
		stderr.WriteString("error: " + err.Error() + "\n")
		return 1
	}

	storeCfg.IndexStrategy = cliCfg.indexStrategy()
	storeCfg.NumBuckets = cliCfg.NumBuckets

	if cliCfg.Verbose {
		storeCfg.Logger = dust.NewWriterLogger(stderr)
	}

	app := &appContext{
		fsys:     fs.NewReal(),
		stdin:    stdin,
		storeCfg: storeCfg,
		cliCfg:   cliCfg,
	}

	commands := allCommands(app)

	return cli.Run("dust", stdout, stderr, args, commands)
}

// extractConfigPath pulls a leading --config/-c override out of args, the
// way globalFlags.SetInterspersed(false) in internal/cli/run.go treats
// global flags: only flags preceding the subcommand name are consulted.
// Returns the config path (empty means "use the default") and args with
// the consumed flag removed.
func extractConfigPath(args []string) (string, []string) {
	var (
		out  []string
		path string
		i    int
	)

	for i < len(args) {
		a := args[i]

		if !strings.HasPrefix(a, "-") {
			break
		}

		switch {
		case a == "--config" || a == "-c":
			if i+1 < len(args) {
				path = args[i+1]
				i += 2
				continue
			}

			i++

		case strings.HasPrefix(a, "--config="):
			path = strings.TrimPrefix(a, "--config=")
			i++

		case strings.HasPrefix(a, "-c="):
			path = strings.TrimPrefix(a, "-c=")
			i++

		default:
			out = append(out, a)
			i++
		}
	}

	return path, append(out, args[i:]...)
}
