package cli

import (
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// Run parses global flags, dispatches to the matching command in
// commands, and returns a process exit code. Commands run synchronously
// to completion: dust's core is single-threaded with no suspension
// points, so unlike a long-running server dispatcher there is no
// goroutine/signal-based graceful shutdown to manage here.
func Run(progName string, out, errOut io.Writer, args []string, commands []*Command) int {
	globalFlags := flag.NewFlagSet(progName, flag.ContinueOnError)
	globalFlags.SetInterspersed(false)
	globalFlags.Usage = func() {}
	globalFlags.SetOutput(io.Discard)
	flagHelp := globalFlags.BoolP("help", "h", false, "Show help")

	if err := globalFlags.Parse(args); err != nil {
		fprintln(errOut, "error:", err)
		printUsage(errOut, progName, commands)

		return 2
	}

	commandMap := make(map[string]*Command, len(commands))
	for _, cmd := range commands {
		commandMap[cmd.Name()] = cmd
	}

	commandAndArgs := globalFlags.Args()

	if *flagHelp || (len(commandAndArgs) == 0 && globalFlags.NFlag() == 0) {
		printUsage(out, progName, commands)
		return 0
	}

	if len(commandAndArgs) == 0 {
		fprintln(errOut, "error: no command provided")
		printUsage(errOut, progName, commands)

		return 2
	}

	cmdName := commandAndArgs[0]

	cmd, ok := commandMap[cmdName]
	if !ok {
		fprintln(errOut, "error: unknown command:", cmdName)
		printUsage(errOut, progName, commands)

		return 2
	}

	cmdIO := NewIO(out, errOut)

	exitCode := cmd.Run(cmdIO, commandAndArgs[1:])
	if exitCode != 0 {
		return exitCode
	}

	return cmdIO.Finish()
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(w io.Writer, progName string, commands []*Command) {
	fprintln(w, progName, "- content-addressed, deduplicating archival store")
	fprintln(w)
	fprintln(w, "Usage:", progName, "[flags] <command> [args]")
	fprintln(w)
	fprintln(w, "Flags:")
	fprintln(w, "  -h, --help    Show help")
	fprintln(w)
	fprintln(w, "Commands:")

	for _, cmd := range commands {
		fprintln(w, cmd.HelpLine())
	}
}
