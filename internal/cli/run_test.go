package cli_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	flag "github.com/spf13/pflag"

	"github.com/ungetc/dust/internal/cli"
)

func echoCommand() *cli.Command {
	flags := flag.NewFlagSet("echo", flag.ContinueOnError)
	loud := flags.Bool("loud", false, "uppercase the output")

	return &cli.Command{
		Flags: flags,
		Usage: "echo <word>",
		Short: "print a word",
		Exec: func(o *cli.IO, args []string) error {
			if len(args) != 1 {
				o.ErrPrintln("echo requires exactly one argument")
				return errTooFewArgs
			}

			word := args[0]
			if *loud {
				word = word + "!"
			}

			o.Println(word)

			return nil
		},
	}
}

var errTooFewArgs = errArgCount{}

type errArgCount struct{}

func (errArgCount) Error() string { return "wrong argument count" }

func Test_Run_Dispatches_To_Matching_Command(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer

	code := cli.Run("dust", &out, &errOut, []string{"echo", "hi"}, []*cli.Command{echoCommand()})

	require.Equal(t, 0, code)
	require.Equal(t, "hi\n", out.String())
	require.Empty(t, errOut.String())
}

func Test_Run_Returns_Exit_2_For_Unknown_Command(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer

	code := cli.Run("dust", &out, &errOut, []string{"nope"}, []*cli.Command{echoCommand()})

	require.Equal(t, 2, code)
	require.Contains(t, errOut.String(), "unknown command")
}

func Test_Run_Returns_Exit_1_When_Command_Fails(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer

	code := cli.Run("dust", &out, &errOut, []string{"echo"}, []*cli.Command{echoCommand()})

	require.Equal(t, 1, code)
	require.Contains(t, errOut.String(), "error:")
}

func Test_Run_With_No_Args_Prints_Usage_And_Exits_0(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer

	code := cli.Run("dust", &out, &errOut, nil, []*cli.Command{echoCommand()})

	require.Equal(t, 0, code)
	require.Contains(t, out.String(), "Commands:")
}

func Test_Run_Propagates_Warnings_As_Exit_1(t *testing.T) {
	t.Parallel()

	flags := flag.NewFlagSet("warns", flag.ContinueOnError)
	warnCmd := &cli.Command{
		Flags: flags,
		Usage: "warns",
		Short: "always warns",
		Exec: func(o *cli.IO, args []string) error {
			o.Warn("something looked odd")
			o.Println("done")
			return nil
		},
	}

	var out, errOut bytes.Buffer

	code := cli.Run("dust", &out, &errOut, []string{"warns"}, []*cli.Command{warnCmd})

	require.Equal(t, 1, code)
	require.Contains(t, errOut.String(), "something looked odd")
}
