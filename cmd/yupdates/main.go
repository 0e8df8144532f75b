// Command yupdates is a small command line front end to the Yupdates API.
//
//	yupdates ping [-retries N]
//	yupdates read [-max N] [-content] [-after T | -before T] [-all] [-limit N] FEED_ID
//	yupdates add [-delay D] [-stats] FILE.json|-
//	yupdates fetch [-max N] [-workers N] FEED_ID...
//
// Configuration comes from YUPDATES_API_TOKEN, YUPDATES_API_URL,
// YUPDATES_REDIS_URL, YUPDATES_LOG_LEVEL and YUPDATES_LOG_PRETTY.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/yupdates/yupdates-sdk-go/pkg/client"
	"github.com/yupdates/yupdates-sdk-go/pkg/config"
	"github.com/yupdates/yupdates-sdk-go/pkg/logging"
)

const usage = `usage: yupdates <command> [flags] [args]

commands:
  ping    check the API token
  read    read items from a feed
  add     add items from a JSON file (array of items) or stdin
  fetch   read the latest items of several feeds in parallel
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// command is one sub-command. It gets the flags after the command name.
type command func(ctx context.Context, c *client.Client, args []string, in io.Reader, out io.Writer) error

var commands = map[string]command{
	"ping":  pingCommand,
	"read":  readCommand,
	"add":   addCommand,
	"fetch": fetchCommand,
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(errOut, usage)
		return 2
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(errOut, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	env, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "configuration: %v\n", err)
		return 1
	}

	logCfg := logging.FromEnv(env)
	logCfg.Output = errOut
	logging.Setup(logCfg)
	logger := logging.NewLogger("yupdates-cli")

	c, err := client.NewFromConfig(env)
	if err != nil {
		fmt.Fprintf(errOut, "%v\n", err)
		return 1
	}

	if err := cmd(ctx, c, args[1:], in, out); err != nil {
		logger.Error().Err(err).Str("command", args[0]).Msg("Command failed")
		fmt.Fprintf(errOut, "%s: %v\n", args[0], err)
		if _, ok := err.(usageError); ok {
			return 2
		}
		return 1
	}

	return 0
}

// usageError is a problem with the command line rather than the call.
type usageError string

func (e usageError) Error() string { return string(e) }
