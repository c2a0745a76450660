// swapspace is the command-line client for the SwapSpace API. It keeps the
// login token in a local SQLite file and resolves it on every run.
//
// When the API cannot be reached the client enters demo mode: a placeholder
// user is shown, a notice is printed on every command, and anything that
// needs a token is refused.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/ayush/swapspace/internal/client"
	"github.com/ayush/swapspace/internal/config"
	"github.com/ayush/swapspace/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}

	flagSet := pflag.NewFlagSet("swapspace", pflag.ContinueOnError)
	flagSet.SetInterspersed(false)
	flagSet.StringVar(&cfg.APIURL, "api", cfg.APIURL, "API base URL")
	flagSet.StringVar(&cfg.StatePath, "state", cfg.StatePath, "path to the local token database")
	flagSet.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-request timeout (0 = none)")
	flagSet.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printUsage(os.Stdout, flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help || flagSet.NArg() == 0 {
		printUsage(os.Stdout, flagSet)
		return nil
	}

	ctx := context.Background()
	tokens, err := client.OpenSQLiteTokenStore(ctx, cfg.StatePath)
	if err != nil {
		return err
	}
	defer tokens.Close()

	log := logging.New(os.Stderr, cfg.LogLevel, "text")
	api := client.NewAPI(cfg.APIURL, cfg.Timeout)
	a := &app{
		api:     api,
		session: client.NewSession(api, tokens, log),
		out:     os.Stdout,
		errOut:  os.Stderr,
	}
	return a.dispatch(ctx, flagSet.Args())
}
