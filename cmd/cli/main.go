// cmd/cli/main.go
//
// storefront is the command line front end of the storefront client. It
// shares configuration and persisted state with the HTTP shell, so a login
// made here is visible to the server on its next start and the reverse.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/your-org/storefront-client/internal/config"
	"github.com/your-org/storefront-client/internal/infrastructure/api"
	"github.com/your-org/storefront-client/internal/infrastructure/storage"
	"github.com/your-org/storefront-client/internal/pkg/logger"
	"github.com/your-org/storefront-client/internal/storefront"
)

// command is one subcommand. flags registers the command's own flags on fs;
// run receives the positional arguments left after parsing.
type command struct {
	usage   string
	summary string
	flags   func(fs *pflag.FlagSet)
	run     func(ctx context.Context, env *env, args []string) error
}

// env is what every command runs against
type env struct {
	app  *storefront.App
	out  io.Writer
	json bool
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	commands := registry()

	global := pflag.NewFlagSet("storefront", pflag.ContinueOnError)
	global.SetInterspersed(false)
	verbose := global.BoolP("verbose", "v", false, "log client activity to stderr")
	global.BoolP("help", "h", false, "show help")

	if err := global.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(global, commands)
			return nil
		}
		return err
	}
	if help, _ := global.GetBool("help"); help || global.NArg() == 0 {
		printHelp(global, commands)
		return nil
	}

	name := global.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q, run storefront --help for a list", name)
	}

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	outputJSON := fs.Bool("json", false, "print JSON instead of a table")
	if cmd.flags != nil {
		cmd.flags(fs)
	}
	if err := fs.Parse(global.Args()[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "Usage: storefront %s\n\n%s\n\nFlags:\n", cmd.usage, cmd.summary)
			fs.PrintDefaults()
			return nil
		}
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, closeStore, err := open(ctx, *verbose)
	if err != nil {
		return err
	}
	defer closeStore()

	return cmd.run(ctx, &env{app: app, out: os.Stdout, json: *outputJSON}, fs.Args())
}

// open loads configuration and restores the persisted session and cart
func open(ctx context.Context, verbose bool) (*storefront.App, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	log := logger.Discard()
	if verbose {
		log = logger.New(cfg)
		log.SetOutput(os.Stderr)
	}

	store, closeStore, err := storage.Open(cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("opening client storage: %w", err)
	}

	client := api.NewFromConfig(cfg, store, log)
	app := storefront.New(cfg, store, client, log)
	if err := app.Bootstrap(ctx); err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("restoring client state: %w", err)
	}

	return app, closeStore, nil
}

func printHelp(global *pflag.FlagSet, commands map[string]command) {
	fmt.Fprint(os.Stderr, `storefront browses the catalog, manages the cart and places orders
against the storefront API. Session and cart survive between runs.

Usage:
  storefront [global flags] <command> [flags] [args]

Commands:
`)

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-28s %s\n", commands[name].usage, commands[name].summary)
	}

	fmt.Fprint(os.Stderr, "\nGlobal flags:\n")
	global.SetOutput(os.Stderr)
	global.PrintDefaults()
}
