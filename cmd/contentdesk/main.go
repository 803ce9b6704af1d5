package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/eringen/contentdesk"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(os.Args[2:])
	case "user":
		if len(os.Args) < 3 || os.Args[2] != "add" {
			fmt.Fprintln(os.Stderr, "Usage: contentdesk user add --email <email> --password <password> --first-name <name> --last-name <name>")
			os.Exit(1)
		}
		err = runUserAdd(os.Args[3:])
	case "version":
		fmt.Printf("contentdesk %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(args []string) error {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	configPath := fs.StringP("config", "c", "", "optional config file (yaml, toml or json)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := contentdesk.LoadConfig(*configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := contentdesk.New(cfg)
	defer app.Close()
	return app.Start(ctx)
}

func printUsage() {
	fmt.Println(`contentdesk - a dashboard for blog posts, SEO banners and portfolios

Usage:
  contentdesk <command> [arguments]

Commands:
  serve [--config file]   Start the dashboard server
  user add [flags]        Create a dashboard account
  version                 Print the contentdesk version
  help                    Show this help message

Examples:
  contentdesk serve --config contentdesk.yaml
  contentdesk user add --email ada@example.com --password 'S3cretpass' --first-name Ada --last-name Lovelace`)
}
