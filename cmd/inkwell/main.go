package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/derven/inkwell"
	"github.com/derven/inkwell/views"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(),
	})))

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "new":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: inkwell new <site-name>")
			os.Exit(1)
		}
		if err := runNew(os.Args[2]); err != nil {
			fatal(err)
		}
	case "build":
		if err := runBuild(configPath()); err != nil {
			fatal(err)
		}
	case "serve":
		if err := runServe(configPath()); err != nil {
			fatal(err)
		}
	case "version":
		fmt.Printf("inkwell %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// configPath returns the optional config file argument after the command.
func configPath() string {
	if len(os.Args) > 2 {
		return os.Args[2]
	}
	return "inkwell.yaml"
}

func logLevel() slog.Level {
	if v := os.Getenv("INKWELL_DEBUG"); v != "" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func newSite(path string) (*inkwell.Site, error) {
	cfg, err := inkwell.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return inkwell.New(cfg, views.Default())
}

func runBuild(path string) error {
	site, err := newSite(path)
	if err != nil {
		return err
	}
	res, err := site.Build()
	if err != nil {
		return err
	}
	fmt.Printf("Built %d pages, %d static assets (%d pruned) in %s\n",
		res.Pages, res.Assets, res.Pruned, res.Duration.Round(time.Millisecond))
	return nil
}

func runServe(path string) error {
	site, err := newSite(path)
	if err != nil {
		return err
	}
	fmt.Printf("Serving %s on %s\n", site.Config.Name, site.Config.PreviewAddr)
	return site.Serve()
}

func printUsage() {
	fmt.Println(`inkwell - A static site generator for personal blogs, built with Go, Echo, and templ

Usage:
  inkwell <command> [config]

Commands:
  new <name>       Create a new inkwell site
  build [config]   Build the site (default config: inkwell.yaml)
  serve [config]   Build, then serve with live rebuild and draft preview
  version          Print the inkwell version
  help             Show this help message

Examples:
  inkwell new myblog
  inkwell build
  inkwell serve`)
}
