package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitenav/internal/build"
	"git.home.luguber.info/inful/sitenav/internal/config"
	snerrors "git.home.luguber.info/inful/sitenav/internal/errors"
	"git.home.luguber.info/inful/sitenav/internal/linkcheck"
	"git.home.luguber.info/inful/sitenav/internal/preview"
	"git.home.luguber.info/inful/sitenav/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"sitenav.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Output string `short:"o" help:"Output directory for the generated site"`
		Fresh  bool   `help:"Ignore the build cache and rebuild everything"`
		Strict bool   `help:"Fail the build on broken internal links"`
	} `cmd:"" help:"Build the site from the content directory"`

	Check struct{} `cmd:"" help:"Resolve the sidebar against the content tree without writing output"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Serve struct{} `cmd:"" help:"Serve the site locally and rebuild on content changes"`

	Version struct{} `cmd:"" help:"Print version information"`
}

func main() {
	kctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	switch kctx.Command() {
	case "build":
		cfg := loadConfig()
		if err := runBuild(cfg); err != nil {
			slog.Error("Build failed", "category", snerrors.GetCategory(err), "error", err)
			os.Exit(1)
		}
	case "check":
		cfg := loadConfig()
		if err := runCheck(cfg); err != nil {
			slog.Error("Check failed", "category", snerrors.GetCategory(err), "error", err)
			os.Exit(1)
		}
	case "init":
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Configuration written", "path", CLI.Config)
	case "serve":
		cfg := loadConfig()
		if err := runServe(cfg); err != nil {
			slog.Error("Serve failed", "error", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("sitenav %s (commit %s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
	}
}

func loadConfig() *config.Config {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	return cfg
}

func runBuild(cfg *config.Config) error {
	var publisher linkcheck.Publisher
	if cfg.LinkCheck.NATSURL != "" {
		p, err := linkcheck.NewNATSPublisher(cfg.LinkCheck)
		if err != nil {
			// Broken-link events are best effort; the build proceeds without them.
			slog.Warn("Link event publisher unavailable", "error", err)
		} else {
			publisher = p
			defer func() {
				if err := p.Close(); err != nil {
					slog.Warn("Failed to close link event publisher", "error", err)
				}
			}()
		}
	}

	builder := build.NewBuilder(cfg, nil, publisher)
	opts := build.Options{
		OutputDir: CLI.Build.Output,
		Fresh:     CLI.Build.Fresh,
		Strict:    CLI.Build.Strict || cfg.LinkCheck.Strict,
	}

	report, err := builder.Build(context.Background(), opts)
	if err != nil {
		return err
	}

	if report.Skipped {
		slog.Info("Site unchanged, build skipped", "build_id", report.BuildID)
		return nil
	}
	slog.Info("Build completed",
		"build_id", report.BuildID,
		"pages", report.Pages,
		"assets", report.Assets,
		"nav_entries", report.NavEntries,
		"broken_links", len(report.BrokenLinks),
		"duration", report.Duration)
	return nil
}

func runCheck(cfg *config.Config) error {
	builder := build.NewBuilder(cfg, nil, nil)
	nav, err := builder.Check(context.Background())
	if err != nil {
		return err
	}

	entries := 0
	for _, group := range nav.Groups {
		entries += len(group.Entries)
		slog.Info("Sidebar group resolved", "group", group.Label, "entries", len(group.Entries))
	}
	slog.Info("Navigation check passed", "groups", len(nav.Groups), "entries", entries)
	return nil
}

func runServe(cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := preview.NewServer(cfg)
	return srv.Run(ctx)
}
