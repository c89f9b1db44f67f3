package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebuilder/internal/bulkops"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/daemon"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Write a default configuration file"`

	Daemon struct{} `cmd:"" help:"Run the scheduler, render endpoint, and metrics endpoint"`

	Publish struct {
		Site string `arg:"" help:"Site ID to publish"`
	} `cmd:"" help:"Promote the site's latest content and build it"`

	Build struct {
		Site string `arg:"" help:"Site ID to render"`
	} `cmd:"" help:"Render a site's published content without promoting anything"`

	RunNow struct {
		Schedule string `arg:"" help:"Schedule ID to run"`
	} `cmd:"" help:"Run an autopost schedule immediately"`

	Replace struct {
		Site string `arg:"" help:"Site ID"`
		Find string `arg:"" help:"Text to find"`
		With string `arg:"" help:"Replacement text"`
	} `cmd:"" help:"Apply a literal find/replace across the site's pages"`

	Undo struct {
		Operation string `arg:"" help:"Bulk operation ID"`
	} `cmd:"" help:"Undo a bulk find/replace"`
}

func main() {
	ctx := kong.Parse(&CLI)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if CLI.Verbose {
		cfg.Logging.Level = string(config.LogLevelDebug)
	}
	config.SetupLogger(cfg.Logging)

	if err := run(ctx.Command(), cfg); err != nil {
		slog.Error("Command failed", logfields.Error(err))
		os.Exit(1)
	}
}

func run(command string, cfg *config.Config) error {
	switch command {
	case "init":
		return runInit(CLI.Config, CLI.Init.Force)
	case "daemon":
		return runDaemon(cfg)
	case "publish <site>":
		return withDaemon(cfg, func(ctx context.Context, d *daemon.Daemon) error {
			build, err := d.Pipeline().Publish(ctx, CLI.Publish.Site)
			if err != nil {
				return err
			}
			slog.Info("Site published",
				logfields.SiteID(CLI.Publish.Site),
				logfields.BuildNumber(build.BuildNumber),
				slog.String("output", build.OutputDir))
			return nil
		})
	case "build <site>":
		return withDaemon(cfg, func(ctx context.Context, d *daemon.Daemon) error {
			res, err := d.Orchestrator().BuildSite(ctx, CLI.Build.Site, "")
			if err != nil {
				return err
			}
			slog.Info("Site rendered",
				logfields.SiteID(CLI.Build.Site),
				logfields.Pages(res.Pages),
				slog.String("output", res.OutputDir))
			return nil
		})
	case "run-now <schedule>":
		return withDaemon(cfg, func(ctx context.Context, d *daemon.Daemon) error {
			result, err := d.Engine().RunSchedule(ctx, CLI.RunNow.Schedule)
			if err != nil {
				return err
			}
			if result.Declined {
				slog.Info("Schedule is disabled, nothing to run",
					logfields.ScheduleID(CLI.RunNow.Schedule))
				return nil
			}
			slog.Info("Autopost run completed",
				logfields.ScheduleID(CLI.RunNow.Schedule),
				logfields.Route(result.PostRoute),
				slog.Bool("published", result.Published))
			return nil
		})
	case "replace <site> <find> <with>":
		return withDaemon(cfg, func(ctx context.Context, d *daemon.Daemon) error {
			op, err := bulkops.NewService(d.Store()).FindReplace(ctx, CLI.Replace.Site, CLI.Replace.Find, CLI.Replace.With)
			if err != nil {
				return err
			}
			slog.Info("Find/replace applied",
				logfields.SiteID(CLI.Replace.Site),
				logfields.Pages(op.PagesTouched),
				slog.String("operation_id", op.ID))
			return nil
		})
	case "undo <operation>":
		return withDaemon(cfg, func(ctx context.Context, d *daemon.Daemon) error {
			return bulkops.NewService(d.Store()).Undo(ctx, CLI.Undo.Operation)
		})
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// withDaemon wires the components for a one-shot command and tears them down
// afterwards.
func withDaemon(cfg *config.Config, fn func(context.Context, *daemon.Daemon) error) error {
	d, err := daemon.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := d.Close(); err != nil {
			slog.Error("Shutdown error", logfields.Error(err))
		}
	}()
	return fn(context.Background(), d)
}

func runDaemon(cfg *config.Config) error {
	d, err := daemon.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return d.Run(ctx, CLI.Config)
}

func runInit(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	data, err := yaml.Marshal(config.Default())
	if err != nil {
		return fmt.Errorf("encode default configuration: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	slog.Info("Configuration written", slog.String("path", path))
	return nil
}
