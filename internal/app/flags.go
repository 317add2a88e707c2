package app

import (
	"github.com/urfave/cli/v3"

	"github.com/agbru/ragcompare/internal/config"
)

// globalFlags are inherited by every subcommand.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML configuration file",
		},
		&cli.StringFlag{
			Name:  "base-url",
			Usage: "root of the backend API",
			Value: config.DefaultBaseURL,
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "bound on every network call",
			Value: config.DefaultTimeout,
		},
		&cli.DurationFlag{
			Name:  "reveal-interval",
			Usage: "pause between two revealed words",
			Value: config.DefaultRevealInterval,
		},
		&cli.DurationFlag{
			Name:  "settle-delay",
			Usage: "pause before a demo answer starts revealing",
			Value: config.DefaultSettleDelay,
		},
		&cli.DurationFlag{
			Name:  "notice-duration",
			Usage: "how long a notice stays visible",
			Value: config.DefaultNoticeDuration,
		},
		&cli.BoolFlag{
			Name:  "simulate",
			Usage: "reveal non-streamed answers word by word",
			Value: true,
		},
		&cli.StringFlag{
			Name:  "document-id",
			Usage: "document queried until an upload returns another one",
			Value: config.DefaultDocumentID,
		},
		&cli.BoolFlag{
			Name:  "no-color",
			Usage: "disable colours",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "debug, info, warn or error",
			Value: "info",
		},
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "write logs to this file (required to see logs in the dashboard)",
		},
	}
}

// flagOverride copies one explicitly set flag into the configuration.
type flagOverride struct {
	flag  string
	apply func(cfg *config.AppConfig, cmd *cli.Command)
}

var flagOverrides = []flagOverride{
	{"base-url", func(c *config.AppConfig, cmd *cli.Command) { c.BaseURL = cmd.String("base-url") }},
	{"timeout", func(c *config.AppConfig, cmd *cli.Command) { c.Timeout = cmd.Duration("timeout") }},
	{"reveal-interval", func(c *config.AppConfig, cmd *cli.Command) { c.RevealInterval = cmd.Duration("reveal-interval") }},
	{"settle-delay", func(c *config.AppConfig, cmd *cli.Command) { c.SettleDelay = cmd.Duration("settle-delay") }},
	{"notice-duration", func(c *config.AppConfig, cmd *cli.Command) { c.NoticeDuration = cmd.Duration("notice-duration") }},
	{"simulate", func(c *config.AppConfig, cmd *cli.Command) { c.Simulate = cmd.Bool("simulate") }},
	{"document-id", func(c *config.AppConfig, cmd *cli.Command) { c.DocumentID = cmd.String("document-id") }},
	{"no-color", func(c *config.AppConfig, cmd *cli.Command) { c.NoColor = cmd.Bool("no-color") }},
	{"log-level", func(c *config.AppConfig, cmd *cli.Command) { c.LogLevel = cmd.String("log-level") }},
	{"log-file", func(c *config.AppConfig, cmd *cli.Command) { c.LogFile = cmd.String("log-file") }},
	{"addr", func(c *config.AppConfig, cmd *cli.Command) { c.ServeAddr = cmd.String("addr") }},
	{"stream", func(c *config.AppConfig, cmd *cli.Command) { c.ServeStream = cmd.Bool("stream") }},
}

// resolveConfig builds the configuration in priority order: flags,
// environment, configuration file, defaults.
func resolveConfig(cmd *cli.Command) (config.AppConfig, error) {
	cfg := config.Default()
	if path := cmd.String("config"); path != "" {
		var err error
		if cfg, err = config.LoadFile(cfg, path); err != nil {
			return cfg, err
		}
	}
	config.ApplyEnvOverrides(&cfg, cmd.IsSet)
	for _, o := range flagOverrides {
		if cmd.IsSet(o.flag) {
			o.apply(&cfg, cmd)
		}
	}
	return cfg, cfg.Validate()
}
