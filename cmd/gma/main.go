// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gma

// Command gma creates, inspects, verifies and extracts Garry's Mod addon archives.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/woozymasta/gma/internal/config"
)

// app holds state shared by all subcommands of one invocation.
type app struct {
	cfg        *config.Config
	cfgFile    string
	logLevel   string
	logFormat  string
	noProgress bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "gma",
		Short: "Garry's Mod addon archive tool",
		Long: `gma packs directories into GMA addon archives and inspects, verifies
and extracts existing ones, including LZMA-compressed archives.

Defaults are read from gma.yaml (working directory, then home directory)
and GMA_* environment variables; flags take precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is gma.yaml in pwd or home)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&a.noProgress, "no-progress", false, "disable progress bar")

	rootCmd.AddCommand(
		newCreateCmd(a),
		newExtractCmd(a),
		newInfoCmd(a),
		newListCmd(a),
		newVerifyCmd(a),
	)

	return rootCmd
}

// setup loads configuration, applies persistent flags and installs the default logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat = a.logFormat
	}
	if cmd.Flags().Changed("no-progress") {
		cfg.NoProgress = a.noProgress
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	slog.SetDefault(newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat))
	slog.Debug("Configuration",
		"author", cfg.Author,
		"author_id", cfg.AuthorID,
		"version", cfg.Version,
		"compression", cfg.Compression,
		"workers", cfg.Workers,
		"log_level", cfg.LogLevel,
		"log_format", cfg.LogFormat)

	return nil
}

// newLogger builds a tint text handler or a JSON handler writing to w.
func newLogger(w io.Writer, levelName string, format string) *slog.Logger {
	var level slog.Level
	switch levelName {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = tint.NewHandler(w, &tint.Options{
			Level: level,
		})
	}

	return slog.New(handler)
}

// showProgress reports whether progress bars are allowed for this invocation.
func (a *app) showProgress() bool {
	return a.cfg != nil && !a.cfg.NoProgress
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
