// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gma

package main

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	units "github.com/docker/go-units"
	"github.com/spf13/cobra"
	"github.com/woozymasta/gma"
	"github.com/woozymasta/gma/internal/progress"
)

// extractFlags holds extract command flags.
type extractFlags struct {
	output  string
	prefix  string
	workers int
	verify  bool
}

func newExtractCmd(a *app) *cobra.Command {
	f := &extractFlags{}

	cmd := &cobra.Command{
		Use:   "extract <archive>",
		Short: "Extract files from a GMA archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExtract(cmd, args[0], f)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output directory (default archive name without extension)")
	cmd.Flags().StringVarP(&f.prefix, "prefix", "p", "", "extract only entries under this path")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "parallel workers (default GOMAXPROCS)")
	cmd.Flags().BoolVar(&f.verify, "verify", false, "check size and CRC of every extracted entry")

	return cmd
}

func (a *app) runExtract(cmd *cobra.Command, archive string, f *extractFlags) error {
	r, err := gma.Open(archive)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	output := f.output
	if output == "" {
		output = strings.TrimSuffix(archive, filepath.Ext(archive))
	}

	opts := gma.ExtractOptions{
		PathPrefix: f.prefix,
		MaxWorkers: a.cfg.Workers,
		Verify:     a.cfg.Verify,
	}
	if cmd.Flags().Changed("workers") {
		opts.MaxWorkers = f.workers
	}
	if cmd.Flags().Changed("verify") {
		opts.Verify = f.verify
	}

	entries := gma.FilterEntriesByPrefix(r.Entries(), f.prefix)
	opts.Entries = entries

	var total uint64
	for _, e := range entries {
		total += e.Size
	}

	bar := progress.New(len(entries), a.showProgress())
	opts.OnEntryDone = func(e gma.Entry, written int64, outputPath string) {
		bar.Increment(e.Name)
		slog.Debug("Extracted entry", "name", e.Name, "size", written, "path", outputPath)
	}

	start := time.Now()
	err = r.Extract(cmd.Context(), output, opts)
	bar.Finish()
	if err != nil {
		return err
	}

	slog.Info("Extracted archive",
		"archive", archive,
		"output", output,
		"entries", len(entries),
		"size", units.HumanSize(float64(total)),
		"duration", time.Since(start).Round(time.Millisecond))

	return nil
}
