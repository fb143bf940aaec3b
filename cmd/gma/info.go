// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gma

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	units "github.com/docker/go-units"
	"github.com/spf13/cobra"
	"github.com/woozymasta/gma"
	"gopkg.in/yaml.v3"
)

// errUnknownFormat reports an unsupported --format value.
var errUnknownFormat = errors.New("unknown output format")

func newInfoCmd(_ *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "info <archive>",
		Short: "Show archive header and metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := gma.ReadInfo(args[0])
			if err != nil {
				return err
			}

			return writeInfo(cmd.OutOrStdout(), info, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, json, yaml)")

	return cmd
}

// writeInfo renders info in the requested format.
func writeInfo(w io.Writer, info gma.Info, format string) error {
	switch format {
	case "", "text":
		return printInfo(w, info)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(info); err != nil {
			return err
		}

		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", errUnknownFormat, format)
	}
}

// printInfo writes a human-readable header summary.
func printInfo(w io.Writer, info gma.Info) error {
	tags := make([]string, 0, len(info.Metadata.Tags))
	for _, t := range info.Metadata.Tags {
		tags = append(tags, t.String())
	}

	created := time.Unix(int64(info.Timestamp), 0).UTC() //nolint:gosec // display only

	lines := []struct {
		key   string
		value any
	}{
		{"Name", info.Name},
		{"Author", info.Author},
		{"Author ID", info.AuthorID},
		{"Created", created.Format(time.RFC3339)},
		{"Version", info.Version},
		{"Compressed", info.Compressed},
		{"Type", info.Metadata.Type.String()},
		{"Tags", strings.Join(tags, ", ")},
		{"Structured", info.Structured},
		{"Entries", len(info.Entries)},
		{"Data size", units.HumanSize(float64(info.DataSize))},
	}

	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "%-12s %v\n", l.key+":", l.value); err != nil {
			return err
		}
	}

	if info.Metadata.Description != "" {
		if _, err := fmt.Fprintf(w, "\n%s\n", info.Metadata.Description); err != nil {
			return err
		}
	}

	return nil
}
