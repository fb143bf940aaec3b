// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gma

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	units "github.com/docker/go-units"
	"github.com/spf13/cobra"
	"github.com/woozymasta/gma"
)

// listFlags holds list command flags.
type listFlags struct {
	prefix  string
	minSize uint64
	maxSize uint64
	long    bool
}

func newListCmd(_ *app) *cobra.Command {
	f := &listFlags{}

	cmd := &cobra.Command{
		Use:   "list <archive>",
		Short: "List archive entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := gma.ListEntries(args[0])
			if err != nil {
				return err
			}

			entries = gma.FilterEntriesByPrefix(entries, f.prefix)
			entries = gma.FilterEntriesBySize(entries, f.minSize, f.maxSize)

			return printEntries(cmd.OutOrStdout(), entries, f.long)
		},
	}

	cmd.Flags().StringVarP(&f.prefix, "prefix", "p", "", "list only entries under this path")
	cmd.Flags().Uint64Var(&f.minSize, "min-size", 0, "skip entries smaller than this many bytes")
	cmd.Flags().Uint64Var(&f.maxSize, "max-size", 0, "skip entries larger than this many bytes")
	cmd.Flags().BoolVarP(&f.long, "long", "l", false, "show size and CRC")

	return cmd
}

// printEntries writes one entry per line; long form adds size and CRC columns.
func printEntries(w io.Writer, entries []gma.Entry, long bool) error {
	if !long {
		for _, e := range entries {
			if _, err := fmt.Fprintln(w, e.Name); err != nil {
				return err
			}
		}

		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%08x\t %s\n", e.Index, units.HumanSize(float64(e.Size)), e.CRC, e.Name)
	}

	return tw.Flush()
}
