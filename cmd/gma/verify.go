// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gma

package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/woozymasta/gma"
	"github.com/woozymasta/gma/internal/progress"
)

// errVerifyFailed reports that one or more entries failed verification.
var errVerifyFailed = errors.New("verification failed")

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <archive>",
		Short: "Check size and CRC of every archive entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := gma.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = r.Close() }()

			entries := r.Entries()
			bar := progress.New(len(entries), a.showProgress())

			failed := 0
			for _, e := range entries {
				if err := cmd.Context().Err(); err != nil {
					bar.Finish()
					return err
				}

				if err := r.VerifyEntry(e); err != nil {
					failed++
					slog.Error("Entry failed", "name", e.Name, "error", err)
				}
				bar.Increment(e.Name)
			}
			bar.Finish()

			if failed > 0 {
				return fmt.Errorf("%w: %d of %d entries", errVerifyFailed, failed, len(entries))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "OK: %d entries\n", len(entries))
			return nil
		},
	}
}
