// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gma

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/woozymasta/gma"
	"github.com/woozymasta/gma/internal/progress"
)

// createFlags holds create command flags.
type createFlags struct {
	output        string
	name          string
	description   string
	addonType     string
	author        string
	tags          []string
	ignore        []string
	authorID      uint64
	version       uint8
	compress      bool
	skipWhitelist bool
	keepCase      bool
}

func newCreateCmd(a *app) *cobra.Command {
	f := &createFlags{}

	cmd := &cobra.Command{
		Use:   "create <dir>",
		Short: "Pack a directory into a GMA archive",
		Long: `Create packs every file below <dir> into a GMA archive.

When <dir> contains addon.json, its title, description, type, tags and
ignore list are used; flags override them. Otherwise --name is required.
Files outside the Garry's Mod whitelist are rejected unless --skip-whitelist.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCreate(cmd, args[0], f)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output archive path (default <dir>.gma)")
	cmd.Flags().StringVarP(&f.name, "name", "n", "", "addon name")
	cmd.Flags().StringVar(&f.description, "description", "", "addon description")
	cmd.Flags().StringVarP(&f.addonType, "type", "t", "", "addon type (gamemode, map, weapon, vehicle, npc, entity, tool, effects, model, servercontent)")
	cmd.Flags().StringSliceVar(&f.tags, "tag", nil, "addon tag, up to two (fun, roleplay, scenic, movie, realism, cartoon, water, comic, build)")
	cmd.Flags().StringSliceVar(&f.ignore, "ignore", nil, "ignore pattern, gitignore syntax")
	cmd.Flags().StringVar(&f.author, "author", "", "author name")
	cmd.Flags().Uint64Var(&f.authorID, "author-id", 0, "author SteamID64")
	cmd.Flags().Uint8Var(&f.version, "format-version", 0, "archive format version (1-3)")
	cmd.Flags().BoolVarP(&f.compress, "compress", "z", false, "wrap archive in LZMA")
	cmd.Flags().BoolVar(&f.skipWhitelist, "skip-whitelist", false, "pack files outside the Garry's Mod whitelist")
	cmd.Flags().BoolVar(&f.keepCase, "keep-case", false, "keep file name case instead of lower-casing")

	return cmd
}

func (a *app) runCreate(cmd *cobra.Command, dir string, f *createFlags) error {
	cfg := a.cfg
	flags := cmd.Flags()

	b := gma.NewBuilder().
		SetAuthor(cfg.Author).
		SetAuthorID(cfg.AuthorID).
		SetVersion(cfg.Version).
		SetCompression(cfg.Compression)

	dirOpts := gma.DirOptions{
		Ignore:        gma.IgnoreRules(f.ignore...),
		SkipWhitelist: cfg.SkipWhitelist,
		KeepCase:      cfg.KeepCase,
	}
	if flags.Changed("skip-whitelist") {
		dirOpts.SkipWhitelist = f.skipWhitelist
	}
	if flags.Changed("keep-case") {
		dirOpts.KeepCase = f.keepCase
	}

	project, err := gma.LoadProject(dir)
	switch {
	case err == nil:
		slog.Info("Using project file", "title", project.Title, "type", project.Type.String())
		b.ApplyProject(project)
		dirOpts.Ignore = append(dirOpts.Ignore, project.IgnoreRules()...)
	case errors.Is(err, fs.ErrNotExist):
		slog.Debug("No project file", "dir", dir)
	default:
		return err
	}

	if err := applyCreateFlags(cmd, b, f); err != nil {
		return err
	}

	if err := b.AddDir(dir, dirOpts); err != nil {
		return err
	}

	output := f.output
	if output == "" {
		output = filepath.Clean(dir) + ".gma"
	}

	bar := progress.New(b.Len(), a.showProgress())
	start := time.Now()
	res, err := b.WriteFile(cmd.Context(), output, gma.BuildOptions{
		OnEntryDone: func(e gma.EntryProgress) {
			bar.Increment(e.Name)
			slog.Debug("Packed entry", "name", e.Name, "size", e.Size, "crc", fmt.Sprintf("%08x", e.CRC))
		},
	})
	bar.Finish()
	if err != nil {
		return err
	}

	size := res.ArchiveSize
	if res.CompressedSize > 0 {
		size = res.CompressedSize
	}

	slog.Info("Created archive",
		"path", output,
		"entries", len(res.Entries),
		"data_size", res.DataSize,
		"size", size,
		"duration", time.Since(start).Round(time.Millisecond))

	return nil
}

// applyCreateFlags applies explicitly set metadata flags over config and project values.
func applyCreateFlags(cmd *cobra.Command, b *gma.Builder, f *createFlags) error {
	flags := cmd.Flags()

	if flags.Changed("name") {
		b.SetName(f.name)
	}
	if flags.Changed("description") {
		b.SetDescription(f.description)
	}
	if flags.Changed("author") {
		b.SetAuthor(f.author)
	}
	if flags.Changed("author-id") {
		b.SetAuthorID(f.authorID)
	}
	if flags.Changed("format-version") {
		b.SetVersion(f.version)
	}
	if flags.Changed("compress") {
		b.SetCompression(f.compress)
	}
	if flags.Changed("type") {
		t, err := gma.ParseAddonType(f.addonType)
		if err != nil {
			return err
		}

		b.SetType(t)
	}
	for _, name := range f.tags {
		tag, err := gma.ParseTag(name)
		if err != nil {
			return err
		}

		b.AddTag(tag)
	}

	return nil
}
