// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gma

/*
Package gma reads and writes GMA archives, the addon package format used by
Garry's Mod and its Workshop. It is designed for streaming workflows:
the builder writes each source exactly once and patches sizes and checksums
afterwards, and the reader parses only the header and entry table, leaving
content on the underlying stream until an entry is requested.

Archive layout (summary):
  - magic "GMAD", format version byte, author id and timestamp;
  - required content list (versions 2 and 3 only);
  - addon name, metadata JSON, author name, addon format version;
  - entry table of (index, name, size, CRC-32) records terminated by index 0;
  - entry contents concatenated in table order.

A whole archive may also be wrapped in a single LZMA stream; the reader
detects and decompresses such files transparently.

# Reading

Open an archive and read its entries:

	r, err := gma.Open("addon.gma")
	if err != nil {
	    return err
	}
	defer r.Close()

	for _, e := range r.Entries() {
	    data, err := r.ReadEntryBytes(e)
	    if err != nil {
	        return err
	    }
	    _ = data
	}

Stream an entry without buffering it:

	err = r.ReadEntry(e, func(e gma.Entry, rd io.Reader) error {
	    _, err := io.Copy(dst, rd)
	    return err
	})

The reader owns one stream. ReadEntry borrows it for the duration of the
callback; an overlapping call fails with ErrReaderBusy.

Structured metadata is exposed when the metadata text is a JSON document:

	if md, ok := r.Metadata(); ok {
	    fmt.Println(md.Title, md.Type, md.Tags)
	}

For metadata-only scans, use helpers that close the archive for you:

	info, err := gma.ReadInfo("addon.gma")
	entries, err := gma.ListEntries("addon.gma")

# Extracting

	err = r.Extract(ctx, "out", gma.ExtractOptions{
	    PathPrefix: "lua/autorun",
	    Verify:     true,
	})

Readers opened from a path or from memory extract in parallel through
independent handles; other readers extract sequentially.

# Writing

	b := gma.NewBuilder().
	    SetName("My Addon").
	    SetDescription("Adds things").
	    SetType(gma.AddonTypeTool).
	    AddTag(gma.TagFun).
	    AddTag(gma.TagBuild)

	if err := b.AddBytes("lua/autorun/init.lua", []byte("print('hi')")); err != nil {
	    return err
	}

	res, err := b.WriteFile(ctx, "addon.gma", gma.BuildOptions{})

Pack a Workshop project directory described by addon.json:

	b := gma.NewBuilder().SetAuthorID(steamID)
	if _, err := b.AddProject("my_addon", gma.DirOptions{}); err != nil {
	    return err
	}

Files outside the Garry's Mod whitelist fail with ErrNotWhitelisted unless
DirOptions.SkipWhitelist is set. SetCompression(true) wraps the finished
archive in a single LZMA stream.
*/
package gma
