// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gma

package gma

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestReadInfo(t *testing.T) {
	t.Parallel()

	path := buildFile(t, newTestBuilder(t,
		testFile{name: "a.txt", data: []byte("aaa")},
		testFile{name: "b/c.txt", data: []byte("cc")},
	).AddTag(TagComic))

	info, err := ReadInfo(path)
	if err != nil {
		t.Fatalf("ReadInfo: %v", err)
	}

	if info.Name != "test addon" || info.Author != "tester" || info.Version != 3 {
		t.Fatalf("info=%+v", info)
	}
	if !info.Structured || info.Metadata.Type != AddonTypeTool || len(info.Metadata.Tags) != 2 {
		t.Fatalf("metadata=%+v structured=%v", info.Metadata, info.Structured)
	}
	if info.DataSize != 5 || len(info.Entries) != 2 || info.Compressed {
		t.Fatalf("info=%+v", info)
	}

	entries, err := ListEntries(path)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(entries) != 2 || entries[1].Name != "b/c.txt" || entries[1].Offset != 3 {
		t.Fatalf("entries=%+v", entries)
	}
}

func TestReadInfoFrom_DoesNotCloseSource(t *testing.T) {
	t.Parallel()

	path := buildFile(t, newTestBuilder(t, testFile{name: "a.txt", data: []byte("a")}))
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := ReadInfoFrom(f); err != nil {
		t.Fatalf("ReadInfoFrom: %v", err)
	}

	// Still usable after the snapshot.
	var magic [identSize]byte
	if _, err := f.ReadAt(magic[:], 0); err != nil || !bytes.Equal(magic[:], []byte("GMAD")) {
		t.Fatalf("source closed or unreadable: %v", err)
	}
}

func TestReadInfo_Missing(t *testing.T) {
	t.Parallel()

	_, err := ReadInfo(filepath.Join(t.TempDir(), "missing.gma"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}
