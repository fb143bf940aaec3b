// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gma

package gma

import (
	"context"
	"path/filepath"
	"testing"
)

// testFile is one named payload used by archive fixtures.
type testFile struct {
	name string
	data []byte
}

// newTestBuilder returns a builder with fixed header fields and the given files queued.
func newTestBuilder(t testing.TB, files ...testFile) *Builder {
	t.Helper()

	b := NewBuilder().
		SetName("test addon").
		SetDescription("test description").
		SetAuthor("tester").
		SetAuthorID(76561197960287930).
		SetTimestamp(1700000000).
		SetType(AddonTypeTool).
		AddTag(TagFun)

	for _, f := range files {
		if err := b.AddBytes(f.name, f.data); err != nil {
			t.Fatalf("AddBytes(%q): %v", f.name, err)
		}
	}

	return b
}

// buildBytes finalizes b into memory and returns archive bytes.
func buildBytes(t testing.TB, b *Builder) []byte {
	t.Helper()

	var out memWriteSeeker
	if _, err := b.Finalize(context.Background(), &out); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	return out.Bytes()
}

// buildFile finalizes b into a temp file and returns its path.
func buildFile(t testing.TB, b *Builder) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.gma")
	if _, err := b.WriteFile(context.Background(), path, BuildOptions{}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	return path
}

// openBytes parses archive bytes and registers reader cleanup.
func openBytes(t testing.TB, data []byte) *Reader {
	t.Helper()

	r, err := NewReaderFromBytes(data)
	if err != nil {
		t.Fatalf("NewReaderFromBytes: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })

	return r
}

// openFile opens archive path and registers reader cleanup.
func openFile(t testing.TB, path string) *Reader {
	t.Helper()

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open(%s): %v", path, err)
	}
	t.Cleanup(func() { _ = r.Close() })

	return r
}
