// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gma

package gma

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

// extractFixture lists files used by extraction tests.
var extractFixture = []testFile{
	{name: "lua/autorun/init.lua", data: []byte("print('init')")},
	{name: "lua/autorun/server/sv.lua", data: []byte("print('server')")},
	{name: "materials/a.vmt", data: bytes.Repeat([]byte("m"), 100000)},
	{name: "readme.txt", data: nil},
}

// assertExtracted checks that every fixture file exists under dir with expected content.
func assertExtracted(t *testing.T, dir string, files []testFile) {
	t.Helper()

	for _, f := range files {
		got, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(f.name)))
		if err != nil {
			t.Fatalf("read %s: %v", f.name, err)
		}
		if !bytes.Equal(got, f.data) {
			t.Fatalf("content mismatch for %s", f.name)
		}
	}
}

func TestExtract_FromFileParallel(t *testing.T) {
	t.Parallel()

	r := openFile(t, buildFile(t, newTestBuilder(t, extractFixture...)))
	if r.reopen == nil {
		t.Fatal("file-backed reader must support independent handles")
	}

	var done atomic.Int64
	dst := t.TempDir()
	err := r.Extract(context.Background(), dst, ExtractOptions{
		MaxWorkers: 4,
		Verify:     true,
		OnEntryDone: func(Entry, int64, string) {
			done.Add(1)
		},
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	assertExtracted(t, dst, extractFixture)
	if done.Load() != int64(len(extractFixture)) {
		t.Fatalf("OnEntryDone called %d times, want %d", done.Load(), len(extractFixture))
	}

	// The owned stream stays usable.
	if _, err := r.ReadFile("readme.txt"); err != nil {
		t.Fatalf("ReadFile after Extract: %v", err)
	}
}

func TestExtract_FromMemoryAndCompressed(t *testing.T) {
	t.Parallel()

	for _, compress := range []bool{false, true} {
		b := newTestBuilder(t, extractFixture...).SetCompression(compress)
		r := openBytes(t, buildBytes(t, b))

		dst := t.TempDir()
		if err := r.Extract(context.Background(), dst, ExtractOptions{}); err != nil {
			t.Fatalf("Extract(compress=%v): %v", compress, err)
		}

		assertExtracted(t, dst, extractFixture)
	}
}

func TestExtract_SequentialFallback(t *testing.T) {
	t.Parallel()

	data := buildBytes(t, newTestBuilder(t, extractFixture...))

	// Hiding the concrete type removes independent handle support.
	r, err := NewReader(struct{ io.ReadSeeker }{bytes.NewReader(data)})
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })

	if r.reopen != nil {
		t.Fatal("opaque stream must not provide independent handles")
	}

	dst := t.TempDir()
	if err := r.Extract(context.Background(), dst, ExtractOptions{MaxWorkers: 8, Verify: true}); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	assertExtracted(t, dst, extractFixture)
}

func TestExtract_PathPrefix(t *testing.T) {
	t.Parallel()

	r := openBytes(t, buildBytes(t, newTestBuilder(t, extractFixture...)))

	dst := t.TempDir()
	if err := r.Extract(context.Background(), dst, ExtractOptions{PathPrefix: "LUA/autorun"}); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	assertExtracted(t, dst, extractFixture[:2])
	if _, err := os.Stat(filepath.Join(dst, "readme.txt")); !os.IsNotExist(err) {
		t.Fatalf("readme.txt must not be extracted: %v", err)
	}
}

func TestExtract_RejectsUnsafeEntryPaths(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"../evil.txt", "/etc/evil", `C:\evil.txt`, "a/../../evil"} {
		r := openBytes(t, buildBytes(t, newTestBuilder(t, testFile{name: name, data: []byte("x")})))

		err := r.Extract(context.Background(), t.TempDir(), ExtractOptions{})
		if !errors.Is(err, ErrInvalidExtractPath) {
			t.Fatalf("Extract(%q) error=%v, want ErrInvalidExtractPath", name, err)
		}
	}
}

func TestExtract_DuplicateOutputPathLastWins(t *testing.T) {
	t.Parallel()

	files := []testFile{
		{name: "a/b.txt", data: []byte("first")},
		{name: "other.txt", data: []byte("other")},
		{name: "a//b.txt", data: []byte("second")},
		{name: `a\b.txt`, data: []byte("third")},
	}

	for _, workers := range []int{1, 4} {
		r := openBytes(t, manualArchive(3, nil, "d", files))

		var done atomic.Int64
		dst := t.TempDir()
		err := r.Extract(context.Background(), dst, ExtractOptions{
			MaxWorkers: workers,
			Verify:     true,
			OnEntryDone: func(Entry, int64, string) {
				done.Add(1)
			},
		})
		if err != nil {
			t.Fatalf("workers=%d: Extract: %v", workers, err)
		}

		assertExtracted(t, dst, []testFile{files[1], {name: "a/b.txt", data: []byte("third")}})
		if done.Load() != 2 {
			t.Fatalf("workers=%d: OnEntryDone called %d times, want 2", workers, done.Load())
		}
	}
}

func TestPrepareExtractWorkItems_Deduplicates(t *testing.T) {
	t.Parallel()

	items, err := prepareExtractWorkItems([]Entry{
		{Name: "a/b", Index: 1},
		{Name: "c", Index: 2},
		{Name: "./a//b", Index: 3},
	})
	if err != nil {
		t.Fatalf("prepareExtractWorkItems: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("got %d work items, want 2", len(items))
	}
	if items[0].entry.Index != 3 || items[0].relPath != filepath.FromSlash("a/b") {
		t.Fatalf("first item=%+v, want entry 3 at a/b", items[0])
	}
	if items[1].entry.Index != 2 {
		t.Fatalf("second item=%+v, want entry 2", items[1])
	}
}

func TestExtract_VerifyDetectsCorruption(t *testing.T) {
	t.Parallel()

	data := buildBytes(t, newTestBuilder(t, testFile{name: "a.txt", data: []byte("hello")}))
	data[len(data)-1] ^= 0xff

	r := openBytes(t, data)
	err := r.Extract(context.Background(), t.TempDir(), ExtractOptions{Verify: true})
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
}

func TestExtract_CanceledAndClosed(t *testing.T) {
	t.Parallel()

	r := openBytes(t, buildBytes(t, newTestBuilder(t, extractFixture...)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Extract(ctx, t.TempDir(), ExtractOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	_ = r.Close()
	if err := r.Extract(context.Background(), t.TempDir(), ExtractOptions{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestNormalizeExtractEntryPath(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "lua/autorun/init.lua", want: "lua/autorun/init.lua"},
		{in: `materials\a\b.vmt`, want: "materials/a/b.vmt"},
		{in: "./a//b/./c", want: "a/b/c"},
		{in: "", wantErr: true},
		{in: "..", wantErr: true},
		{in: "a/../b", wantErr: true},
		{in: "/abs", wantErr: true},
		{in: "D:relative", wantErr: true},
		{in: "a\x00b", wantErr: true},
	}

	for _, tc := range testCases {
		got, err := normalizeExtractEntryPath(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidExtractPath) {
				t.Fatalf("normalizeExtractEntryPath(%q) error=%v", tc.in, err)
			}
			continue
		}

		if err != nil || got != tc.want {
			t.Fatalf("normalizeExtractEntryPath(%q)=%q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}
