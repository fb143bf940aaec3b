// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gma

package gma

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// extractCopyBufferSize defines per-entry buffer size for file copy during extraction.
const extractCopyBufferSize = 64 * 1024

// extractWorkItem stores one selected entry with prepared output relative paths.
type extractWorkItem struct {
	relPath string
	relDir  string
	entry   Entry
}

// Extract writes selected entries to dstDir.
//
// Archives opened from a path, from memory or decompressed into memory are
// extracted in parallel by up to MaxWorkers goroutines, each with its own
// handle. Other readers are extracted sequentially through ReadEntry.
// The first error cancels remaining work and is returned.
func (r *Reader) Extract(ctx context.Context, dstDir string, opts ExtractOptions) error {
	if r == nil {
		return ErrNilReader
	}
	if ctx == nil {
		ctx = context.Background()
	}

	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return ErrClosed
	}

	opts.applyDefaults()

	entries := r.entries
	if opts.Entries != nil {
		entries = opts.Entries
	}
	entries = filterEntriesByPrefix(entries, opts.PathPrefix)
	if len(entries) == 0 {
		return nil
	}

	dstRootAbs, err := filepath.Abs(dstDir)
	if err != nil {
		return fmt.Errorf("resolve output dir: %w", err)
	}

	if err := os.MkdirAll(dstRootAbs, 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	workItems, err := prepareExtractWorkItems(entries)
	if err != nil {
		return err
	}

	if err := prepareExtractDirs(dstRootAbs, workItems); err != nil {
		return err
	}

	if r.reopen == nil || opts.MaxWorkers == 1 {
		return r.extractSequential(ctx, dstRootAbs, workItems, opts)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.MaxWorkers)
	for _, task := range workItems {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			return r.extractIndependent(gctx, dstRootAbs, task, opts)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	return ctx.Err()
}

// extractSequential extracts work items one by one through the owned stream.
func (r *Reader) extractSequential(ctx context.Context, dstRootAbs string, workItems []extractWorkItem, opts ExtractOptions) error {
	copyBuf := make([]byte, extractCopyBufferSize)
	for _, task := range workItems {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := r.ReadEntry(task.entry, func(_ Entry, rd io.Reader) error {
			return writeExtractedEntry(dstRootAbs, task, rd, copyBuf, opts)
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// extractIndependent extracts one work item through a freshly opened handle.
func (r *Reader) extractIndependent(ctx context.Context, dstRootAbs string, task extractWorkItem, opts ExtractOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	pos, err := r.entryPosition(task.entry)
	if err != nil {
		return err
	}

	rs, closer, err := r.reopen()
	if err != nil {
		return err
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}

	if _, err := rs.Seek(pos, io.SeekStart); err != nil {
		return fmt.Errorf("seek to entry %s: %w", task.entry.Name, err)
	}

	copyBuf := make([]byte, extractCopyBufferSize)
	return writeExtractedEntry(dstRootAbs, task, io.LimitReader(rs, entryLimit(task.entry)), copyBuf, opts)
}

// writeExtractedEntry writes one entry payload to its output file.
func writeExtractedEntry(dstRootAbs string, task extractWorkItem, src io.Reader, copyBuf []byte, opts ExtractOptions) error {
	outPath := filepath.Join(dstRootAbs, task.relPath)

	file, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // path is normalized below dstRootAbs
	if err != nil {
		return fmt.Errorf("open %s: %w", task.entry.Name, err)
	}

	var (
		written int64
		copyErr error
	)
	if opts.Verify {
		cw := &countingWriter{w: file}
		copyErr = verifyEntryContent(task.entry, io.TeeReader(src, cw))
		written = cw.n
	} else {
		written, copyErr = io.CopyBuffer(file, src, copyBuf)
		if copyErr != nil {
			copyErr = fmt.Errorf("write %s: %w", task.entry.Name, copyErr)
		}
	}

	closeErr := file.Close()
	if copyErr != nil {
		return copyErr
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", task.entry.Name, closeErr)
	}

	if opts.OnEntryDone != nil {
		opts.OnEntryDone(task.entry, written, outPath)
	}

	return nil
}

// prepareExtractWorkItems validates selected entries and prepares relative fs paths.
// Entries that normalize to the same output path collapse into one work item
// holding the later entry, so parallel workers never share a file.
func prepareExtractWorkItems(entries []Entry) ([]extractWorkItem, error) {
	workItems := make([]extractWorkItem, 0, len(entries))
	byPath := make(map[string]int, len(entries))
	for _, entry := range entries {
		normalizedPath, err := normalizeExtractEntryPath(entry.Name)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", entry.Name, err)
		}

		relPath := filepath.FromSlash(normalizedPath)
		relDir := filepath.Dir(relPath)
		if relDir == "." {
			relDir = ""
		}

		item := extractWorkItem{
			entry:   entry,
			relPath: relPath,
			relDir:  relDir,
		}
		if i, ok := byPath[relPath]; ok {
			workItems[i] = item
			continue
		}

		byPath[relPath] = len(workItems)
		workItems = append(workItems, item)
	}

	return workItems, nil
}

// prepareExtractDirs creates all unique parent directories needed by work items.
func prepareExtractDirs(dstRootAbs string, workItems []extractWorkItem) error {
	seen := make(map[string]struct{}, len(workItems))
	for _, task := range workItems {
		if task.relDir == "" {
			continue
		}

		dirPath := filepath.Join(dstRootAbs, task.relDir)
		if _, exists := seen[dirPath]; exists {
			continue
		}

		seen[dirPath] = struct{}{}
		if err := os.MkdirAll(dirPath, 0o750); err != nil {
			return fmt.Errorf("create output directory %s: %w", dirPath, err)
		}
	}

	return nil
}

// normalizeExtractEntryPath normalizes entry path and rejects absolute or traversal names.
func normalizeExtractEntryPath(entryPath string) (string, error) {
	raw := strings.TrimSpace(entryPath)
	if raw == "" || strings.ContainsRune(raw, 0) {
		return "", ErrInvalidExtractPath
	}

	raw = strings.ReplaceAll(raw, `\`, `/`)
	if strings.HasPrefix(raw, "/") || hasDrivePrefix(raw) {
		return "", ErrInvalidExtractPath
	}

	parts := strings.Split(raw, "/")
	cleanParts := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			return "", ErrInvalidExtractPath
		default:
			cleanParts = append(cleanParts, part)
		}
	}
	if len(cleanParts) == 0 {
		return "", ErrInvalidExtractPath
	}

	return strings.Join(cleanParts, "/"), nil
}

// hasDrivePrefix reports whether path starts with a drive prefix like C:.
func hasDrivePrefix(path string) bool {
	if len(path) < 2 || path[1] != ':' {
		return false
	}

	c := path[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
