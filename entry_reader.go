// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gma

package gma

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"
)

// maxPreallocEntryBytes caps up-front allocation in ReadEntryBytes.
const maxPreallocEntryBytes = 16 * 1024 * 1024

// findEntryByName resolves one entry by normalized name.
func (r *Reader) findEntryByName(name string) *Entry {
	lookupName := NormalizePath(name)
	for i := range r.entries {
		if r.entries[i].Name == name || NormalizePath(r.entries[i].Name) == lookupName {
			return &r.entries[i]
		}
	}

	return nil
}

// takeStream moves the owned stream out of the reader slot.
func (r *Reader) takeStream() (io.ReadSeeker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	if r.stream == nil {
		return nil, ErrReaderBusy
	}

	s := r.stream
	r.stream = nil
	return s, nil
}

// putStream returns a borrowed stream to the reader slot.
func (r *Reader) putStream(s io.ReadSeeker) {
	r.mu.Lock()
	r.stream = s
	r.mu.Unlock()
}

// entryPosition resolves absolute stream position of entry content.
func (r *Reader) entryPosition(entry Entry) (int64, error) {
	if entry.Offset > uint64(math.MaxInt64-r.dataStart) {
		return 0, fmt.Errorf("%w: entry %s offset %d out of range", ErrShortEntry, entry.Name, entry.Offset)
	}

	return r.dataStart + int64(entry.Offset), nil //nolint:gosec // bounded above
}

// entryLimit converts entry size into io.LimitReader bound.
func entryLimit(entry Entry) int64 {
	if entry.Size > math.MaxInt64 {
		return math.MaxInt64
	}

	return int64(entry.Size)
}

// ReadEntry seeks to entry content and passes a reader limited to entry.Size bytes to fn.
//
// The archive stream is borrowed for the duration of fn and returned afterwards,
// even when fn fails. Calls must not overlap: a concurrent or nested call
// returns ErrReaderBusy. When the archive is shorter than the declared size,
// the limited reader simply reaches EOF early; use VerifyEntry for strict checks.
func (r *Reader) ReadEntry(entry Entry, fn func(Entry, io.Reader) error) error {
	if r == nil {
		return ErrNilReader
	}

	pos, err := r.entryPosition(entry)
	if err != nil {
		return err
	}

	stream, err := r.takeStream()
	if err != nil {
		return err
	}
	defer r.putStream(stream)

	if _, err := stream.Seek(pos, io.SeekStart); err != nil {
		return fmt.Errorf("seek to entry %s: %w", entry.Name, err)
	}

	return fn(entry, io.LimitReader(stream, entryLimit(entry)))
}

// ReadEntryBytes reads full content of entry.
func (r *Reader) ReadEntryBytes(entry Entry) ([]byte, error) {
	var buf bytes.Buffer
	err := r.ReadEntry(entry, func(_ Entry, rd io.Reader) error {
		buf.Grow(int(min(entry.Size, maxPreallocEntryBytes))) //nolint:gosec // bounded by maxPreallocEntryBytes
		if _, err := buf.ReadFrom(rd); err != nil {
			return fmt.Errorf("read entry %s: %w", entry.Name, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// ReadFile reads full content of the named entry.
func (r *Reader) ReadFile(name string) ([]byte, error) {
	e := r.findEntryByName(name)
	if e == nil {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}

	return r.ReadEntryBytes(*e)
}

// VerifyEntry re-reads entry content and checks its size and CRC32.
func (r *Reader) VerifyEntry(entry Entry) error {
	return r.ReadEntry(entry, func(e Entry, rd io.Reader) error {
		return verifyEntryContent(e, rd)
	})
}

// Verify checks every entry and returns all failures joined.
func (r *Reader) Verify(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs []error
	for _, entry := range r.entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := r.VerifyEntry(entry); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// verifyEntryContent hashes rd and compares result with entry metadata.
func verifyEntryContent(entry Entry, rd io.Reader) error {
	h := crc32.NewIEEE()
	n, err := io.Copy(h, rd)
	if err != nil {
		return fmt.Errorf("read entry %s: %w", entry.Name, err)
	}

	if uint64(n) != entry.Size { //nolint:gosec // n is non-negative
		return fmt.Errorf("%w: %s has %d of %d bytes", ErrShortEntry, entry.Name, n, entry.Size)
	}

	if sum := h.Sum32(); sum != entry.CRC {
		return fmt.Errorf("%w: %s crc %08x, want %08x", ErrChecksumMismatch, entry.Name, sum, entry.CRC)
	}

	return nil
}
