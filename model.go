// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gma

package gma

import (
	"io"
	"runtime"
	"time"

	"github.com/woozymasta/pathrules"
)

// Internal binary layout and format constants.
const (
	identSize          = 4 // magic size in bytes
	addonFormatVersion = 1 // u32 written after author name; ignored on read
)

// ident is the magic marking an uncompressed archive.
var ident = [identSize]byte{'G', 'M', 'A', 'D'}

// Format versions and builder defaults.
const (
	// MinVersion is the oldest supported format version.
	MinVersion uint8 = 1
	// MaxVersion is the newest supported format version.
	MaxVersion uint8 = 3
	// DefaultVersion is the version written by a new Builder.
	DefaultVersion = MaxVersion
	// DefaultAuthor is the author name written when none is set.
	DefaultAuthor = "unknown"
	// DefaultAddonType is the addon type written when none is set.
	DefaultAddonType = AddonTypeTool
	// DefaultWriteBuffer is header/table buffered writer size.
	DefaultWriteBuffer = 64 * 1024
)

// validVersion reports whether v is in the supported version set.
func validVersion(v uint8) bool {
	return v >= MinVersion && v <= MaxVersion
}

// Entry describes a single file stored in the archive.
// It is a value view and never holds content.
type Entry struct {
	// Name is the relative file name as stored in the entry table.
	Name string `json:"name" yaml:"name"`
	// Size is content size in bytes.
	Size uint64 `json:"size" yaml:"size"`
	// CRC is CRC-32/ISO-HDLC of content.
	CRC uint32 `json:"crc" yaml:"crc"`
	// Offset is content offset relative to the start of the data block.
	Offset uint64 `json:"offset" yaml:"offset"`
	// Index is the 1-based position in the entry table.
	Index uint32 `json:"index" yaml:"index"`
}

// Input describes one source stream to be packed into an archive entry.
type Input struct {
	// Open returns raw source stream for this entry; called once during Finalize.
	Open func() (io.ReadCloser, error) `json:"-" yaml:"-"`
	// Name is the destination file name inside the archive.
	Name string `json:"name" yaml:"name"`
	// SizeHint is expected size in bytes (zero when unknown).
	SizeHint int64 `json:"size_hint,omitempty" yaml:"size_hint,omitempty"`
}

// EntryProgress contains one completed entry write event from the build flow.
type EntryProgress struct {
	// Name is entry name written to archive.
	Name string `json:"name" yaml:"name"`
	// Index is the 1-based entry table position.
	Index uint32 `json:"index" yaml:"index"`
	// Offset is content offset relative to the data block.
	Offset uint64 `json:"offset" yaml:"offset"`
	// Size is written content size in bytes.
	Size uint64 `json:"size" yaml:"size"`
	// CRC is CRC-32/ISO-HDLC of written content.
	CRC uint32 `json:"crc" yaml:"crc"`
}

// BuildOptions configures Finalize behavior.
type BuildOptions struct {
	// OnEntryDone is called after one entry is fully written to archive payload.
	OnEntryDone func(entry EntryProgress) `json:"-" yaml:"-"`
	// WriterBufferSize is buffered writer size for header and entry table.
	WriterBufferSize int `json:"writer_buffer_size,omitempty" yaml:"writer_buffer_size,omitempty"`
}

// BuildResult contains build output statistics.
type BuildResult struct {
	// Entries are written entries with final sizes and checksums.
	Entries []Entry `json:"entries" yaml:"entries"`
	// HeaderSize is total bytes before the entry table.
	HeaderSize int64 `json:"header_size" yaml:"header_size"`
	// IndexSize is total entry table bytes, terminator included.
	IndexSize int64 `json:"index_size" yaml:"index_size"`
	// DataSize is total content bytes written.
	DataSize int64 `json:"data_size" yaml:"data_size"`
	// ArchiveSize is uncompressed archive size.
	ArchiveSize int64 `json:"archive_size" yaml:"archive_size"`
	// CompressedSize is final size when compression is enabled; zero otherwise.
	CompressedSize int64 `json:"compressed_size,omitempty" yaml:"compressed_size,omitempty"`
	// Duration is end-to-end build duration.
	Duration time.Duration `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// ReaderOptions configures archive open behavior.
type ReaderOptions struct {
	// MaxDecompressedSize bounds in-memory decompression of LZMA archives (zero means unlimited).
	MaxDecompressedSize int64 `json:"max_decompressed_size,omitempty" yaml:"max_decompressed_size,omitempty"`
}

// DirOptions configures Builder.AddDir.
type DirOptions struct {
	// Ignore lists path rules; files matched by an include rule are skipped.
	Ignore []pathrules.Rule `json:"ignore,omitempty" yaml:"ignore,omitempty"`
	// SkipWhitelist disables Garry's Mod file whitelist enforcement.
	SkipWhitelist bool `json:"skip_whitelist,omitempty" yaml:"skip_whitelist,omitempty"`
	// KeepCase stores names as found on disk instead of lower-casing them.
	KeepCase bool `json:"keep_case,omitempty" yaml:"keep_case,omitempty"`
}

// ExtractOptions configures Extract behavior.
type ExtractOptions struct {
	// OnEntryDone is called after one entry is fully written to disk.
	// With parallel extraction it is called from worker goroutines.
	OnEntryDone func(entry Entry, written int64, outputPath string) `json:"-" yaml:"-"`
	// Entries limits extraction to selected entries; nil means all entries.
	Entries []Entry `json:"-" yaml:"-"`
	// PathPrefix limits extraction to entries under prefix.
	PathPrefix string `json:"path_prefix,omitempty" yaml:"path_prefix,omitempty"`
	// MaxWorkers is number of extraction workers (zero means GOMAXPROCS).
	MaxWorkers int `json:"max_workers,omitempty" yaml:"max_workers,omitempty"`
	// Verify checks size and CRC of each extracted entry.
	Verify bool `json:"verify,omitempty" yaml:"verify,omitempty"`
}

// applyDefaults fills zero-valued build options with defaults.
func (opts *BuildOptions) applyDefaults() {
	if opts.WriterBufferSize < 4096 {
		opts.WriterBufferSize = DefaultWriteBuffer
	}
}

// applyDefaults fills zero-valued reader options with defaults.
func (opts *ReaderOptions) applyDefaults() {
	if opts.MaxDecompressedSize < 0 {
		opts.MaxDecompressedSize = 0
	}
}

// applyDefaults fills zero-valued extract options with defaults.
func (opts *ExtractOptions) applyDefaults() {
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = runtime.GOMAXPROCS(0)
	}
	if opts.MaxWorkers < 1 {
		opts.MaxWorkers = 1
	}
}
