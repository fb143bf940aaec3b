// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gma

package gma

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	// defaultBuildWriterPool reuses default-sized bufio writers between builds.
	defaultBuildWriterPool = sync.Pool{
		New: func() any {
			return bufio.NewWriterSize(io.Discard, DefaultWriteBuffer)
		},
	}
	// defaultCopyBufferPool reuses payload copy buffers between builds.
	defaultCopyBufferPool = sync.Pool{
		New: func() any {
			return new([copyBufferSize]byte)
		},
	}
)

const (
	// copyBufferSize is per-build temporary buffer used by streaming payload copy.
	copyBufferSize = 64 * 1024
	// entryPatchSize is size+crc placeholder width in an entry record.
	entryPatchSize = 8 + 4
)

// entryPatch stores final values for one placeholder produced during payload write.
type entryPatch struct {
	size uint64
	crc  uint32
}

// Builder accumulates addon fields and file sources and writes a GMA archive.
// A Builder is single-use: Finalize consumes all sources.
type Builder struct {
	name        string
	description string
	author      string
	inputs      []Input
	authorID    uint64
	timestamp   uint64
	tags        [maxTags]Tag
	newestTag   int
	version     uint8
	addonType   AddonType
	compression bool
	finalized   bool
}

// NewBuilder returns a builder with defaults: version 3, author id 0,
// current time, empty description, author "unknown", type tool, no tags,
// compression off.
func NewBuilder() *Builder {
	return &Builder{
		version:   DefaultVersion,
		timestamp: timeToUint64(time.Now()),
		author:    DefaultAuthor,
		addonType: DefaultAddonType,
	}
}

// SetVersion sets format version; values outside 1..3 fail at Finalize.
func (b *Builder) SetVersion(version uint8) *Builder {
	b.version = version
	return b
}

// SetAuthorID sets author SteamID64.
func (b *Builder) SetAuthorID(id uint64) *Builder {
	b.authorID = id
	return b
}

// SetTimestamp sets creation time in seconds since Unix epoch.
func (b *Builder) SetTimestamp(ts uint64) *Builder {
	b.timestamp = ts
	return b
}

// SetTime sets creation time.
func (b *Builder) SetTime(t time.Time) *Builder {
	b.timestamp = timeToUint64(t)
	return b
}

// SetName sets addon name. Required.
func (b *Builder) SetName(name string) *Builder {
	b.name = name
	return b
}

// SetDescription sets addon description.
func (b *Builder) SetDescription(description string) *Builder {
	b.description = description
	return b
}

// SetAuthor sets author name.
func (b *Builder) SetAuthor(author string) *Builder {
	b.author = author
	return b
}

// SetType sets addon type.
func (b *Builder) SetType(t AddonType) *Builder {
	b.addonType = t
	return b
}

// AddTag adds a tag. Two slots are kept: empty slots fill first, after that
// the new tag takes slot 0 and the previously newest tag moves to slot 1.
// TagNone is ignored. Tags are kept unique: a tag already present is not
// stored again and only becomes the newest, so Fun, Fun yields [Fun] rather
// than [Fun, Fun].
func (b *Builder) AddTag(tag Tag) *Builder {
	if !tag.Valid() {
		return b
	}

	for i := range b.tags {
		if b.tags[i] == tag {
			b.newestTag = i
			return b
		}
	}

	switch {
	case b.tags[0] == TagNone:
		b.tags[0] = tag
		b.newestTag = 0
	case b.tags[1] == TagNone:
		b.tags[1] = tag
		b.newestTag = 1
	default:
		b.tags[1] = b.tags[b.newestTag]
		b.tags[0] = tag
		b.newestTag = 0
	}

	return b
}

// SetCompression enables whole-archive LZMA compression.
// Garry's Mod itself loads only uncompressed archives; Workshop downloads may be compressed.
func (b *Builder) SetCompression(enabled bool) *Builder {
	b.compression = enabled
	return b
}

// Tags returns occupied tag slots in slot order.
func (b *Builder) Tags() []Tag {
	out := make([]Tag, 0, maxTags)
	for _, t := range b.tags {
		if t != TagNone {
			out = append(out, t)
		}
	}

	return out
}

// Metadata returns metadata that Finalize will embed.
func (b *Builder) Metadata() Metadata {
	return Metadata{
		Title:       b.name,
		Description: b.description,
		Type:        b.addonType,
		Tags:        b.Tags(),
	}
}

// Len returns number of queued file sources.
func (b *Builder) Len() int {
	return len(b.inputs)
}

// AddInput queues a stream-backed source. Name is stored unchanged.
func (b *Builder) AddInput(in Input) error {
	if err := validateEntryName(in.Name); err != nil {
		return err
	}
	if in.Open == nil {
		return fmt.Errorf("input %s: Open is nil", in.Name)
	}

	b.inputs = append(b.inputs, in)
	return nil
}

// AddBytes queues in-memory content under name.
func (b *Builder) AddBytes(name string, data []byte) error {
	return b.AddInput(Input{
		Name:     name,
		SizeHint: int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	})
}

// AddReader queues content read from r under name. r is consumed once and
// closed after writing when it implements io.Closer.
func (b *Builder) AddReader(name string, r io.Reader) error {
	if r == nil {
		return ErrNilReader
	}

	return b.AddInput(Input{
		Name: name,
		Open: func() (io.ReadCloser, error) {
			if rc, ok := r.(io.ReadCloser); ok {
				return rc, nil
			}

			return io.NopCloser(r), nil
		},
	})
}

// AddFile queues a file from disk; its archive name is the normalized path.
func (b *Builder) AddFile(path string) error {
	name := NormalizePath(filepath.ToSlash(path))
	return b.AddFileAs(path, name)
}

// AddFileAs queues a file from disk under an explicit archive name.
// The file must exist now; it is opened during Finalize.
func (b *Builder) AddFileAs(path string, name string) error {
	in, err := fileInput(path, name)
	if err != nil {
		return err
	}

	return b.AddInput(in)
}

// fileInput describes a file on disk as an input; the file must exist now.
func fileInput(path string, name string) (Input, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Input{}, fmt.Errorf("stat input: %w", err)
	}
	if fi.IsDir() {
		return Input{}, fmt.Errorf("%w: %s is a directory", ErrInvalidEntryPath, path)
	}

	return Input{
		Name:     name,
		SizeHint: fi.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path) //nolint:gosec // caller-provided input path
		},
	}, nil
}

// Finalize writes the archive into out using default build options.
func (b *Builder) Finalize(ctx context.Context, out io.WriteSeeker) (*BuildResult, error) {
	return b.FinalizeWithOptions(ctx, out, BuildOptions{})
}

// FinalizeWithOptions writes the archive into out.
//
// Uncompressed archives are written in place: out must support seeking back
// to patch entry sizes and checksums, and is left positioned at archive end.
// With compression enabled the archive is staged in memory and the LZMA
// stream is written to out sequentially.
func (b *Builder) FinalizeWithOptions(ctx context.Context, out io.WriteSeeker, opts BuildOptions) (*BuildResult, error) {
	startedAt := time.Now()

	if b.finalized {
		return nil, ErrBuilderFinalized
	}
	if out == nil {
		return nil, ErrNilWriter
	}
	if b.name == "" {
		return nil, ErrMissingName
	}
	if !validVersion(b.version) {
		return nil, &VersionError{Found: b.version}
	}

	if ctx == nil {
		ctx = context.Background()
	}

	opts.applyDefaults()
	b.finalized = true

	if !b.compression {
		res, err := b.writeArchive(ctx, out, opts)
		if err != nil {
			return nil, err
		}

		res.Duration = time.Since(startedAt)
		return res, nil
	}

	staging := &memWriteSeeker{}
	res, err := b.writeArchive(ctx, staging, opts)
	if err != nil {
		return nil, err
	}

	n, err := compressArchive(out, bytes.NewReader(staging.Bytes()))
	if err != nil {
		return nil, err
	}

	res.CompressedSize = n
	res.Duration = time.Since(startedAt)
	return res, nil
}

// WriteFile writes the archive to path, replacing an existing file.
// A partially written file is removed on failure.
func (b *Builder) WriteFile(ctx context.Context, path string, opts BuildOptions) (*BuildResult, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644) //nolint:gosec // archives are meant to be shared
	if err != nil {
		return nil, fmt.Errorf("create GMA file: %w", err)
	}

	fail := func(err error) (*BuildResult, error) {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, err
	}

	res, err := b.FinalizeWithOptions(ctx, f, opts)
	if err != nil {
		return fail(err)
	}

	if err := f.Sync(); err != nil {
		return fail(fmt.Errorf("sync GMA file: %w", err))
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("close GMA file: %w", err)
	}

	return res, nil
}

// writeArchive serializes header, entry table with placeholders, contents and patches.
func (b *Builder) writeArchive(ctx context.Context, out io.WriteSeeker, opts BuildOptions) (*BuildResult, error) {
	metadata, err := encodeMetadata(b.Metadata())
	if err != nil {
		return nil, err
	}

	start, err := out.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("seek start: %w", err)
	}

	bw, releaseWriter := acquireBuildWriter(out, opts.WriterBufferSize)
	defer releaseWriter()

	w := &countingWriter{w: bw}
	if err := b.writeHeader(w, metadata); err != nil {
		return nil, err
	}
	headerSize := w.n

	// Pass 1: entry records with zero size/crc, remembering where each placeholder starts.
	patchOffsets := make([]int64, 0, len(b.inputs))
	for i, in := range b.inputs {
		if _, err := writeU32(w, uint32(i+1)); err != nil { //nolint:gosec // entry count fits uint32
			return nil, fmt.Errorf("write entry %d index: %w", i+1, err)
		}
		if _, err := writeCString(w, in.Name); err != nil {
			return nil, fmt.Errorf("write entry %d name: %w", i+1, err)
		}

		patchOffsets = append(patchOffsets, start+w.n)
		if _, err := writeU64(w, 0); err != nil {
			return nil, fmt.Errorf("write entry %s placeholder: %w", in.Name, err)
		}
		if _, err := writeU32(w, 0); err != nil {
			return nil, fmt.Errorf("write entry %s placeholder: %w", in.Name, err)
		}
	}

	if _, err := writeU32(w, 0); err != nil {
		return nil, fmt.Errorf("write entries terminator: %w", err)
	}
	indexSize := w.n - headerSize

	// Pass 2: contents in the same order, hashed while streaming.
	copyBuf, releaseCopyBuffer := acquireCopyBuffer()
	defer releaseCopyBuffer()

	patches := make([]entryPatch, 0, len(b.inputs))
	entries := make([]Entry, 0, len(b.inputs))
	var dataOffset uint64
	for i, in := range b.inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		patch, err := writeInputContent(w, in, copyBuf)
		if err != nil {
			return nil, err
		}

		entry := Entry{
			Name:   in.Name,
			Size:   patch.size,
			CRC:    patch.crc,
			Offset: dataOffset,
			Index:  uint32(i + 1), //nolint:gosec // entry count fits uint32
		}
		patches = append(patches, patch)
		entries = append(entries, entry)
		dataOffset += patch.size

		if opts.OnEntryDone != nil {
			opts.OnEntryDone(EntryProgress{
				Name:   entry.Name,
				Index:  entry.Index,
				Offset: entry.Offset,
				Size:   entry.Size,
				CRC:    entry.CRC,
			})
		}
	}

	if err := bw.Flush(); err != nil {
		return nil, fmt.Errorf("flush contents: %w", err)
	}

	if len(patchOffsets) != len(patches) {
		panic(fmt.Sprintf("gma: %d entry placeholders but %d written entries", len(patchOffsets), len(patches)))
	}

	// Patch pass.
	for i, offset := range patchOffsets {
		if _, err := out.Seek(offset, io.SeekStart); err != nil {
			return nil, fmt.Errorf("seek to entry %d: %w", i+1, err)
		}

		if err := writeEntryPatch(out, patches[i]); err != nil {
			return nil, fmt.Errorf("patch entry %d: %w", i+1, err)
		}
	}

	end, err := out.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("seek end: %w", err)
	}

	return &BuildResult{
		Entries:     entries,
		HeaderSize:  headerSize,
		IndexSize:   indexSize,
		DataSize:    int64(dataOffset), //nolint:gosec // bounded by written stream size
		ArchiveSize: end - start,
	}, nil
}

// writeHeader writes fixed header fields and metadata strings.
func (b *Builder) writeHeader(w io.Writer, metadata string) error {
	if _, err := w.Write(ident[:]); err != nil {
		return fmt.Errorf("write ident: %w", err)
	}
	if _, err := writeU8(w, b.version); err != nil {
		return fmt.Errorf("write version: %w", err)
	}
	if _, err := writeU64(w, b.authorID); err != nil {
		return fmt.Errorf("write author id: %w", err)
	}
	if _, err := writeU64(w, b.timestamp); err != nil {
		return fmt.Errorf("write timestamp: %w", err)
	}

	// Required content list is unused; version 1 has no such section at all.
	if b.version > 1 {
		if _, err := writeU8(w, 0); err != nil {
			return fmt.Errorf("write required content: %w", err)
		}
	}

	if _, err := writeCString(w, b.name); err != nil {
		return fmt.Errorf("write addon name: %w", err)
	}
	if _, err := writeCString(w, metadata); err != nil {
		return fmt.Errorf("write addon metadata: %w", err)
	}
	if _, err := writeCString(w, b.author); err != nil {
		return fmt.Errorf("write author name: %w", err)
	}
	if _, err := writeU32(w, addonFormatVersion); err != nil {
		return fmt.Errorf("write addon version: %w", err)
	}

	return nil
}

// writeInputContent opens one input and streams it into dst while computing CRC32.
func writeInputContent(dst io.Writer, in Input, copyBuf []byte) (entryPatch, error) {
	rc, err := openInputReader(in)
	if err != nil {
		return entryPatch{}, err
	}

	h := crc32.NewIEEE()
	n, copyErr := io.CopyBuffer(dst, io.TeeReader(rc, h), copyBuf)
	closeErr := rc.Close()
	if copyErr != nil {
		return entryPatch{}, fmt.Errorf("stream input %s: %w", in.Name, copyErr)
	}
	if closeErr != nil {
		return entryPatch{}, fmt.Errorf("close input %s: %w", in.Name, closeErr)
	}

	return entryPatch{
		size: uint64(n), //nolint:gosec // io.Copy count is non-negative
		crc:  h.Sum32(),
	}, nil
}

// writeEntryPatch overwrites one size/crc placeholder at current position.
func writeEntryPatch(w io.Writer, patch entryPatch) error {
	var buf bytes.Buffer
	buf.Grow(entryPatchSize)
	_, _ = writeU64(&buf, patch.size)
	_, _ = writeU32(&buf, patch.crc)

	_, err := w.Write(buf.Bytes())
	return err
}

// openInputReader opens source stream for one input.
func openInputReader(in Input) (io.ReadCloser, error) {
	if in.Open == nil {
		return nil, fmt.Errorf("input %s: Open is nil", in.Name)
	}

	rc, err := in.Open()
	if err != nil {
		return nil, fmt.Errorf("open input %s: %w", in.Name, err)
	}
	if rc == nil {
		return nil, fmt.Errorf("open input %s: %w", in.Name, ErrNilReader)
	}

	return rc, nil
}

// acquireBuildWriter returns a buffered writer and release callback.
func acquireBuildWriter(out io.Writer, size int) (*bufio.Writer, func()) {
	if size == DefaultWriteBuffer {
		w := defaultBuildWriterPool.Get().(*bufio.Writer) //nolint:forcetypeassert // pool contains only *bufio.Writer
		w.Reset(out)

		return w, func() {
			w.Reset(io.Discard)
			defaultBuildWriterPool.Put(w)
		}
	}

	return bufio.NewWriterSize(out, size), func() {}
}

// acquireCopyBuffer returns reusable payload copy buffer and release callback.
func acquireCopyBuffer() ([]byte, func()) {
	arr := defaultCopyBufferPool.Get().(*[copyBufferSize]byte) //nolint:forcetypeassert // pool contains only fixed-size buffers
	buf := arr[:]

	return buf, func() {
		defaultCopyBufferPool.Put(arr)
	}
}

// timeToUint64 converts time to Unix seconds, clamping negative values to zero.
func timeToUint64(t time.Time) uint64 {
	u := t.Unix()
	if u < 0 {
		return 0
	}

	return uint64(u)
}
