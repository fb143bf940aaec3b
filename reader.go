// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gma

package gma

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// readerHeaderBufferSize is a sequential read buffer for header and entry table parsing.
const readerHeaderBufferSize = 64 * 1024

// Reader provides read-only access to a parsed GMA archive.
//
// Reader owns exactly one stream. ReadEntry borrows it for the duration of
// the callback; overlapping calls fail with ErrReaderBusy, so a callback must
// not call ReadEntry on the same Reader. Open separate readers on the same
// file for concurrent extraction, or use Extract.
type Reader struct {
	// stream is the owned archive stream; nil while borrowed by ReadEntry.
	stream io.ReadSeeker
	// closer releases resources owned by the reader (file handle).
	closer io.Closer
	// reopen returns an independent handle positioned anywhere; nil when unsupported.
	reopen func() (io.ReadSeeker, io.Closer, error)
	// name is addon name.
	name string
	// description is typed or raw description.
	description string
	// author is addon author name.
	author string
	// rawMetadata is metadata text exactly as stored.
	rawMetadata string
	// title is metadata title when structured.
	title string
	// requiredContent holds version-gated required content strings.
	requiredContent []string
	// tags holds decoded tags in slot order.
	tags []Tag
	// entries stores parsed immutable entry metadata in table order.
	entries []Entry
	// authorID is author SteamID64.
	authorID uint64
	// timestamp is creation time in seconds since epoch.
	timestamp uint64
	// dataStart is absolute stream offset of the first content byte.
	dataStart int64
	// mu guards stream slot and closed state.
	mu sync.Mutex
	// version is format version.
	version uint8
	// addonType is decoded addon type.
	addonType AddonType
	// structured reports whether metadata text decoded as a structured document.
	structured bool
	// compressed reports whether the source was LZMA-compressed.
	compressed bool
	// closed reports whether Close was already called.
	closed bool
}

// Open opens a GMA file by path and parses header and entry table.
func Open(path string) (*Reader, error) {
	return OpenWithOptions(path, ReaderOptions{})
}

// OpenWithOptions opens a GMA file by path using explicit reader options.
func OpenWithOptions(path string, opts ReaderOptions) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open GMA: %w", err)
	}

	r, err := NewReaderWithOptions(f, opts)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	r.closer = f
	if !r.compressed {
		r.reopen = func() (io.ReadSeeker, io.Closer, error) {
			fh, err := os.Open(path)
			if err != nil {
				return nil, nil, fmt.Errorf("reopen GMA: %w", err)
			}

			return fh, fh, nil
		}
	}

	return r, nil
}

// NewReader parses a GMA archive from rs, starting at its current position.
// The reader takes ownership of rs; it is closed by Close when it implements io.Closer.
func NewReader(rs io.ReadSeeker) (*Reader, error) {
	return NewReaderWithOptions(rs, ReaderOptions{})
}

// NewReaderWithOptions parses a GMA archive from rs using explicit reader options.
func NewReaderWithOptions(rs io.ReadSeeker, opts ReaderOptions) (*Reader, error) {
	if rs == nil {
		return nil, ErrNilReader
	}

	opts.applyDefaults()

	r := &Reader{}
	if err := r.parse(rs, opts); err != nil {
		return nil, err
	}

	if c, ok := rs.(io.Closer); ok {
		r.closer = c
	}

	return r, nil
}

// NewReaderFromBytes parses a GMA archive held in memory.
func NewReaderFromBytes(data []byte) (*Reader, error) {
	return NewReaderFromBytesWithOptions(data, ReaderOptions{})
}

// NewReaderFromBytesWithOptions parses an in-memory GMA archive using explicit reader options.
func NewReaderFromBytesWithOptions(data []byte, opts ReaderOptions) (*Reader, error) {
	return NewReaderWithOptions(bytes.NewReader(data), opts)
}

// Version returns format version.
func (r *Reader) Version() uint8 { return r.version }

// AuthorID returns author SteamID64. Usually zero in practice.
func (r *Reader) AuthorID() uint64 { return r.authorID }

// Timestamp returns creation time in seconds since Unix epoch.
func (r *Reader) Timestamp() uint64 { return r.timestamp }

// Time returns creation time.
func (r *Reader) Time() time.Time {
	return time.Unix(int64(r.timestamp), 0).UTC() //nolint:gosec // archive field, wraps like upstream tools
}

// Name returns addon name.
func (r *Reader) Name() string { return r.name }

// Title returns structured metadata title, empty for raw metadata.
func (r *Reader) Title() string { return r.title }

// Description returns decoded description, or the raw metadata text when it is not structured.
func (r *Reader) Description() string { return r.description }

// Type returns addon type; AddonTypeNone when absent.
func (r *Reader) Type() AddonType { return r.addonType }

// Tags returns a copy of decoded tags.
func (r *Reader) Tags() []Tag {
	out := make([]Tag, len(r.tags))
	copy(out, r.tags)
	return out
}

// HasTag reports whether the addon carries tag.
func (r *Reader) HasTag(tag Tag) bool {
	for _, t := range r.tags {
		if t == tag {
			return true
		}
	}

	return false
}

// Author returns addon author name.
func (r *Reader) Author() string { return r.author }

// Metadata returns typed metadata and whether the stored text was structured.
func (r *Reader) Metadata() (Metadata, bool) {
	return Metadata{
		Title:       r.title,
		Description: r.description,
		Type:        r.addonType,
		Tags:        r.Tags(),
	}, r.structured
}

// RawMetadata returns metadata text exactly as stored in the header.
func (r *Reader) RawMetadata() string { return r.rawMetadata }

// RequiredContent returns required content strings (always empty for version 1).
func (r *Reader) RequiredContent() []string {
	out := make([]string, len(r.requiredContent))
	copy(out, r.requiredContent)
	return out
}

// Compressed reports whether the archive source was LZMA-compressed.
func (r *Reader) Compressed() bool { return r.compressed }

// DataStart returns absolute offset of the content block in the (decompressed) stream.
func (r *Reader) DataStart() int64 { return r.dataStart }

// Entries returns a copy of parsed entries in table order.
func (r *Reader) Entries() []Entry {
	if r == nil {
		return nil
	}

	entries := make([]Entry, len(r.entries))
	copy(entries, r.entries)
	return entries
}

// Entry finds an entry by name. Names are compared after normalization.
func (r *Reader) Entry(name string) (Entry, bool) {
	if e := r.findEntryByName(name); e != nil {
		return *e, true
	}

	return Entry{}, false
}

// Close releases the underlying stream if the reader owns a closable one.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}

	r.closed = true
	if r.closer != nil {
		return r.closer.Close()
	}

	return nil
}

// parse detects compression, then reads header and entry table.
func (r *Reader) parse(rs io.ReadSeeker, opts ReaderOptions) error {
	base, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("seek start: %w", err)
	}

	var probe [identSize]byte
	if _, err := io.ReadFull(rs, probe[:]); err != nil {
		return fmt.Errorf("read ident: %w", err)
	}

	if _, err := rs.Seek(base, io.SeekStart); err != nil {
		return fmt.Errorf("seek start: %w", err)
	}

	stream := rs
	if probe != ident {
		// Anything not starting with the magic is assumed to be a whole-archive LZMA stream.
		data, err := decompressArchive(rs, opts.MaxDecompressedSize)
		if err != nil {
			return err
		}

		buf := bytes.NewReader(data)
		stream = buf
		base = 0
		r.compressed = true
		r.reopen = func() (io.ReadSeeker, io.Closer, error) {
			return bytes.NewReader(data), nil, nil
		}
	} else if br, ok := rs.(*bytes.Reader); ok {
		r.reopen = func() (io.ReadSeeker, io.Closer, error) {
			return io.NewSectionReader(br, 0, br.Size()), nil, nil
		}
	}

	p := &headerParser{br: bufio.NewReaderSize(stream, readerHeaderBufferSize)}
	if err := r.parseHeader(p); err != nil {
		return err
	}

	if err := r.parseEntries(p); err != nil {
		return err
	}

	r.stream = stream
	r.dataStart = base + p.n
	r.applyMetadata()
	return nil
}

// parseHeader reads and validates the fixed header and metadata strings.
func (r *Reader) parseHeader(p *headerParser) error {
	var magic [identSize]byte
	if err := p.bytes("ident", magic[:]); err != nil {
		return err
	}
	if magic != ident {
		return ErrInvalidIdent
	}

	version, err := p.u8("version")
	if err != nil {
		return err
	}
	if !validVersion(version) {
		return &VersionError{Found: version}
	}
	r.version = version

	if r.authorID, err = p.u64("author id"); err != nil {
		return err
	}
	if r.timestamp, err = p.u64("timestamp"); err != nil {
		return err
	}

	if version > 1 {
		for {
			s, err := p.cstring("required content")
			if err != nil {
				return err
			}
			if s == "" {
				break
			}

			r.requiredContent = append(r.requiredContent, s)
		}
	}

	if r.name, err = p.cstring("addon name"); err != nil {
		return err
	}
	if r.rawMetadata, err = p.cstring("addon metadata"); err != nil {
		return err
	}
	if r.author, err = p.cstring("author name"); err != nil {
		return err
	}

	// Addon format version is always 1 and carries no meaning.
	if _, err := p.u32("addon version"); err != nil {
		return err
	}

	return nil
}

// parseEntries reads entry records until the zero index terminator.
func (r *Reader) parseEntries(p *headerParser) error {
	var offset uint64
	for {
		index, err := p.u32("entry index")
		if err != nil {
			return err
		}
		if index == 0 {
			return nil
		}

		name, err := p.cstring("entry name")
		if err != nil {
			return err
		}

		size, err := p.u64("entry size")
		if err != nil {
			return fmt.Errorf("entry %s: %w", name, err)
		}

		crc, err := p.u32("entry crc")
		if err != nil {
			return fmt.Errorf("entry %s: %w", name, err)
		}

		r.entries = append(r.entries, Entry{
			Name:   name,
			Size:   size,
			CRC:    crc,
			Offset: offset,
			Index:  index,
		})
		offset += size
	}
}

// applyMetadata fills typed fields from metadata text, falling back to raw description.
func (r *Reader) applyMetadata() {
	m, ok := decodeMetadata(r.rawMetadata)
	if !ok {
		r.description = r.rawMetadata
		return
	}

	r.structured = true
	r.title = m.Title
	r.description = m.Description
	r.addonType = m.Type
	r.tags = m.Tags
}

// headerParser reads header primitives sequentially and tracks consumed bytes.
// Stream end inside the header is always io.ErrUnexpectedEOF.
type headerParser struct {
	br *bufio.Reader
	n  int64
}

// bytes reads exactly len(dst) bytes.
func (p *headerParser) bytes(field string, dst []byte) error {
	n, err := io.ReadFull(p.br, dst)
	p.n += int64(n)
	if err != nil {
		return fmt.Errorf("read %s: %w", field, unexpectedEOF(err))
	}

	return nil
}

// u8 reads one byte field.
func (p *headerParser) u8(field string) (uint8, error) {
	v, n, err := readU8(p.br)
	p.n += int64(n)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", field, unexpectedEOF(err))
	}

	return v, nil
}

// u32 reads little-endian uint32 field.
func (p *headerParser) u32(field string) (uint32, error) {
	v, n, err := readU32(p.br)
	p.n += int64(n)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", field, unexpectedEOF(err))
	}

	return v, nil
}

// u64 reads little-endian uint64 field.
func (p *headerParser) u64(field string) (uint64, error) {
	v, n, err := readU64(p.br)
	p.n += int64(n)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", field, unexpectedEOF(err))
	}

	return v, nil
}

// cstring reads NUL-terminated string field.
func (p *headerParser) cstring(field string) (string, error) {
	v, n, err := readCString(p.br)
	p.n += int64(n)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", field, err)
	}

	return v, nil
}

// unexpectedEOF maps io.EOF to io.ErrUnexpectedEOF.
func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}

	return err
}
