// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gma

package gma

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ulikunitz/xz/lzma"
)

const (
	// lzmaHeaderSize is properties byte, u32 dictionary size and u64 uncompressed size.
	lzmaHeaderSize = 1 + 4 + 8
	// lzmaMaxProperties is the first invalid lc/lp/pb properties byte (9*5*5).
	lzmaMaxProperties = 225
	// lzmaUnknownSize marks a stream without uncompressed size in its header.
	lzmaUnknownSize = 1<<64 - 1
	// maxArchiveDictCap bounds the decoder dictionary allocated for an archive.
	maxArchiveDictCap = 1 << 27
	// defaultArchiveDictCap is the dictionary size used by the default LZMA writer.
	defaultArchiveDictCap = 1 << 23
)

// decompressArchive inflates a whole LZMA ("alone" format) stream into memory.
// A positive limit bounds decompressed size.
//
// The header is checked before the decoder allocates its dictionary, so
// input that is not LZMA at all fails without a large allocation.
func decompressArchive(src io.Reader, limit int64) ([]byte, error) {
	var hdr [lzmaHeaderSize]byte
	if _, err := io.ReadFull(src, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: read LZMA header: %w", ErrCompression, err)
	}

	if err := checkLZMAHeader(hdr[:], limit); err != nil {
		return nil, err
	}

	lr, err := lzma.NewReader(io.MultiReader(bytes.NewReader(hdr[:]), src))
	if err != nil {
		return nil, fmt.Errorf("%w: open LZMA stream: %w", ErrCompression, err)
	}

	var r io.Reader = lr
	if limit > 0 {
		r = io.LimitReader(lr, limit+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: decompress: %w", ErrCompression, err)
	}

	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrDecompressedTooLarge, limit)
	}

	return data, nil
}

// checkLZMAHeader validates an LZMA header in place.
// A dictionary larger than a known uncompressed size is shrunk to that size,
// which cannot change the decoded output.
func checkLZMAHeader(hdr []byte, limit int64) error {
	if hdr[0] >= lzmaMaxProperties {
		return fmt.Errorf("%w: invalid LZMA properties 0x%02x", ErrCompression, hdr[0])
	}

	dictCap := int64(binary.LittleEndian.Uint32(hdr[1:5]))
	size := binary.LittleEndian.Uint64(hdr[5:13])
	if size != lzmaUnknownSize {
		if size > math.MaxInt64 {
			return fmt.Errorf("%w: invalid LZMA size %d", ErrCompression, size)
		}
		if need := max(int64(size), lzma.MinDictCap); dictCap > need {
			dictCap = need
			binary.LittleEndian.PutUint32(hdr[1:5], uint32(dictCap)) //nolint:gosec // smaller than the original u32 value
		}
	}

	dictLimit := int64(maxArchiveDictCap)
	if limit > 0 {
		dictLimit = min(dictLimit, max(limit, defaultArchiveDictCap))
	}
	if dictCap > dictLimit {
		return fmt.Errorf("%w: LZMA dictionary %d bytes exceeds %d", ErrCompression, dictCap, dictLimit)
	}

	if limit > 0 && size != lzmaUnknownSize && int64(size) > limit { //nolint:gosec // checked against MaxInt64 above
		return fmt.Errorf("%w: header declares %d bytes, limit %d", ErrDecompressedTooLarge, size, limit)
	}

	return nil
}

// compressArchive deflates src as one LZMA stream into dst and returns bytes written to dst.
func compressArchive(dst io.Writer, src io.Reader) (int64, error) {
	cw := &countingWriter{w: dst}

	lw, err := lzma.NewWriter(cw)
	if err != nil {
		return cw.n, fmt.Errorf("%w: open LZMA writer: %w", ErrCompression, err)
	}

	if _, err := io.Copy(lw, src); err != nil {
		_ = lw.Close()
		return cw.n, fmt.Errorf("%w: compress: %w", ErrCompression, err)
	}

	if err := lw.Close(); err != nil {
		return cw.n, fmt.Errorf("%w: finish LZMA stream: %w", ErrCompression, err)
	}

	return cw.n, nil
}

// countingWriter counts bytes passed to the wrapped writer.
type countingWriter struct {
	w io.Writer
	n int64
}

// Write implements io.Writer.
func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// memWriteSeeker is an in-memory io.WriteSeeker used as staging sink for compressed builds.
type memWriteSeeker struct {
	buf []byte
	pos int64
}

// errNegativeSeek is returned when seek resolves before buffer start.
var errNegativeSeek = errors.New("seek to negative position")

// Write implements io.Writer, growing buffer as needed.
func (m *memWriteSeeker) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.buf)) {
		if end > int64(cap(m.buf)) {
			grown := make([]byte, end, max(end, 2*int64(cap(m.buf))))
			copy(grown, m.buf)
			m.buf = grown
		} else {
			m.buf = m.buf[:end]
		}
	}

	copy(m.buf[m.pos:end], p)
	m.pos = end
	return len(p), nil
}

// Seek implements io.Seeker.
func (m *memWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = m.pos + offset
	case io.SeekEnd:
		abs = int64(len(m.buf)) + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}

	if abs < 0 {
		return 0, errNegativeSeek
	}

	m.pos = abs
	return abs, nil
}

// Bytes returns written content.
func (m *memWriteSeeker) Bytes() []byte {
	return m.buf
}
