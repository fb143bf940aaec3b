// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gma

package gma

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// readU8 reads one byte.
func readU8(r io.Reader) (uint8, int, error) {
	var buf [1]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil {
		return 0, n, err
	}

	return buf[0], n, nil
}

// readU32 reads little-endian uint32.
func readU32(r io.Reader) (uint32, int, error) {
	var buf [4]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil {
		return 0, n, err
	}

	return binary.LittleEndian.Uint32(buf[:]), n, nil
}

// readU64 reads little-endian uint64.
func readU64(r io.Reader) (uint64, int, error) {
	var buf [8]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil {
		return 0, n, err
	}

	return binary.LittleEndian.Uint64(buf[:]), n, nil
}

// readCString reads a UTF-8 string up to a NUL byte or stream end.
// Returned count includes the terminator when one was read.
func readCString(br *bufio.Reader) (string, int, error) {
	var (
		consumed int
		spill    []byte
	)

	for {
		chunk, err := br.ReadSlice(0)
		consumed += len(chunk)

		if err == bufio.ErrBufferFull {
			spill = append(spill, chunk...)
			continue
		}

		if err != nil && err != io.EOF {
			return "", consumed, err
		}

		segment := chunk
		if err == nil {
			segment = chunk[:len(chunk)-1]
		}
		if len(spill) > 0 {
			spill = append(spill, segment...)
			segment = spill
		}

		if !utf8.Valid(segment) {
			return "", consumed, fmt.Errorf("%w: not valid UTF-8", ErrInvalidString)
		}

		return string(segment), consumed, nil
	}
}

// writeU8 writes one byte.
func writeU8(w io.Writer, v uint8) (int, error) {
	return w.Write([]byte{v})
}

// writeU32 writes little-endian uint32.
func writeU32(w io.Writer, v uint32) (int, error) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return w.Write(buf[:])
}

// writeU64 writes little-endian uint64.
func writeU64(w io.Writer, v uint64) (int, error) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return w.Write(buf[:])
}

// writeCString writes s followed by a NUL terminator.
// Nothing is written when s itself contains a NUL byte.
func writeCString(w io.Writer, s string) (int, error) {
	if strings.IndexByte(s, 0) >= 0 {
		return 0, fmt.Errorf("%w: embedded NUL byte", ErrInvalidString)
	}

	n, err := io.WriteString(w, s)
	if err != nil {
		return n, err
	}

	m, err := w.Write([]byte{0})
	return n + m, err
}
