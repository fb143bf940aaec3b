// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gma

package gma

import (
	"io"
)

// Info is a detached snapshot of archive header fields and entry table.
type Info struct {
	// Name is addon name.
	Name string `json:"name" yaml:"name"`
	// Author is addon author name.
	Author string `json:"author" yaml:"author"`
	// Metadata holds decoded description, type and tags.
	Metadata Metadata `json:"metadata" yaml:"metadata"`
	// Entries are file entries in table order.
	Entries []Entry `json:"entries" yaml:"entries"`
	// AuthorID is author SteamID64.
	AuthorID uint64 `json:"author_id" yaml:"author_id"`
	// Timestamp is creation time in seconds since Unix epoch.
	Timestamp uint64 `json:"timestamp" yaml:"timestamp"`
	// DataSize is the sum of entry sizes.
	DataSize uint64 `json:"data_size" yaml:"data_size"`
	// Version is format version.
	Version uint8 `json:"version" yaml:"version"`
	// Structured reports whether metadata text was a structured document.
	Structured bool `json:"structured" yaml:"structured"`
	// Compressed reports whether the archive was LZMA-compressed.
	Compressed bool `json:"compressed" yaml:"compressed"`
}

// ReadInfo opens a GMA file, snapshots header and entries, and closes it.
func ReadInfo(path string) (Info, error) {
	r, err := Open(path)
	if err != nil {
		return Info{}, err
	}
	defer func() { _ = r.Close() }()

	return r.Info(), nil
}

// ReadInfoFrom parses a GMA archive from rs and returns a snapshot.
// rs is not closed.
func ReadInfoFrom(rs io.ReadSeeker) (Info, error) {
	r, err := NewReader(struct{ io.ReadSeeker }{rs})
	if err != nil {
		return Info{}, err
	}

	return r.Info(), nil
}

// ListEntries opens a GMA file and returns entry metadata without content reads.
func ListEntries(path string) ([]Entry, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	return r.Entries(), nil
}

// Info returns a detached snapshot of header fields and entries.
func (r *Reader) Info() Info {
	m, structured := r.Metadata()

	var dataSize uint64
	for _, e := range r.entries {
		dataSize += e.Size
	}

	return Info{
		Name:       r.name,
		Author:     r.author,
		Metadata:   m,
		Entries:    r.Entries(),
		AuthorID:   r.authorID,
		Timestamp:  r.timestamp,
		DataSize:   dataSize,
		Version:    r.version,
		Structured: structured,
		Compressed: r.compressed,
	}
}
