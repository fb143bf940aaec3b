// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gma

package gma

import (
	"errors"
	"fmt"
)

// Sentinel errors for GMA operations. Use errors.Is in callers.
var (
	// ErrInvalidString means a string field is not valid UTF-8 or a string to be written contains a NUL byte.
	ErrInvalidString = errors.New("invalid string")
	// ErrInvalidIdent means the archive does not start with the GMAD magic.
	ErrInvalidIdent = errors.New("invalid GMA file: bad ident")
	// ErrInvalidVersion means the format version byte is outside the supported set.
	ErrInvalidVersion = errors.New("unsupported GMA version")
	// ErrCompression means LZMA compression or decompression of the archive failed.
	ErrCompression = errors.New("archive compression error")
	// ErrDecompressedTooLarge means decompressed archive exceeds ReaderOptions.MaxDecompressedSize.
	ErrDecompressedTooLarge = errors.New("decompressed archive exceeds size limit")
	// ErrInvalidAddonType means an addon type name is not recognized.
	ErrInvalidAddonType = errors.New("invalid addon type")
	// ErrInvalidAddonTag means an addon tag name is not recognized.
	ErrInvalidAddonTag = errors.New("invalid addon tag")
	// ErrMissingName means the builder was finalized without an addon name.
	ErrMissingName = errors.New("addon name is required")
	// ErrBuilderFinalized means the builder was already consumed by Finalize.
	ErrBuilderFinalized = errors.New("builder already finalized")
	// ErrReaderBusy means another ReadEntry call currently holds the archive stream.
	ErrReaderBusy = errors.New("archive stream is in use")
	// ErrNilReader means the reader is nil.
	ErrNilReader = errors.New("reader is nil")
	// ErrNilWriter means the writer is nil.
	ErrNilWriter = errors.New("writer is nil")
	// ErrClosed means the reader or resource is already closed.
	ErrClosed = errors.New("reader or resource already closed")
	// ErrEntryNotFound means the entry is not found.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrInvalidEntryPath means an entry name is empty or invalid after normalization.
	ErrInvalidEntryPath = errors.New("invalid entry path")
	// ErrNotWhitelisted means a file is not allowed by the addon whitelist.
	ErrNotWhitelisted = errors.New("file is not allowed by addon whitelist")
	// ErrChecksumMismatch means entry content does not match the stored CRC32.
	ErrChecksumMismatch = errors.New("entry checksum mismatch")
	// ErrShortEntry means fewer bytes are available than the entry size declares.
	ErrShortEntry = errors.New("entry content is shorter than declared size")
	// ErrInvalidExtractPath means archive entry path is invalid for extraction destination.
	ErrInvalidExtractPath = errors.New("invalid extract path")
	// ErrInvalidPathRules means one or more ignore/whitelist rules are invalid.
	ErrInvalidPathRules = errors.New("invalid path rules")
	// ErrInvalidProject means addon.json is missing required fields or is malformed.
	ErrInvalidProject = errors.New("invalid addon.json")
)

// VersionError reports an unsupported version byte found in the header.
type VersionError struct {
	Found uint8
}

// Error implements error.
func (e *VersionError) Error() string {
	return fmt.Sprintf("%s: %d", ErrInvalidVersion, e.Found)
}

// Is makes errors.Is(err, ErrInvalidVersion) match.
func (e *VersionError) Is(target error) bool {
	return target == ErrInvalidVersion
}
