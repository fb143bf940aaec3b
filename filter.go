// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gma

package gma

import "strings"

// FilterEntriesByPrefix keeps entries under prefix, or the entry itself when prefix names a file.
// Matching is case-insensitive, the way Garry's Mod resolves addon paths.
func FilterEntriesByPrefix(entries []Entry, prefix string) []Entry {
	return filterEntriesByPrefix(entries, prefix)
}

// FilterEntriesBySize keeps entries whose size lies within [minSize, maxSize]; zero maxSize means no upper bound.
func FilterEntriesBySize(entries []Entry, minSize uint64, maxSize uint64) []Entry {
	if minSize == 0 && maxSize == 0 {
		return entries
	}

	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.Size < minSize {
			continue
		}
		if maxSize > 0 && entry.Size > maxSize {
			continue
		}

		out = append(out, entry)
	}

	return out
}

// filterEntriesByPrefix keeps entries under prefix (or exact match if it points to a file).
func filterEntriesByPrefix(entries []Entry, prefix string) []Entry {
	prefix = strings.ToLower(NormalizePath(prefix))
	if prefix == "" {
		return entries
	}

	normalizedPrefix := prefix + "/"
	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		entryPath := strings.ToLower(NormalizePath(entry.Name))
		if entryPath == prefix || strings.HasPrefix(entryPath, normalizedPrefix) {
			out = append(out, entry)
		}
	}

	return out
}
