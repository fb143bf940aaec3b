// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gma

package gma

import (
	"fmt"
	"path"
	"strings"
)

// NormalizePath converts an entry/input path to normalized slash-separated form.
// It trims spaces, accepts both "/" and "\", removes leading "./" and "/", and cleans "." segments.
func NormalizePath(raw string) string {
	raw = normalizePathForMatching(raw)
	raw = strings.TrimPrefix(raw, "/")
	raw = path.Clean("/" + raw)
	raw = strings.TrimPrefix(raw, "/")
	if raw == "." {
		return ""
	}

	return strings.TrimSuffix(raw, "/")
}

// normalizePathForMatching normalizes user/input paths for matcher use.
func normalizePathForMatching(path string) string {
	path = strings.TrimSpace(path)
	path = strings.ReplaceAll(path, `\`, `/`)
	path = strings.TrimPrefix(path, "./")
	return path
}

// validateEntryName checks a caller-provided entry name; the name is stored unchanged.
func validateEntryName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidEntryPath)
	}
	if strings.IndexByte(name, 0) >= 0 {
		return fmt.Errorf("%w: %q contains NUL byte", ErrInvalidEntryPath, name)
	}

	return nil
}

// normalizeArchiveEntryPath converts a filesystem-relative path to canonical archive form.
// Archive names are slash-separated and, unless keepCase is set, lower-case.
func normalizeArchiveEntryPath(raw string, keepCase bool) (string, error) {
	normalizedPath := NormalizePath(raw)
	if normalizedPath == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidEntryPath, raw)
	}

	if !keepCase {
		normalizedPath = strings.ToLower(normalizedPath)
	}

	if err := validateEntryName(normalizedPath); err != nil {
		return "", err
	}

	return normalizedPath, nil
}
