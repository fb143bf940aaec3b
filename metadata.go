// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gma

package gma

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Metadata is the typed form of the addon description block.
type Metadata struct {
	// Title is the addon title; written by the builder, not required on read.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	// Description is free-form addon description.
	Description string `json:"description" yaml:"description"`
	// Type is addon category; AddonTypeNone when unset or unrecognized.
	Type AddonType `json:"type,omitempty" yaml:"type,omitempty"`
	// Tags holds up to two recognized tags in slot order.
	Tags []Tag `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// metadataDocument is the JSON shape embedded in the archive header.
// Field order is the order written to disk.
type metadataDocument struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Tags        []string `json:"tags"`
}

// metadataProbe decodes a metadata document while keeping presence information.
type metadataProbe struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Type        *string   `json:"type"`
	Tags        *[]string `json:"tags"`
}

// encodeMetadata serializes m into the JSON text stored in the header.
// At most two tags are written; TagNone slots are skipped.
func encodeMetadata(m Metadata) (string, error) {
	doc := metadataDocument{
		Title:       m.Title,
		Description: m.Description,
		Type:        m.Type.String(),
		Tags:        make([]string, 0, maxTags),
	}

	for _, tag := range m.Tags {
		if len(doc.Tags) == maxTags {
			break
		}
		if !tag.Valid() {
			continue
		}

		doc.Tags = append(doc.Tags, tag.String())
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}

	return string(bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})), nil
}

// decodeMetadata parses structured metadata text. A structured document is a
// JSON object with string "description" and "type" and a string array "tags";
// "title" is optional.
// The second result is false when text is not a structured document; callers
// then treat the whole text as a plain description. This path never fails.
func decodeMetadata(text string) (Metadata, bool) {
	trimmed := bytes.TrimSpace([]byte(text))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Metadata{}, false
	}

	var probe metadataProbe
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return Metadata{}, false
	}

	if probe.Description == nil || probe.Type == nil || probe.Tags == nil {
		return Metadata{}, false
	}

	m := Metadata{
		Description: *probe.Description,
		Type:        lookupAddonType(*probe.Type),
	}
	if probe.Title != nil {
		m.Title = *probe.Title
	}

	// Only the first two slots are meaningful; unknown names leave a slot empty.
	tags := *probe.Tags
	for i := 0; i < len(tags) && i < maxTags; i++ {
		if tag := lookupTag(tags[i]); tag != TagNone {
			m.Tags = append(m.Tags, tag)
		}
	}

	return m, true
}
