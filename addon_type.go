// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gma

package gma

import (
	"fmt"
	"strings"
)

// AddonType is the Workshop addon category stored in metadata.
type AddonType uint8

// Addon types. AddonTypeNone means unset or unrecognized.
const (
	AddonTypeNone AddonType = iota
	AddonTypeGamemode
	AddonTypeMap
	AddonTypeWeapon
	AddonTypeVehicle
	AddonTypeNPC
	AddonTypeEntity
	AddonTypeTool
	AddonTypeEffects
	AddonTypeModel
	AddonTypeServerContent
)

// Tag is a Workshop classification tag stored in metadata.
type Tag uint8

// Addon tags. TagNone means unset or unrecognized.
const (
	TagNone Tag = iota
	TagFun
	TagRoleplay
	TagScenic
	TagMovie
	TagRealism
	TagCartoon
	TagWater
	TagComic
	TagBuild
)

// maxTags is the number of tag slots an addon carries.
const maxTags = 2

var addonTypeNames = [...]string{
	AddonTypeNone:          "",
	AddonTypeGamemode:      "gamemode",
	AddonTypeMap:           "map",
	AddonTypeWeapon:        "weapon",
	AddonTypeVehicle:       "vehicle",
	AddonTypeNPC:           "npc",
	AddonTypeEntity:        "entity",
	AddonTypeTool:          "tool",
	AddonTypeEffects:       "effects",
	AddonTypeModel:         "model",
	AddonTypeServerContent: "servercontent",
}

var tagNames = [...]string{
	TagNone:     "",
	TagFun:      "fun",
	TagRoleplay: "roleplay",
	TagScenic:   "scenic",
	TagMovie:    "movie",
	TagRealism:  "realism",
	TagCartoon:  "cartoon",
	TagWater:    "water",
	TagComic:    "comic",
	TagBuild:    "build",
}

// AddonTypes returns all known addon types in declaration order.
func AddonTypes() []AddonType {
	out := make([]AddonType, 0, len(addonTypeNames)-1)
	for i := 1; i < len(addonTypeNames); i++ {
		out = append(out, AddonType(i))
	}

	return out
}

// Tags returns all known tags in declaration order.
func Tags() []Tag {
	out := make([]Tag, 0, len(tagNames)-1)
	for i := 1; i < len(tagNames); i++ {
		out = append(out, Tag(i))
	}

	return out
}

// String returns the canonical lower-case name, or "" for AddonTypeNone.
func (t AddonType) String() string {
	if int(t) < len(addonTypeNames) {
		return addonTypeNames[t]
	}

	return ""
}

// Valid reports whether t is a known, non-empty addon type.
func (t AddonType) Valid() bool {
	return t != AddonTypeNone && int(t) < len(addonTypeNames)
}

// MarshalText implements encoding.TextMarshaler. AddonTypeNone encodes as "".
func (t AddonType) MarshalText() ([]byte, error) {
	if t != AddonTypeNone && !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAddonType, t)
	}

	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler with strict matching.
// Empty text decodes as AddonTypeNone.
func (t *AddonType) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*t = AddonTypeNone
		return nil
	}

	parsed, err := ParseAddonType(string(text))
	if err != nil {
		return err
	}

	*t = parsed
	return nil
}

// String returns the canonical lower-case name, or "" for TagNone.
func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}

	return ""
}

// Valid reports whether t is a known, non-empty tag.
func (t Tag) Valid() bool {
	return t != TagNone && int(t) < len(tagNames)
}

// MarshalText implements encoding.TextMarshaler. TagNone encodes as "".
func (t Tag) MarshalText() ([]byte, error) {
	if t != TagNone && !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAddonTag, t)
	}

	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler with strict matching.
// Empty text decodes as TagNone.
func (t *Tag) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*t = TagNone
		return nil
	}

	parsed, err := ParseTag(string(text))
	if err != nil {
		return err
	}

	*t = parsed
	return nil
}

// ParseAddonType resolves a type name case-insensitively.
// Unknown names fail with ErrInvalidAddonType.
func ParseAddonType(name string) (AddonType, error) {
	if t := lookupAddonType(name); t != AddonTypeNone {
		return t, nil
	}

	return AddonTypeNone, fmt.Errorf("%w: %q", ErrInvalidAddonType, name)
}

// ParseTag resolves a tag name case-insensitively.
// Unknown names fail with ErrInvalidAddonTag.
func ParseTag(name string) (Tag, error) {
	if t := lookupTag(name); t != TagNone {
		return t, nil
	}

	return TagNone, fmt.Errorf("%w: %q", ErrInvalidAddonTag, name)
}

// lookupAddonType is the lenient form of ParseAddonType: unknown -> AddonTypeNone.
func lookupAddonType(name string) AddonType {
	name = strings.ToLower(name)
	if name == "" {
		return AddonTypeNone
	}

	for i := 1; i < len(addonTypeNames); i++ {
		if addonTypeNames[i] == name {
			return AddonType(i)
		}
	}

	return AddonTypeNone
}

// lookupTag is the lenient form of ParseTag: unknown -> TagNone.
func lookupTag(name string) Tag {
	name = strings.ToLower(name)
	if name == "" {
		return TagNone
	}

	for i := 1; i < len(tagNames); i++ {
		if tagNames[i] == name {
			return Tag(i)
		}
	}

	return TagNone
}
