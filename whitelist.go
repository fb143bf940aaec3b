// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gma

package gma

import (
	"fmt"
	"sync"

	"github.com/woozymasta/pathrules"
)

// whitelistGroup lists allowed extensions below one directory pattern.
type whitelistGroup struct {
	dir  string
	exts []string
}

var (
	modelExts    = []string{"mdl", "vtx", "phy", "ani", "vvd"}
	materialExts = []string{"vmt", "vtf", "png", "jpg", "jpeg"}
	soundExts    = []string{"wav", "mp3", "ogg"}
	mapExts      = []string{"bsp", "lmp", "nav", "ain"}
)

// whitelistGroups mirrors the file whitelist enforced by Garry's Mod for Workshop addons.
var whitelistGroups = []whitelistGroup{
	{dir: "lua", exts: []string{"lua"}},
	{dir: "scenes", exts: []string{"vcd"}},
	{dir: "particles", exts: []string{"pcf"}},
	{dir: "resource/fonts", exts: []string{"ttf"}},
	{dir: "resource/localization", exts: []string{"properties"}},
	{dir: "scripts/vehicles", exts: []string{"txt"}},
	{dir: "maps", exts: mapExts},
	{dir: "maps/thumb", exts: []string{"png"}},
	{dir: "sound", exts: soundExts},
	{dir: "materials", exts: materialExts},
	{dir: "materials/colorcorrection", exts: []string{"raw"}},
	{dir: "models", exts: modelExts},
	{dir: "shaders", exts: []string{"vcs"}},
	{dir: "data_static", exts: []string{"txt", "dat", "json", "xml", "csv", "dem", "vcd", "vtf", "vmt", "png", "jpg", "jpeg", "mp3", "wav", "ogg"}},
	{dir: "gamemodes/*/gamemode", exts: []string{"lua"}},
	{dir: "gamemodes/*/entities", exts: []string{"lua"}},
	{dir: "gamemodes/*/backgrounds", exts: []string{"png", "jpg", "jpeg"}},
	{dir: "gamemodes/*/content/models", exts: modelExts},
	{dir: "gamemodes/*/content/materials", exts: materialExts},
	{dir: "gamemodes/*/content/scenes", exts: []string{"vcd"}},
	{dir: "gamemodes/*/content/particles", exts: []string{"pcf"}},
	{dir: "gamemodes/*/content/resource/fonts", exts: []string{"ttf"}},
	{dir: "gamemodes/*/content/scripts/vehicles", exts: []string{"txt"}},
	{dir: "gamemodes/*/content/resource/localization", exts: []string{"properties"}},
	{dir: "gamemodes/*/content/maps", exts: mapExts},
	{dir: "gamemodes/*/content/maps/thumb", exts: []string{"png"}},
	{dir: "gamemodes/*/content/sound", exts: soundExts},
}

// whitelistTopLevel lists single files allowed directly inside a gamemode folder.
var whitelistTopLevel = []string{
	"gamemodes/*/*.txt",
	"gamemodes/*/*.fgd",
	"gamemodes/*/logo.png",
	"gamemodes/*/icon24.png",
}

// whitelistMatcher is compiled once on first use.
var whitelistMatcher = sync.OnceValues(func() (*ruleMatcher, error) {
	return newRuleMatcher(WhitelistRules(), pathrules.MatcherOptions{
		CaseInsensitive: true,
		DefaultAction:   pathrules.ActionExclude,
	})
})

// WhitelistRules returns include rules of the default addon file whitelist.
func WhitelistRules() []pathrules.Rule {
	rules := make([]pathrules.Rule, 0, 256)
	for _, group := range whitelistGroups {
		for _, ext := range group.exts {
			rules = append(rules,
				pathrules.Rule{Action: pathrules.ActionInclude, Pattern: group.dir + "/*." + ext},
				pathrules.Rule{Action: pathrules.ActionInclude, Pattern: group.dir + "/**/*." + ext},
			)
		}
	}

	for _, pattern := range whitelistTopLevel {
		rules = append(rules, pathrules.Rule{
			Action:  pathrules.ActionInclude,
			Pattern: pattern,
		})
	}

	return rules
}

// IsWhitelisted reports whether an archive entry name is allowed by the default whitelist.
func IsWhitelisted(name string) bool {
	m, err := whitelistMatcher()
	if err != nil {
		return false
	}

	return m.Match(name)
}

// IgnoreRules converts ignore patterns into include rules: a match means "skip".
func IgnoreRules(patterns ...string) []pathrules.Rule {
	rules := make([]pathrules.Rule, 0, len(patterns))
	for _, pattern := range patterns {
		rules = append(rules, pathrules.Rule{
			Action:  pathrules.ActionInclude,
			Pattern: pattern,
		})
	}

	return rules
}

// ruleMatcher holds compiled path rules.
type ruleMatcher struct {
	matcher *pathrules.Matcher
}

// newRuleMatcher compiles path rules; nil matcher means no rules.
func newRuleMatcher(rules []pathrules.Rule, opts pathrules.MatcherOptions) (*ruleMatcher, error) {
	rules = normalizeRules(rules)
	if len(rules) == 0 {
		return nil, nil
	}

	if opts.DefaultAction == pathrules.ActionUnknown {
		opts.DefaultAction = pathrules.ActionExclude
	}

	matcher, err := pathrules.NewMatcher(rules, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: compile rules: %w", ErrInvalidPathRules, err)
	}

	return &ruleMatcher{matcher: matcher}, nil
}

// normalizeRules normalizes rule patterns and drops empty patterns.
func normalizeRules(rules []pathrules.Rule) []pathrules.Rule {
	normalized := make([]pathrules.Rule, 0, len(rules))
	for _, rule := range rules {
		pattern := normalizePathForMatching(rule.Pattern)
		if pattern == "" {
			continue
		}

		normalized = append(normalized, pathrules.Rule{
			Action:  rule.Action,
			Pattern: pattern,
		})
	}

	return normalized
}

// Match reports whether path is included by rules.
func (m *ruleMatcher) Match(path string) bool {
	if m == nil || m.matcher == nil {
		return false
	}

	candidate := NormalizePath(path)
	if candidate == "" {
		return false
	}

	return m.matcher.Included(candidate, false)
}
