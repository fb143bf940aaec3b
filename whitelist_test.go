// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gma

package gma

import (
	"errors"
	"testing"

	"github.com/woozymasta/pathrules"
)

func TestIsWhitelisted(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		path string
		want bool
	}{
		{path: "lua/autorun/init.lua", want: true},
		{path: "lua/init.lua", want: true},
		{path: "LUA/Autorun/Init.LUA", want: true},
		{path: "materials/models/car/body.vtf", want: true},
		{path: "models/car.mdl", want: true},
		{path: "sound/ambient/wind.ogg", want: true},
		{path: "maps/gm_test.bsp", want: true},
		{path: "maps/thumb/gm_test.png", want: true},
		{path: "gamemodes/sandbox/sandbox.txt", want: true},
		{path: "gamemodes/sandbox/gamemode/init.lua", want: true},
		{path: "gamemodes/sandbox/entities/weapons/gun/shared.lua", want: true},
		{path: "resource/fonts/font.ttf", want: true},
		{path: "lua/autorun/init.exe", want: false},
		{path: "addon.json", want: false},
		{path: "materials/source.psd", want: false},
		{path: "init.lua", want: false},
		{path: "gamemodes/sandbox/gamemode/readme.md", want: false},
		{path: "", want: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.path, func(t *testing.T) {
			t.Parallel()

			if got := IsWhitelisted(tc.path); got != tc.want {
				t.Fatalf("IsWhitelisted(%q)=%v, want %v", tc.path, got, tc.want)
			}
		})
	}
}

func TestIgnoreMatcher(t *testing.T) {
	t.Parallel()

	m, err := newRuleMatcher(IgnoreRules("*.psd", "  ", "src/"), pathrules.MatcherOptions{
		CaseInsensitive: true,
		DefaultAction:   pathrules.ActionExclude,
	})
	if err != nil {
		t.Fatalf("newRuleMatcher: %v", err)
	}

	if !m.Match(`materials\Source.PSD`) {
		t.Fatal("expected *.psd to match")
	}
	if !m.Match("src/tool/main.lua") {
		t.Fatal("expected src/ to match")
	}
	if m.Match("lua/autorun/init.lua") {
		t.Fatal("unexpected match")
	}

	none, err := newRuleMatcher(nil, pathrules.MatcherOptions{})
	if err != nil || none != nil {
		t.Fatalf("empty rules=%v, %v; want nil matcher", none, err)
	}
	if none.Match("anything") {
		t.Fatal("nil matcher must not match")
	}
}

func TestNewRuleMatcher_InvalidRule(t *testing.T) {
	t.Parallel()

	_, err := newRuleMatcher([]pathrules.Rule{{Action: pathrules.ActionUnknown, Pattern: "*.lua"}}, pathrules.MatcherOptions{
		DefaultAction: pathrules.ActionExclude,
	})
	if !errors.Is(err, ErrInvalidPathRules) {
		t.Fatalf("expected ErrInvalidPathRules, got %v", err)
	}
}
