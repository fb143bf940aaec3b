// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gma

package gma

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/woozymasta/pathrules"
)

// ProjectFileName is the addon descriptor file expected at a project root.
const ProjectFileName = "addon.json"

// Project is an addon.json descriptor.
type Project struct {
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Type        AddonType `json:"type" yaml:"type"`
	Tags        []Tag     `json:"tags,omitempty" yaml:"tags,omitempty"`
	Ignore      []string  `json:"ignore,omitempty" yaml:"ignore,omitempty"`
}

// LoadProject reads and validates addon.json from dir.
func LoadProject(dir string) (*Project, error) {
	data, err := os.ReadFile(filepath.Join(dir, ProjectFileName)) //nolint:gosec // caller-provided project path
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}

	return ParseProject(data)
}

// ParseProject decodes and validates addon.json content.
func ParseProject(data []byte) (*Project, error) {
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProject, err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return &p, nil
}

// Validate checks required project fields.
func (p *Project) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("%w: title is empty", ErrInvalidProject)
	}
	if p.Type == AddonTypeNone {
		return fmt.Errorf("%w: type is missing", ErrInvalidProject)
	}
	if len(p.Tags) > maxTags {
		return fmt.Errorf("%w: at most %d tags allowed, got %d", ErrInvalidProject, maxTags, len(p.Tags))
	}
	for _, tag := range p.Tags {
		if tag == TagNone {
			return fmt.Errorf("%w: empty tag", ErrInvalidProject)
		}
	}

	return nil
}

// IgnoreRules returns project ignore patterns as path rules.
func (p *Project) IgnoreRules() []pathrules.Rule {
	return IgnoreRules(p.Ignore...)
}

// ApplyProject copies project title, description, type and tags into the builder.
func (b *Builder) ApplyProject(p *Project) *Builder {
	if p == nil {
		return b
	}

	b.SetName(p.Title).
		SetDescription(p.Description).
		SetType(p.Type)
	for _, tag := range p.Tags {
		b.AddTag(tag)
	}

	return b
}

// AddProject loads addon.json from dir, applies it and packs the directory
// using the project ignore list merged into opts.Ignore.
func (b *Builder) AddProject(dir string, opts DirOptions) (*Project, error) {
	p, err := LoadProject(dir)
	if err != nil {
		return nil, err
	}

	b.ApplyProject(p)
	opts.Ignore = append(append([]pathrules.Rule(nil), opts.Ignore...), p.IgnoreRules()...)
	if err := b.AddDir(dir, opts); err != nil {
		return nil, err
	}

	return p, nil
}

// AddDir queues every regular file below dir in lexical order.
// Names are relative slash paths, lower-cased unless opts.KeepCase.
// Files matched by opts.Ignore and a root addon.json are skipped.
// Unless opts.SkipWhitelist is set, any file outside the default whitelist
// fails the whole call with ErrNotWhitelisted and nothing is queued.
func (b *Builder) AddDir(dir string, opts DirOptions) error {
	ignore, err := newRuleMatcher(opts.Ignore, pathrules.MatcherOptions{
		CaseInsensitive: true,
		DefaultAction:   pathrules.ActionExclude,
	})
	if err != nil {
		return err
	}

	var (
		pending  []dirFile
		rejected []error
	)
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == ProjectFileName {
			return nil
		}

		name, err := normalizeArchiveEntryPath(rel, opts.KeepCase)
		if err != nil {
			return err
		}
		if ignore.Match(name) {
			return nil
		}
		if !opts.SkipWhitelist && !IsWhitelisted(name) {
			rejected = append(rejected, fmt.Errorf("%w: %s", ErrNotWhitelisted, name))
			return nil
		}

		pending = append(pending, dirFile{path: path, name: name})
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", dir, err)
	}
	if len(rejected) > 0 {
		return errors.Join(rejected...)
	}

	return b.addDirFiles(pending)
}

// addDirFiles queues files only when every one of them can be queued.
func (b *Builder) addDirFiles(files []dirFile) error {
	inputs := make([]Input, 0, len(files))
	for _, f := range files {
		in, err := fileInput(f.path, f.name)
		if err != nil {
			return err
		}
		if err := validateEntryName(in.Name); err != nil {
			return err
		}

		inputs = append(inputs, in)
	}

	b.inputs = append(b.inputs, inputs...)
	return nil
}

// dirFile is one file discovered by AddDir.
type dirFile struct {
	path string
	name string
}
