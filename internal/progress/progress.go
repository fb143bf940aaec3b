// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gma

// Package progress renders an entry counter bar on terminals.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"
)

// descLength is the width of the entry name column.
const descLength = 32

// Bar tracks processed entries. A disabled Bar only counts.
// Methods are safe for concurrent use.
type Bar struct {
	container   *mpb.Progress
	bar         *mpb.Bar
	out         io.Writer
	description string
	current     int64
	mu          sync.Mutex
	enabled     bool
}

// New creates a bar on stderr; it renders only when enabled and stderr is a terminal.
func New(total int, enabled bool) *Bar {
	return NewWithOutput(os.Stderr, total, enabled && IsTerminal(os.Stderr))
}

// NewWithOutput creates a bar writing to out; enabled is taken as is.
func NewWithOutput(out io.Writer, total int, enabled bool) *Bar {
	b := &Bar{out: out, enabled: enabled}
	if !enabled {
		return b
	}

	fmt.Fprintln(out)

	b.container = mpb.New(
		mpb.WithOutput(out),
		mpb.WithWidth(64),
		mpb.WithRefreshRate(100*time.Millisecond),
	)

	b.bar = b.container.New(int64(total),
		mpb.BarStyle().Lbound("[").Filler("█").Tip("█").Padding("░").Rbound("]"),
		mpb.PrependDecorators(
			decor.Any(func(decor.Statistics) string {
				return b.label()
			}, decor.WC{W: descLength, C: decor.DindentRight}),
			decor.Name("  "),
			decor.CountersNoUnit("%d/%d", decor.WC{C: decor.DindentRight}),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
		),
	)

	return b
}

// Increment advances the bar by one and shows name as current entry.
func (b *Bar) Increment(name string) {
	b.mu.Lock()
	b.description = name
	b.current++
	b.mu.Unlock()

	if b.bar != nil {
		b.bar.Increment()
	}
}

// Current returns the number of processed entries.
func (b *Bar) Current() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.current
}

// Enabled reports whether the bar renders output.
func (b *Bar) Enabled() bool {
	return b.enabled
}

// Finish stops rendering. Unfinished bars are aborted.
func (b *Bar) Finish() {
	if b.container == nil {
		return
	}

	if !b.bar.Completed() {
		b.bar.Abort(false)
	}
	b.container.Wait()
	b.container = nil

	fmt.Fprintln(b.out)
}

// label returns the current entry name trimmed to the column width.
func (b *Bar) label() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	runes := []rune(b.description)
	if len(runes) > descLength {
		return ".." + string(runes[len(runes)-descLength+2:])
	}

	return b.description
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits int
}
