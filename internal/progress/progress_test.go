// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gma

package progress

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestBar_Disabled(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	b := NewWithOutput(&out, 3, false)
	assert.False(t, b.Enabled())

	b.Increment("a")
	b.Increment("b")
	b.Finish()

	assert.Equal(t, int64(2), b.Current())
	assert.Zero(t, out.Len())
}

func TestBar_EnabledConcurrent(t *testing.T) {
	t.Parallel()

	var out syncBuffer
	b := NewWithOutput(&out, 50, true)
	assert.True(t, b.Enabled())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Increment("lua/autorun/init.lua")
		}()
	}
	wg.Wait()
	b.Finish()
	b.Finish()

	assert.Equal(t, int64(50), b.Current())
	assert.NotZero(t, out.Len())
}

func TestBar_Label(t *testing.T) {
	t.Parallel()

	b := NewWithOutput(&bytes.Buffer{}, 1, false)
	b.Increment(strings.Repeat("x", 10))
	assert.Equal(t, strings.Repeat("x", 10), b.label())

	long := "materials/" + strings.Repeat("a", 40) + "/file.vmt"
	b.Increment(long)
	got := b.label()
	assert.Len(t, got, descLength)
	assert.True(t, strings.HasPrefix(got, ".."))
	assert.True(t, strings.HasSuffix(got, "/file.vmt"))

	wide := "materials/" + strings.Repeat("ж", 40) + "/файл.vmt"
	b.Increment(wide)
	got = b.label()
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, descLength, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "/файл.vmt"))
}

func TestIsTerminal_Nil(t *testing.T) {
	t.Parallel()

	assert.False(t, IsTerminal(nil))
}

// syncBuffer is a bytes.Buffer safe for the bar's render goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Len()
}
