package eventlog

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() func() time.Time {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return func() time.Time { return ts }
}

func TestAddFormatsAndCaps(t *testing.T) {
	m := New()
	m.now = fixedNow()
	m.Add(KindCtl, "pause after %d frames", 3)
	require.Len(t, m.Entries, 1)
	assert.Equal(t, "pause after 3 frames", m.Entries[0].Message)

	for i := 0; i < maxEntries+50; i++ {
		m.Add(KindStep, "step %d", i)
	}
	assert.Len(t, m.Entries, maxEntries)
	assert.Equal(t, "step 50", m.Entries[0].Message)
}

func TestScroll(t *testing.T) {
	m := New()
	for i := 0; i < 5; i++ {
		m.Add(KindStep, "msg")
	}
	m.ScrollUp(3)
	assert.Equal(t, 3, m.Offset)
	m.ScrollUp(100)
	assert.Equal(t, 4, m.Offset)
	m.ScrollDown(10)
	assert.Equal(t, 0, m.Offset)

	m.ScrollUp(2)
	m.Add(KindDone, "done")
	assert.Equal(t, 0, m.Offset, "new entries scroll back to the bottom")
}

func TestViewShowsNewestLines(t *testing.T) {
	m := New()
	m.now = fixedNow()
	for i := 0; i < 20; i++ {
		m.Add(KindStep, "line-%02d", i)
	}

	v := m.View(80, 10)
	assert.Contains(t, v, "EVENT LOG")
	assert.Contains(t, v, "line-19")
	assert.NotContains(t, v, "line-00")
	assert.Contains(t, v, "03:04:05.000")

	m.ScrollUp(10)
	v = m.View(80, 10)
	assert.Contains(t, v, "line-09")
	assert.NotContains(t, v, "line-19")
	assert.True(t, strings.Contains(v, "10 more"))
}

func TestViewEmpty(t *testing.T) {
	assert.Contains(t, New().View(40, 10), "No events recorded yet")
}
