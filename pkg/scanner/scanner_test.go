package scanner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func feedString(a *Assembler, s string, start time.Time, gap time.Duration) time.Time {
	at := start
	for _, r := range s {
		a.Feed(r, at)
		at = at.Add(gap)
	}
	return at
}

func TestAssembler_EmitsTokenOnEnter(t *testing.T) {
	a := NewAssembler(200 * time.Millisecond)
	start := time.Now()

	at := feedString(a, "MOLEX_OPR_1", start, 10*time.Millisecond)
	token, ok := a.Enter(at)

	assert.True(t, ok)
	assert.Equal(t, "MOLEX_OPR_1", token)
	assert.Zero(t, a.Pending())
}

func TestAssembler_EnterWithoutInputYieldsNothing(t *testing.T) {
	a := NewAssembler(200 * time.Millisecond)
	_, ok := a.Enter(time.Now())
	assert.False(t, ok)
}

func TestAssembler_SlowTypingDiscardsBuffer(t *testing.T) {
	a := NewAssembler(200 * time.Millisecond)
	start := time.Now()

	// Manual typing: 500ms between keys. Each key expires the previous one.
	at := feedString(a, "ABC", start, 500*time.Millisecond)

	token, ok := a.Enter(at.Add(10 * time.Millisecond))
	assert.True(t, ok)
	assert.Equal(t, "C", token, "only the last key should survive the timeout")
}

func TestAssembler_StaleBufferExpiresBeforeEnter(t *testing.T) {
	a := NewAssembler(200 * time.Millisecond)
	start := time.Now()

	at := feedString(a, "XYZ", start, 10*time.Millisecond)
	_, ok := a.Enter(at.Add(time.Second))
	assert.False(t, ok, "token buffered long before Enter is manual typing, not a scan")
}

func TestAssembler_IgnoresControlRunes(t *testing.T) {
	a := NewAssembler(200 * time.Millisecond)
	at := time.Now()
	a.Feed('\t', at)
	a.Feed('A', at.Add(5*time.Millisecond))
	a.Feed('\r', at.Add(10*time.Millisecond))

	token, ok := a.Enter(at.Add(15 * time.Millisecond))
	assert.True(t, ok)
	assert.Equal(t, "A", token)
}

func TestAssembler_BackToBackScans(t *testing.T) {
	a := NewAssembler(200 * time.Millisecond)
	start := time.Now()

	at := feedString(a, "LOC:TC6-E-3", start, 5*time.Millisecond)
	first, ok := a.Enter(at)
	assert.True(t, ok)
	assert.Equal(t, "LOC:TC6-E-3", first)

	at = feedString(a, "SUP_ADMIN_999", at.Add(50*time.Millisecond), 5*time.Millisecond)
	second, ok := a.Enter(at)
	assert.True(t, ok)
	assert.Equal(t, "SUP_ADMIN_999", second)
}
