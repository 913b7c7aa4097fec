// Package scanner decodes USB badge-scanner keystroke streams into discrete
// tokens. Scanners type fast and finish with Enter; humans type slowly, so any
// inter-key gap above the timeout discards the buffer as manual typing.
package scanner

import (
	"time"
	"unicode"
)

// DefaultInterKeyTimeout matches typical wedge-scanner key cadence with slack
// for slow host machines.
const DefaultInterKeyTimeout = 200 * time.Millisecond

// Assembler buffers printable keystrokes and emits one token per scan event.
// It is not safe for concurrent use; callers feed it from a single input loop.
type Assembler struct {
	timeout time.Duration
	buf     []rune
	last    time.Time
}

// NewAssembler builds an assembler with the given inter-key timeout.
func NewAssembler(timeout time.Duration) *Assembler {
	if timeout <= 0 {
		timeout = DefaultInterKeyTimeout
	}
	return &Assembler{timeout: timeout}
}

// Feed consumes one printable keystroke observed at the given instant. Control
// runes are ignored; use Enter to terminate a token.
func (a *Assembler) Feed(key rune, at time.Time) {
	if !unicode.IsPrint(key) {
		return
	}
	a.expire(at)
	a.buf = append(a.buf, key)
	a.last = at
}

// Enter terminates the current buffer. It returns the assembled token and true
// when the buffer held at least one key; an Enter on an empty or expired
// buffer yields no token.
func (a *Assembler) Enter(at time.Time) (string, bool) {
	a.expire(at)
	if len(a.buf) == 0 {
		return "", false
	}
	token := string(a.buf)
	a.buf = a.buf[:0]
	return token, true
}

// Pending reports how many keys are buffered, for diagnostics.
func (a *Assembler) Pending() int {
	return len(a.buf)
}

func (a *Assembler) expire(at time.Time) {
	if len(a.buf) > 0 && at.Sub(a.last) > a.timeout {
		a.buf = a.buf[:0]
	}
}
