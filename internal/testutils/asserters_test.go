package testutils

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingT struct {
	failures []string
}

func (r *recordingT) Errorf(format string, args ...interface{}) {
	r.failures = append(r.failures, fmt.Sprintf(format, args...))
}

func TestTextAsserter(t *testing.T) {
	tests := []struct {
		name     string
		opts     []TextOption
		actual   string
		expected string
		pass     bool
	}{
		{"identical", nil, "Z\nX", "Z\nX", true},
		{"trailing padding ignored by default", nil, "K1                 \n", "K1", true},
		{"trailing padding significant", []TextOption{WithIgnoreTrailingWhitespace(false), WithTrimSpace(false)}, "K1  ", "K1", false},
		{"empty lines dropped", []TextOption{WithIgnoreEmptyLines(true)}, "a\n\nb", "a\nb", true},
		{"different", nil, "K1", "K0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := &recordingT{}
			ok := NewTextAsserter(rt, tt.opts...).Assert(tt.actual, tt.expected)
			assert.Equal(t, tt.pass, ok)
			assert.Equal(t, tt.pass, len(rt.failures) == 0)
		})
	}
}

func TestTextAsserterDiffShowsLines(t *testing.T) {
	d := NewTextAsserter(t).Diff("K1\nL1", "K1\nL0")
	assert.Contains(t, d, "-L0")
	assert.Contains(t, d, "+L1")

	colored := NewTextAsserter(t, WithEnableColors(true)).Diff("a b", "a c")
	assert.Contains(t, colored, "a·b")
}

func TestJSONAsserter(t *testing.T) {
	tests := []struct {
		name     string
		opts     []JSONOption
		actual   string
		expected string
		pass     bool
	}{
		{"equal", nil, `{"tag":"X","desired":65}`, `{"desired":65,"tag":"X"}`, true},
		{"extra keys ignored", nil, `{"tag":"X","desired":65,"current":64.3}`, `{"tag":"X"}`, true},
		{"extra keys significant", []JSONOption{WithIgnoreExtraKeys(false)}, `{"tag":"X","current":1}`, `{"tag":"X"}`, false},
		{"presence placeholder", nil, `{"at":"2026-01-01T00:00:00Z","tag":"C"}`, `{"at":"<<PRESENCE>>","tag":"C"}`, true},
		{"presence placeholder missing", []JSONOption{WithIgnoreExtraKeys(false)}, `{"tag":"C"}`, `{"at":"<<PRESENCE>>","tag":"C"}`, false},
		{"root arrays", nil, `[{"tag":"X"},{"tag":"Y"}]`, `[{"tag":"X"},{"tag":"Y"}]`, true},
		{"value mismatch", nil, `{"tag":"X"}`, `{"tag":"Y"}`, false},
		{"invalid actual", nil, `{`, `{}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := &recordingT{}
			ok := NewJSONAsserter(rt, tt.opts...).Assert(tt.actual, tt.expected)
			assert.Equal(t, tt.pass, ok, rt.failures)
		})
	}
}

func TestMockTransportEmit(t *testing.T) {
	m := &MockTransport{}
	assert.False(t, m.HasHandler())
	m.Emit([]byte("ignored"))

	var got [][]byte
	m.OnNotification(func(b []byte) { got = append(got, b) })
	m.Emit([]byte("a"), []byte("b"))

	assert.True(t, m.HasHandler())
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b")}, got)
}

func TestRecordAndFramePadding(t *testing.T) {
	assert.Len(t, Record("X1"), 17)
	assert.Len(t, Frame("K1"), 19)
	assert.Equal(t, "K1", string(Frame("K1")[:2]))
}
