package netutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"  Jane   Doe ", "Jane Doe"},
		{"Founder & CEO", "Founder & CEO"},
		{"line\none\n\n two", "line one two"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CleanText(c.in), "input %q", c.in)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "abc", Truncate("abc", 0), "non-positive max means no cap")
	assert.Equal(t, "héll", Truncate("héllo", 4), "rune-based, not byte-based")
}
