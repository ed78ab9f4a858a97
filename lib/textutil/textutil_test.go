package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStripControl(t *testing.T) {
	require.Equal(t, "bell", StripControl("be\x07ll"))
	require.Equal(t, "tabnewline", StripControl("tab\tnew\nline"))
	require.Equal(t, "del", StripControl("del\x7f"))
	require.Equal(t, "", StripControl("\x00\x01\x1f"))
	require.Equal(t, "héllo • world", StripControl("héllo • world"))
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "abc", Truncate("abc", 10))
	require.Equal(t, "ab", Truncate("abc", 2))
	require.Equal(t, "", Truncate("abc", 0))

	long := strings.Repeat("a", 500)
	require.Len(t, Truncate(long, 200), 200)

	// rune-wise, not byte-wise
	require.Equal(t, "hél", Truncate("héllo", 3))
}

func TestClean(t *testing.T) {
	// control characters are stripped before the length is applied
	in := "\x07" + strings.Repeat("a", 200)
	require.Equal(t, strings.Repeat("a", 200), Clean(in, 200))
}
