package gather_test

import (
	"strings"
	"testing"

	"github.com/sio2tools/stester/internal/gather"
	"github.com/stretchr/testify/require"
)

func TestTrimToRect(t *testing.T) {
	require.Equal(t, "", gather.TrimToRect("", 10, 10))
	require.Equal(t, "short", gather.TrimToRect("short", 10, 10))

	long := strings.Repeat("x", 25)
	require.Equal(t, strings.Repeat("x", 10)+"[...]", gather.TrimToRect(long, 10, 10))

	tall := "a\nb\nc\nd"
	require.Equal(t, "a\nb\n[...]", gather.TrimToRect(tall, 2, 10))
}
