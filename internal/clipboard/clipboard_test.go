package clipboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func stubWriter(t *testing.T, fn func(string) error) {
	t.Helper()
	orig := writeAll
	writeAll = fn
	t.Cleanup(func() { writeAll = orig })
}

func TestCopyTextWrites(t *testing.T) {
	if !Available() {
		t.Skip("no clipboard utility")
	}
	var got string
	stubWriter(t, func(s string) error {
		got = s
		return nil
	})

	require.NoError(t, CopyText("internal/app/model.go"))
	require.Equal(t, "internal/app/model.go", got)
}

func TestCopyTextPropagatesError(t *testing.T) {
	if !Available() {
		require.ErrorIs(t, CopyText("x"), ErrUnsupported)
		return
	}
	boom := errors.New("boom")
	stubWriter(t, func(string) error { return boom })

	require.ErrorIs(t, CopyText("x"), boom)
}
