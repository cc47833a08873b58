package log

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteFormatsLevelCategoryAndFields(t *testing.T) {
	var buf bytes.Buffer
	defer InitWriter(&buf, LevelDebug)()

	Info(CatGit, "loaded files", "count", 3, "ref")

	line := buf.String()
	require.Contains(t, line, "[INFO] [git] loaded files count=3 ref=<missing>")
	require.True(t, strings.HasSuffix(line, "\n"))
}

func TestMinLevelFiltersBelow(t *testing.T) {
	var buf bytes.Buffer
	defer InitWriter(&buf, LevelWarn)()

	Debug(CatUI, "hidden")
	ErrorErr(CatGitHub, "fetch failed", errors.New("boom"))

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "[ERROR] [github] fetch failed error=boom")
}

func TestNoLoggerIsNoop(t *testing.T) {
	require.NotPanics(t, func() {
		Warn(CatWatch, "nobody listening")
		SetMinLevel(LevelError)
	})
}

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	cleanup, err := Init(path)
	require.NoError(t, err)

	Error(CatSession, "reload", "files", 2)
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "[ERROR] [session] reload files=2")
}
