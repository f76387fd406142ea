package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/docquery/internal/core"
)

func TestDetectMediaType(t *testing.T) {
	assert.Equal(t, core.MediaTypePDF, detectMediaType("a.PDF", nil))
	assert.Equal(t, core.MediaTypePlainText, detectMediaType("notes.txt", []byte{0x00}))
	assert.Equal(t, core.MediaTypePlainText, detectMediaType("README", []byte("plain words")))
	assert.Equal(t, core.MediaTypeUnsupported, detectMediaType("img", []byte("\x89PNG\r\n\x1a\n")))
}

func TestAskCmd_RequiresFlags(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"ask", "--file", "x.txt"})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))

	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "question")
}

func TestSummarizeCmd_WithoutAPIKeyFails(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("AI_PROVIDER", "openai")
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

	cmd := newRootCmd()
	cmd.SetArgs([]string{"summarize", "--file", path})
	out := new(bytes.Buffer)
	cmd.SetOut(out)

	err := cmd.Execute()

	require.Error(t, err)
	assert.Empty(t, out.String())
}
