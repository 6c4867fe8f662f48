package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fileCapturer struct{ err error }

func (f fileCapturer) Screenshot(path string) error {
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(path, []byte("png"), 0644)
}

func TestCaptureAndLog(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	d := NewScreenShotDebugger(dir)

	path, err := d.CaptureAndLog(fileCapturer{}, "https://acme.test/careers", "no jobs")
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Contains(t, filepath.Base(path), "acme-test-careers_")

	_, err = d.CaptureAndLog(fileCapturer{err: errors.New("boom")}, "x", "fail")
	assert.Error(t, err)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "jobs-example-com-open-roles", Slug("https://jobs.example.com/open/roles/"))
	assert.Equal(t, "page", Slug("///"))
}
