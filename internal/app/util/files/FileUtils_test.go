package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestGetAllFiles(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	touch(t, filepath.Join(dir, "b.wav"), now.Add(-time.Hour))
	touch(t, filepath.Join(dir, "a.MP3"), now.Add(-2*time.Hour))
	touch(t, filepath.Join(dir, "notes.txt"), now)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.wav"), 0o755))

	got, err := GetAllFiles(dir)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a.MP3", got[0].Name)
	assert.Equal(t, "b.wav", got[1].Name)
	assert.Equal(t, filepath.Join(dir, "b.wav"), got[1].FullPath)
	assert.Equal(t, int64(1), got[1].Size)

	onlyWav, err := GetAllFiles(dir, "wav")
	require.NoError(t, err)
	require.Len(t, onlyWav, 1)
	assert.Equal(t, "b.wav", onlyWav[0].Name)
}

func TestGetAllFilesMissingDir(t *testing.T) {
	_, err := GetAllFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestCheckAndCreateDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, CheckAndCreateDirectory(dir))
	assert.DirExists(t, dir)
	require.NoError(t, CheckAndCreateDirectory(dir))
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "talk.srt"), OutputPath("out", "/in/talk.mp3", ".srt"))
	assert.Equal(t, filepath.Join("out", "noext.txt"), OutputPath("out", "noext", ".txt"))
	assert.Equal(t, filepath.Join("out", "talk.mp3.srt"), OutputPathWithSourceExt("out", "/in/talk.mp3", ".srt"))
}

func TestExists(t *testing.T) {
	assert.True(t, Exists(t.TempDir()))
	assert.False(t, Exists(filepath.Join(t.TempDir(), "nope")))
}
