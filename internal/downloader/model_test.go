package downloader

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeModelServer struct {
	*httptest.Server
	gets  atomic.Int32
	heads atomic.Int32
}

func newFakeModelServer(t *testing.T, content []byte) *fakeModelServer {
	t.Helper()
	fs := &fakeModelServer{}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ".bin") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodHead:
			fs.heads.Add(1)
		case http.MethodGet:
			fs.gets.Add(1)
		}
		http.ServeContent(w, r, "model.bin", time.Time{}, bytes.NewReader(content))
	}))
	t.Cleanup(fs.Close)
	return fs
}

func TestEnsureDownloads(t *testing.T) {
	content := bytes.Repeat([]byte("ggml"), 4096)
	server := newFakeModelServer(t, content)
	dest := filepath.Join(t.TempDir(), "nested", "ggml-tiny.bin")

	var progress bytes.Buffer
	d := NewModelDownloader(server.Client(), &progress, zap.NewNop())

	require.NoError(t, d.Ensure(context.Background(), server.URL+"/ggml-tiny.bin", dest))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, int32(1), server.gets.Load())

	_, err = os.Stat(dest + ".part")
	assert.True(t, os.IsNotExist(err), "partial file must be renamed away")
}

func TestEnsureSkipsMatchingFile(t *testing.T) {
	content := []byte("weights")
	server := newFakeModelServer(t, content)
	dest := filepath.Join(t.TempDir(), "ggml-base.bin")
	require.NoError(t, os.WriteFile(dest, content, 0o644))

	d := NewModelDownloader(server.Client(), nil, nil)
	require.NoError(t, d.Ensure(context.Background(), server.URL+"/ggml-base.bin", dest))

	assert.Equal(t, int32(1), server.heads.Load())
	assert.Equal(t, int32(0), server.gets.Load())
}

func TestEnsureReplacesSizeMismatch(t *testing.T) {
	content := []byte("the real weights")
	server := newFakeModelServer(t, content)
	dest := filepath.Join(t.TempDir(), "ggml-base.bin")
	require.NoError(t, os.WriteFile(dest, []byte("stale"), 0o644))

	d := NewModelDownloader(server.Client(), nil, zap.NewNop())
	require.NoError(t, d.Ensure(context.Background(), server.URL+"/ggml-base.bin", dest))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, int32(1), server.gets.Load())
}

func TestEnsureNotFound(t *testing.T) {
	server := newFakeModelServer(t, nil)
	dest := filepath.Join(t.TempDir(), "ggml-huge.txt")

	d := NewModelDownloader(server.Client(), nil, zap.NewNop())
	err := d.Ensure(context.Background(), server.URL+"/missing.txt", dest)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestEnsureCancelled(t *testing.T) {
	server := newFakeModelServer(t, []byte("x"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewModelDownloader(server.Client(), nil, zap.NewNop())
	err := d.Ensure(ctx, server.URL+"/ggml-tiny.bin", filepath.Join(t.TempDir(), "ggml-tiny.bin"))
	assert.Error(t, err)
}
