package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"go.uber.org/zap"
)

// ModelDownloader fetches model weights over HTTP into the local cache.
type ModelDownloader struct {
	client   *http.Client
	progress io.Writer
	logger   *zap.Logger
}

// NewModelDownloader creates a downloader. A nil progress writer hides the progress bar.
func NewModelDownloader(client *http.Client, progress io.Writer, logger *zap.Logger) *ModelDownloader {
	if client == nil {
		client = http.DefaultClient
	}
	if progress == nil {
		progress = io.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelDownloader{client: client, progress: progress, logger: logger}
}

// Ensure makes sure dest holds the file at url. An existing file whose size
// matches the remote Content-Length is kept as is.
func (d *ModelDownloader) Ensure(ctx context.Context, url, dest string) error {
	remoteSize := d.remoteSize(ctx, url)

	if fileInfo, err := os.Stat(dest); err == nil {
		if remoteSize < 0 || fileInfo.Size() == remoteSize {
			d.logger.Info("Model file already present, no need to download", zap.String("path", dest))
			return nil
		}
		d.logger.Info("Local file size differs from remote, downloading again",
			zap.Int64("local", fileInfo.Size()), zap.Int64("remote", remoteSize))
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(dest), err)
	}

	d.logger.Info("Downloading model", zap.String("url", url), zap.String("dest", dest))
	return d.download(ctx, url, dest)
}

// remoteSize returns the Content-Length reported by a HEAD request, or -1 when unknown.
func (d *ModelDownloader) remoteSize(ctx context.Context, url string) int64 {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return -1
	}
	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Warn("HEAD request failed", zap.String("url", url), zap.Error(err))
		return -1
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return -1
	}
	return resp.ContentLength
}

func (d *ModelDownloader) download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s failed: server returned status %d", url, resp.StatusCode)
	}

	partPath := dest + ".part"
	f, err := os.Create(partPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", partPath, err)
	}

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}

	p := mpb.NewWithContext(ctx, mpb.WithOutput(d.progress), mpb.WithWidth(60))
	name := filepath.Base(dest)
	bar := p.AddBar(total,
		mpb.PrependDecorators(
			decor.Name(name+" ", decor.WC{W: len(name) + 1, C: decor.DindentRight}),
			decor.CountersKibiByte("% .2f / % .2f"),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.EwmaETA(decor.ET_STYLE_GO, 30), " ✓ "),
			decor.Name(" "),
			decor.EwmaSpeed(decor.SizeB1024(0), "% .2f", 30),
		),
	)

	proxy := bar.ProxyReader(resp.Body)
	_, copyErr := io.Copy(f, proxy)
	proxy.Close()

	if copyErr != nil {
		bar.Abort(false)
	} else {
		bar.SetTotal(-1, true)
	}
	p.Wait()

	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(partPath)
		if copyErr != nil {
			return fmt.Errorf("download %s failed: %w", url, copyErr)
		}
		return fmt.Errorf("failed to write %s: %w", partPath, closeErr)
	}

	if err := os.Rename(partPath, dest); err != nil {
		os.Remove(partPath)
		return fmt.Errorf("failed to move %s into place: %w", dest, err)
	}

	d.logger.Info("Model downloaded", zap.String("path", dest))
	return nil
}
