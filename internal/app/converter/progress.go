package converter

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

type ProgressConfig struct {
	Enabled bool
	Writer  io.Writer
}

// batchProgress renders one bar per batch run. A disabled progress is a no-op.
type batchProgress struct {
	container *mpb.Progress
	bar       *mpb.Bar
	failed    atomic.Int32
}

func newBatchProgress(config ProgressConfig, total int) *batchProgress {
	p := &batchProgress{}
	if !config.Enabled || total == 0 {
		return p
	}

	writer := config.Writer
	if writer == nil {
		writer = os.Stderr
	}

	p.container = mpb.New(
		mpb.WithOutput(writer),
		mpb.WithRefreshRate(120*time.Millisecond),
	)
	p.bar = p.container.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name("Transcribing ", decor.WC{C: decor.DindentRight}),
			decor.CountersNoUnit("(%d/%d)", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.NewPercentage("%.1f", decor.WCSyncSpace),
			decor.Any(func(decor.Statistics) string {
				if n := p.failed.Load(); n > 0 {
					return fmt.Sprintf(" %d failed", n)
				}
				return ""
			}),
			decor.OnComplete(
				decor.EwmaETA(decor.ET_STYLE_GO, 30, decor.WCSyncWidth), " done",
			),
		),
	)
	return p
}

// fileDone advances the bar by one file
func (p *batchProgress) fileDone(res FileResult) {
	if res.Err != nil {
		p.failed.Add(1)
	}
	if p.bar != nil {
		p.bar.Increment()
	}
}

// finish completes the bar even if the run was cancelled early and waits for
// the final render.
func (p *batchProgress) finish() {
	if p.container == nil {
		return
	}
	p.bar.SetTotal(p.bar.Current(), true)
	p.container.Wait()
}

func IsTTY(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok || file == nil {
		return false
	}
	stat, err := file.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}

// ShouldShowProgress enables bars when forced or when stderr is a terminal
func ShouldShowProgress(forced bool) bool {
	return forced || IsTTY(os.Stderr)
}
