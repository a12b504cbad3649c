// Package progress renders an analysis progress bar on stderr. The bar
// is advisory only; a nil Tracker is valid and ticks on it no-op, so
// callers in quiet or non-TTY modes pass nil and forget about it.
package progress

import (
	"os"

	"github.com/schollz/progressbar/v3"
)

// Tracker wraps a progress bar over a known file count.
type Tracker struct {
	bar *progressbar.ProgressBar
}

// NewTracker creates a progress bar for total files.
func NewTracker(label string, total int) *Tracker {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Tracker{bar: bar}
}

// Tick advances the bar by one file. Safe for concurrent use.
func (t *Tracker) Tick() {
	if t == nil {
		return
	}
	t.bar.Add(1)
}

// Finish clears the bar from the terminal.
func (t *Tracker) Finish() {
	if t == nil {
		return
	}
	t.bar.Finish()
	t.bar.Clear()
}
