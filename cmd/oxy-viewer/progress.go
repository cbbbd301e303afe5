package main

import (
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// loadProgress draws a terminal progress bar for each model import.
// A bar is created on the first update of an import and finished when done reaches total.
type loadProgress struct {
	mu  sync.Mutex
	out io.Writer
	bar *progressbar.ProgressBar
}

func newLoadProgress(out io.Writer) *loadProgress {
	return &loadProgress{out: out}
}

// Update matches loader.ProgressFunc. done and total count face chunks.
func (p *loadProgress) Update(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if total <= 0 {
		return
	}
	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetDescription("processing faces"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = p.bar.Set(done)
	if done >= total {
		_ = p.bar.Finish()
		p.bar = nil
	}
}
