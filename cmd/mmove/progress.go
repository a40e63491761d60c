package main

import (
	"io"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"mmove/internal/ledger"
	"mmove/internal/organizer"
)

// moveProgress draws a progress bar for the move phase.
type moveProgress struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

func newMoveProgress(out io.Writer) *moveProgress {
	return &moveProgress{out: out}
}

func (p *moveProgress) Start(total int) {
	if total <= 0 {
		return
	}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription("Moving"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (p *moveProgress) Step(item *ledger.Item, outcome organizer.Outcome) {
	if p.bar == nil {
		return
	}
	p.bar.Describe(truncate(filepath.Base(item.Path), 30))
	_ = p.bar.Add(1)
}

func (p *moveProgress) Finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	p.bar = nil
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}
