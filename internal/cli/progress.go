package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/schollz/progressbar/v3"
)

// MonthProgress reports annual estimate progress one month at a time.
type MonthProgress struct {
	bar *progressbar.ProgressBar
}

func NewMonthProgress(w io.Writer) *MonthProgress {
	bar := progressbar.NewOptions(12,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(24),
		progressbar.OptionSetDescription("[cyan]Simulating typical year...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
	return &MonthProgress{bar: bar}
}

// OnMonth advances the bar. It matches cost.Aggregator.OnMonth.
func (p *MonthProgress) OnMonth(time.Month) {
	if err := p.bar.Add(1); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}
