package progress

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/go-scripts/extract/internal/types"
)

// Tracker renders run progress as an in-place terminal bar for one-shot runs.
type Tracker struct {
	bar       progress.Model
	lastShown int
}

// New creates a Tracker with the default gradient bar.
func New() *Tracker {
	return &Tracker{
		bar:       progress.New(progress.WithDefaultGradient()),
		lastShown: -1,
	}
}

// Render redraws the bar from a run snapshot. Redraws are skipped while the
// processed count has not moved.
func (t *Tracker) Render(snap types.RunSnapshot) {
	if snap.TotalJobs == 0 || snap.ProcessedJobs == t.lastShown {
		return
	}
	t.lastShown = snap.ProcessedJobs

	ratio := float64(snap.ProcessedJobs) / float64(snap.TotalJobs)
	fmt.Printf("\rProgress: %s %d/%d sitemaps | %d listings",
		t.bar.ViewAs(ratio),
		snap.ProcessedJobs,
		snap.TotalJobs,
		snap.TotalRecordCount)
}

// Finish terminates the in-place bar line.
func (t *Tracker) Finish() {
	fmt.Println()
}
