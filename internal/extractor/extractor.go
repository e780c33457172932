package extractor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/extract/internal/listing"
	"github.com/go-scripts/extract/internal/sitemap"
	"github.com/go-scripts/extract/internal/state"
	"github.com/go-scripts/extract/internal/store"
	"github.com/go-scripts/extract/internal/types"
	"github.com/go-scripts/extract/internal/writer"
)

// DefaultWorkerCount is used when a run config does not set one.
const DefaultWorkerCount = 5

// pausePollInterval is how often a paused worker rechecks the flags.
// Package-scoped so tests can shorten it.
var pausePollInterval = time.Second

// entryLogInterval controls how often progress is logged inside one large
// sitemap.
const entryLogInterval = 10000

// Controller orchestrates an extraction run: it fans sitemap jobs out to a
// bounded worker pool, owns the pause/stop control flags, and keeps the shared
// run state the control surface reads.
type Controller struct {
	client *sitemap.Client
	state  *state.RunState

	startMu sync.Mutex
	stopped atomic.Bool
	done    chan struct{}
}

// New creates an idle Controller.
func New() *Controller {
	return &Controller{
		client: sitemap.NewClient(),
		state:  state.New(),
	}
}

// Start validates the config and launches a run in the background. It returns
// an error synchronously when a run is already in flight or the config cannot
// produce output; everything after that is contained per job.
func (c *Controller) Start(cfg types.RunConfig) error {
	c.startMu.Lock()
	defer c.startMu.Unlock()

	if c.state.Running() {
		return errors.New("extraction already running")
	}

	if len(cfg.SitemapURLs) == 0 {
		return errors.New("no sitemaps provided for extraction")
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = writer.FormatCSV
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}

	abs, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("resolving output directory: %w", err)
	}
	cfg.OutputDir = abs

	fw, err := writer.New(cfg.OutputDir, cfg.OutputFormat)
	if err != nil {
		return err
	}

	c.stopped.Store(false)
	c.state.BeginRun(len(cfg.SitemapURLs), cfg.OutputDir)
	c.done = make(chan struct{})

	go c.run(cfg, fw, c.done)

	return nil
}

// Pause suspends job pickup. Jobs already in flight run to completion.
// Idempotent.
func (c *Controller) Pause() {
	if !c.state.Paused() {
		c.logf("extraction paused by user")
	}
	c.state.SetPaused(true)
}

// Resume lifts a pause. Idempotent.
func (c *Controller) Resume() {
	if c.state.Paused() {
		c.logf("extraction resumed by user")
	}
	c.state.SetPaused(false)
}

// Stop asks all workers to exit at their next job boundary. In-flight
// fetches are not interrupted. Idempotent.
func (c *Controller) Stop() {
	if !c.stopped.Swap(true) && c.state.Running() {
		c.logf("extraction stop requested by user")
	}
}

// Status returns a snapshot of the current run state.
func (c *Controller) Status() types.RunSnapshot {
	return c.state.Snapshot()
}

// Wait blocks until the current run finishes. No-op when nothing was started.
func (c *Controller) Wait() {
	c.startMu.Lock()
	done := c.done
	c.startMu.Unlock()
	if done != nil {
		<-done
	}
}

// ListChildSitemaps fetches a sitemap index document and returns its child
// sitemap URLs. Usable independently of a run.
func (c *Controller) ListChildSitemaps(parentURL string) ([]string, error) {
	content, err := c.client.Fetch(parentURL)
	if err != nil {
		return nil, err
	}
	return sitemap.ParseIndex(content)
}

// ProducedFile returns the raw bytes of an output file from the current run's
// output directory. Names that would escape that directory are rejected.
func (c *Controller) ProducedFile(name string) ([]byte, error) {
	dir := c.state.Snapshot().OutputDir
	if dir == "" {
		return nil, errors.New("no output directory for this run")
	}

	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return nil, fmt.Errorf("invalid file name %q", name)
	}

	return os.ReadFile(filepath.Join(dir, name))
}

// run drives the worker pool to completion. Runs on its own goroutine.
func (c *Controller) run(cfg types.RunConfig, fw *writer.FileWriter, done chan<- struct{}) {
	defer close(done)

	started := time.Now()
	dedup := store.New()

	c.logf("starting extraction: %d sitemaps, format=%s, workers=%d, output=%s",
		len(cfg.SitemapURLs), cfg.OutputFormat, cfg.WorkerCount, cfg.OutputDir)

	total := len(cfg.SitemapURLs)
	workerCount := cfg.WorkerCount
	if total < workerCount {
		workerCount = total
	}

	jobs := make(chan types.SitemapJob, total)
	for i, u := range cfg.SitemapURLs {
		jobs <- types.SitemapJob{
			URL:           u,
			CategoryName:  categoryName(u),
			SequenceIndex: i + 1,
			TotalJobs:     total,
		}
	}
	close(jobs)

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go c.worker(jobs, fw, dedup, &wg)
	}
	wg.Wait()

	elapsed := time.Since(started)
	snap := c.state.Snapshot()
	if c.stopped.Load() {
		c.logf("extraction stopped after %dm %ds: %d listings, %d files",
			int(elapsed.Minutes()), int(elapsed.Seconds())%60, snap.TotalRecordCount, len(snap.Files))
	} else {
		c.logf("extraction complete in %dm %ds: %d listings, %d files",
			int(elapsed.Minutes()), int(elapsed.Seconds())%60, snap.TotalRecordCount, len(snap.Files))
	}

	c.state.EndRun()
}

// worker pulls jobs until the channel drains. Pause and stop are observed
// only between jobs; a job in flight always runs to completion.
func (c *Controller) worker(jobs <-chan types.SitemapJob, fw *writer.FileWriter, dedup *store.Store, wg *sync.WaitGroup) {
	defer wg.Done()

	for job := range jobs {
		for c.state.Paused() && !c.stopped.Load() {
			time.Sleep(pausePollInterval)
		}
		if c.stopped.Load() {
			continue
		}

		res := c.processJob(job, fw, dedup)
		if res.Err != nil {
			c.logErrorf("sitemap %s failed: %v", job.URL, res.Err)
		}
		c.state.JobDone(res.RecordCount)
		if res.OutputFile != "" {
			c.state.AddFile(res.OutputFile)
		}
	}
}

// processJob handles one leaf sitemap end to end. Fetch and parse failures
// come back as the result's Err with zero records; a write failure is logged
// here and loses the category's file, never the run.
func (c *Controller) processJob(job types.SitemapJob, fw *writer.FileWriter, dedup *store.Store) types.JobResult {
	c.state.SetCurrentCategory(job.CategoryName)
	c.logf("[%d/%d] processing: %s", job.SequenceIndex, job.TotalJobs, job.CategoryName)

	content, err := c.client.Fetch(job.URL)
	if err != nil {
		return types.JobResult{Job: job, Err: err}
	}

	entries, err := sitemap.ParseURLSet(content)
	if err != nil {
		return types.JobResult{Job: job, Err: err}
	}

	records := c.collectRecords(entries, dedup)
	c.logf("extracted %d unique listings from %s", len(records), job.CategoryName)

	res := types.JobResult{Job: job, RecordCount: len(records)}

	name, err := fw.WriteCategory(records, job.CategoryName)
	if err != nil {
		c.logErrorf("failed to write %s output: %v", job.CategoryName, err)
		return res
	}
	if name != "" {
		c.logf("saved %d records to %s", len(records), name)
		res.OutputFile = name
	}

	return res
}

// collectRecords decodes sitemap entries into listing records, dropping
// entries that do not decode and ids already seen by any worker. Decode
// failures are silent; at sitemap scale per-entry logging is noise.
func (c *Controller) collectRecords(entries []sitemap.Entry, dedup *store.Store) []types.ListingRecord {
	var records []types.ListingRecord

	for i, entry := range entries {
		if (i+1)%entryLogInterval == 0 {
			c.logf("processed %d/%d URLs...", i+1, len(entries))
		}

		decoded, err := listing.Decode(entry.Loc)
		if err != nil {
			continue
		}

		record := types.ListingRecord{
			PropertyID:      decoded.PropertyID,
			ListingURL:      entry.Loc,
			Address:         decoded.Address,
			City:            decoded.City,
			State:           decoded.State,
			Zipcode:         decoded.Zipcode,
			LastModifiedRaw: entry.LastMod,
		}
		if local, err := listing.LocalizeTimestamp(entry.LastMod); err == nil {
			record.LastModifiedLocal = &local
		}

		if dedup.TryAdd(record) {
			records = append(records, record)
		}
	}

	return records
}

// categoryName derives a human-readable category from the sitemap URL's final
// path segment, compression suffix stripped.
func categoryName(sitemapURL string) string {
	seg := sitemapURL
	if idx := strings.LastIndex(seg, "/"); idx >= 0 {
		seg = seg[idx+1:]
	}
	seg = strings.TrimSuffix(seg, ".gz")
	seg = strings.TrimSuffix(seg, ".xml")
	return seg
}

func (c *Controller) logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Info(msg)
	c.state.AppendLog(msg)
}

func (c *Controller) logErrorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Error(msg)
	c.state.AppendLog("ERROR: " + msg)
}
