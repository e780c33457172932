package types

import "time"

// ListingRecord is one decoded property reference extracted from a leaf sitemap.
type ListingRecord struct {
	PropertyID        string     `json:"property_id"`
	ListingURL        string     `json:"listing_url"`
	Address           string     `json:"address"`
	City              string     `json:"city"`
	State             string     `json:"state"`
	Zipcode           string     `json:"zipcode"`
	LastModifiedRaw   string     `json:"last_modified"`
	LastModifiedLocal *time.Time `json:"last_modified_local,omitempty"`
}

// SitemapJob is one leaf sitemap assigned to a worker.
type SitemapJob struct {
	URL           string
	CategoryName  string
	SequenceIndex int
	TotalJobs     int
}

// JobResult is the outcome of processing one SitemapJob. A failed fetch or
// parse sets Err; the controller logs it and moves on.
type JobResult struct {
	Job         SitemapJob
	RecordCount int
	OutputFile  string
	Err         error
}

// RunConfig enumerates everything a caller can set when starting a run.
type RunConfig struct {
	SitemapURLs  []string
	OutputFormat string // "csv" or "json"
	OutputDir    string // defaults to the current directory
	WorkerCount  int    // defaults to 5
}

// RunSnapshot is a read-only copy of the run state, shaped for the control
// surface's status endpoint.
type RunSnapshot struct {
	RunID            string   `json:"run_id"`
	Running          bool     `json:"running"`
	Paused           bool     `json:"paused"`
	Progress         int      `json:"progress"`
	ProcessedJobs    int      `json:"processed_categories"`
	TotalJobs        int      `json:"total_categories"`
	CurrentCategory  string   `json:"current_category"`
	TotalRecordCount int      `json:"total_properties"`
	Logs             []string `json:"logs"`
	Files            []string `json:"files"`
	OutputDir        string   `json:"output_dir"`
	StartTime        string   `json:"start_time,omitempty"`
	EndTime          string   `json:"end_time,omitempty"`
	LastError        string   `json:"error,omitempty"`
}
