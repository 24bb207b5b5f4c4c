package model

const (
	JobStatusRunning   = "RUNNING"
	JobStatusCompleted = "COMPLETED"
	JobStatusFailed    = "FAILED"
)

type IngestionJob struct {
	ID         string `json:"id"`
	Source     string `json:"source"`
	Status     string `json:"status"`
	Error      string `json:"error"`
	StartedAt  int64  `json:"started_at"`
	FinishedAt int64  `json:"finished_at"`
}

// ScrapeResult summarizes one scrape-and-ingest run.
type ScrapeResult struct {
	Success           bool     `json:"success"`
	DocumentsFound    int      `json:"documents_found"`
	DocumentsInserted int      `json:"documents_inserted"`
	DocumentsUpdated  int      `json:"documents_updated"`
	Errors            []string `json:"errors"`
	Message           string   `json:"message"`
}
