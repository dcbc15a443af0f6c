package ingest

import "errors"

// Sentinel error kinds for dataset ingestion.
var (
	ErrMissingFile = errors.New("dataset file missing")
	ErrFormat      = errors.New("unexpected dataset file format")
)
