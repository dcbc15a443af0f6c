// Package ingest reads a dataset archive into a dataset.Index.
//
// The archive holds three CSV files. Headers are matched by name, so column order
// does not matter and unknown columns are ignored.
package ingest

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/medallion/internal/domain/dataset"
	"github.com/okian/medallion/pkg/logger"
	"github.com/okian/medallion/pkg/metrics"
)

// Dataset file names.
const (
	CollectiveFile  = "collective_criteria_scores.csv"
	IndividualFile  = "individual_criteria_scores.csv"
	ComparisonsFile = "comparisons.csv"
)

var (
	collectiveCols  = []string{"video", "criteria", "score"}
	individualCols  = []string{"public_username", "video", "criteria", "score", "voting_right"}
	comparisonsCols = []string{"public_username", "video_a", "video_b", "criteria", "score", "week_date"}
)

// Result is a loaded dataset.
type Result struct {
	ID       string
	Index    *dataset.Index
	Duration time.Duration
}

// Reader loads datasets.
type Reader struct {
	logger logger.Logger
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the reader's logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewReader creates a Reader. The global logger must be initialized unless one is passed.
func NewReader(opts ...Option) *Reader {
	r := &Reader{}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get().Named("ingest")
	}
	return r
}

// OpenArchive opens path as a zip archive, or as a plain directory when path is one.
// The returned closer must be called when done.
func OpenArchive(path string) (fs.FS, io.Closer, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	if info.IsDir() {
		return os.DirFS(path), io.NopCloser(nil), nil
	}
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open dataset %s: %w: %v", path, ErrFormat, err)
	}
	return zr, zr, nil
}

// LoadPath opens the archive at path and loads it.
func (r *Reader) LoadPath(ctx context.Context, path string) (*Result, error) {
	fsys, closer, err := OpenArchive(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := closer.Close(); cerr != nil {
			r.logger.Warn(ctx, "failed to close dataset archive", logger.Error(cerr))
		}
	}()
	return r.Load(ctx, fsys)
}

// Load reads the three dataset files from fsys. Cancellation is checked between files.
func (r *Reader) Load(ctx context.Context, fsys fs.FS) (*Result, error) {
	start := time.Now()
	id := uuid.NewString()
	b := dataset.NewBuilder()

	steps := []struct {
		file string
		cols []string
		row  func(rec map[string]string) error
	}{
		{CollectiveFile, collectiveCols, func(rec map[string]string) error {
			score, err := parseFloat(rec["score"])
			if err != nil {
				return err
			}
			b.AddCollectiveScore(rec["video"], rec["criteria"], dataset.CollectiveScore{Score: score})
			return nil
		}},
		{IndividualFile, individualCols, func(rec map[string]string) error {
			score, err := parseFloat(rec["score"])
			if err != nil {
				return err
			}
			vr, err := parseFloat(rec["voting_right"])
			if err != nil {
				return err
			}
			b.AddIndividualScore(rec["public_username"], rec["video"], rec["criteria"], dataset.Score{Score: score, VotingRight: vr})
			return nil
		}},
		{ComparisonsFile, comparisonsCols, func(rec map[string]string) error {
			value, err := parseFloat(rec["score"])
			if err != nil {
				return err
			}
			b.AddComparison(dataset.Comparison{
				User:      rec["public_username"],
				ItemA:     rec["video_a"],
				ItemB:     rec["video_b"],
				Criterion: rec["criteria"],
				Value:     value,
				Bucket:    rec["week_date"],
			})
			return nil
		}},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("load dataset: %w", err)
		}
		r.logger.Info(ctx, "loading dataset file", logger.String("dataset", id), logger.String("file", step.file))
		n, err := readCSV(fsys, step.file, step.cols, step.row)
		if err != nil {
			return nil, err
		}
		metrics.RecordDatasetRows(step.file, n)
		r.logger.Info(ctx, "loaded dataset file", logger.String("file", step.file), logger.Int("rows", n))
	}

	dups := b.Duplicates()
	ix := b.Build()
	stats := ix.Stats()
	if dups > 0 {
		metrics.RecordDatasetDuplicates(dups)
		r.logger.Warn(ctx, "duplicate individual scores replaced earlier rows", logger.Int("duplicates", dups))
	}
	metrics.UpdateDatasetSize(stats.Users, stats.Items)
	elapsed := time.Since(start)
	metrics.RecordDatasetLoadDuration(float64(elapsed.Milliseconds()))
	r.logger.Info(ctx, "dataset indexed",
		logger.String("dataset", id),
		logger.Int("users", stats.Users),
		logger.Int("items", stats.Items),
		logger.Int("comparisons", stats.Comparisons),
		logger.Duration("elapsed", elapsed))

	return &Result{ID: id, Index: ix, Duration: elapsed}, nil
}

// readCSV calls row for every record of name, keyed by trimmed header names,
// and returns the number of records read.
func readCSV(fsys fs.FS, name string, required []string, row func(map[string]string) error) (int, error) {
	f, err := fsys.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", ErrMissingFile, name)
		}
		return 0, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("%w: %s is empty", ErrFormat, name)
		}
		return 0, fmt.Errorf("%w: %s: %v", ErrFormat, name, err)
	}
	cols := make([]string, len(header))
	index := make(map[string]bool, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		index[cols[i]] = true
	}
	for _, c := range required {
		if !index[c] {
			return 0, fmt.Errorf("%w: %s lacks column %q", ErrFormat, name, c)
		}
	}

	n := 0
	rec := make(map[string]string, len(cols))
	for {
		values, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("%w: %s: %v", ErrFormat, name, err)
		}
		if len(values) == 1 && strings.TrimSpace(values[0]) == "" {
			continue
		}
		clear(rec)
		for i, c := range cols {
			if i < len(values) {
				rec[c] = strings.TrimSpace(values[i])
			}
		}
		if err := row(rec); err != nil {
			line, _ := cr.FieldPos(0)
			return n, fmt.Errorf("%w: %s line %d: %v", ErrFormat, name, line, err)
		}
		n++
	}
}

// parseFloat parses a numeric cell; an empty cell is 0.
func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
