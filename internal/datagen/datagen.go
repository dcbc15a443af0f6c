// Package datagen produces synthetic comparison datasets in the archive layout
// read by the ingest adapter.
//
// Generation is deterministic for a given Config.Seed, so archives can be
// regenerated byte for byte in tests and demos.
package datagen

import (
	"archive/zip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/okian/medallion/internal/adapters/ingest"
	"github.com/okian/medallion/internal/domain/catalog"
	"github.com/okian/medallion/internal/domain/dataset"
)

// ErrInvalidConfig is returned for non-positive sizes.
var ErrInvalidConfig = errors.New("invalid generator config")

const (
	videoIDLength  = 11
	videoAlphabet  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_"
	scoreRange     = 10.0
	weekDateLayout = "2006-01-02"
	filePermission = 0o600
)

// Config sizes a generated dataset.
type Config struct {
	Users              int
	Videos             int
	Weeks              int
	ComparisonsPerUser int
	// SecondaryRatio is the chance a comparison is also made on each secondary criterion.
	SecondaryRatio float64
	Seed           int64
	// FirstWeek is the Monday of the first bucket.
	FirstWeek time.Time
}

// DefaultConfig returns a small dataset that still populates every tier.
func DefaultConfig() Config {
	return Config{
		Users:              200,
		Videos:             400,
		Weeks:              26,
		ComparisonsPerUser: 40,
		SecondaryRatio:     0.2,
		Seed:               1,
		FirstWeek:          time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC),
	}
}

// Dataset holds generated CSV rows, headers excluded.
type Dataset struct {
	Collective  [][]string
	Individual  [][]string
	Comparisons [][]string
	Users       []string
}

// Generate builds a dataset. User activity is exponentially distributed so a
// few heavy contributors dominate each badge, as in real datasets.
func Generate(cfg Config) (*Dataset, error) {
	if cfg.Users < 1 || cfg.Videos < 2 || cfg.Weeks < 1 || cfg.ComparisonsPerUser < 1 {
		return nil, fmt.Errorf("%w: %+v", ErrInvalidConfig, cfg)
	}
	if cfg.FirstWeek.IsZero() {
		cfg.FirstWeek = DefaultConfig().FirstWeek
	}
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // reproducible fixtures, not secrets

	users := make([]string, cfg.Users)
	for i := range users {
		id, err := uuid.NewRandomFromReader(rng)
		if err != nil {
			return nil, fmt.Errorf("generate username: %w", err)
		}
		users[i] = "user-" + id.String()[:8]
	}
	videos := make([]string, cfg.Videos)
	for i := range videos {
		videos[i] = "yt:" + randomID(rng)
	}
	weeks := make([]string, cfg.Weeks)
	for i := range weeks {
		weeks[i] = cfg.FirstWeek.AddDate(0, 0, 7*i).Format(weekDateLayout)
	}

	type key struct{ user, video, criterion string }
	individual := make(map[key]float64)
	collective := make(map[[2]string][]float64)
	d := &Dataset{Users: users}

	criteria := []string{dataset.MainCriterion}
	for _, c := range catalog.SecondaryCriteria {
		criteria = append(criteria, c.Key)
	}

	for _, user := range users {
		n := 1 + int(float64(cfg.ComparisonsPerUser)*rng.ExpFloat64())
		joined := rng.Intn(cfg.Weeks)
		for j := 0; j < n; j++ {
			a := rng.Intn(cfg.Videos)
			b := rng.Intn(cfg.Videos - 1)
			if b >= a {
				b++
			}
			week := weeks[joined+rng.Intn(cfg.Weeks-joined)]
			for ci, criterion := range criteria {
				if ci > 0 && rng.Float64() >= cfg.SecondaryRatio {
					continue
				}
				value := math.Round((rng.Float64()*2-1)*scoreRange*100) / 100
				d.Comparisons = append(d.Comparisons, []string{
					user, videos[a], videos[b], criterion, formatFloat(value), week,
				})
				individual[key{user, videos[a], criterion}] = value
				individual[key{user, videos[b], criterion}] = -value
			}
		}
	}

	keys := make([]key, 0, len(individual))
	for k := range individual {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].user != keys[j].user {
			return keys[i].user < keys[j].user
		}
		if keys[i].video != keys[j].video {
			return keys[i].video < keys[j].video
		}
		return keys[i].criterion < keys[j].criterion
	})
	for _, k := range keys {
		score := individual[k]
		votingRight := math.Round(rng.Float64()*100) / 100
		d.Individual = append(d.Individual, []string{k.user, k.video, k.criterion, formatFloat(score), formatFloat(votingRight)})
		ck := [2]string{k.video, k.criterion}
		collective[ck] = append(collective[ck], score)
	}

	ckeys := make([][2]string, 0, len(collective))
	for k := range collective {
		ckeys = append(ckeys, k)
	}
	sort.Slice(ckeys, func(i, j int) bool {
		if ckeys[i][0] != ckeys[j][0] {
			return ckeys[i][0] < ckeys[j][0]
		}
		return ckeys[i][1] < ckeys[j][1]
	})
	for _, k := range ckeys {
		d.Collective = append(d.Collective, []string{k[0], k[1], formatFloat(mean(collective[k]))})
	}
	return d, nil
}

// Index builds a dataset index from the generated rows without a CSV round trip.
func (d *Dataset) Index() *dataset.Index {
	b := dataset.NewBuilder()
	for _, r := range d.Collective {
		b.AddCollectiveScore(r[0], r[1], dataset.CollectiveScore{Score: parse(r[2])})
	}
	for _, r := range d.Individual {
		b.AddIndividualScore(r[0], r[1], r[2], dataset.Score{Score: parse(r[3]), VotingRight: parse(r[4])})
	}
	for _, r := range d.Comparisons {
		b.AddComparison(dataset.Comparison{
			User: r[0], ItemA: r[1], ItemB: r[2], Criterion: r[3], Value: parse(r[4]), Bucket: r[5],
		})
	}
	return b.Build()
}

// WriteZip writes the three CSV files as a zip archive.
func (d *Dataset) WriteZip(w io.Writer) error {
	zw := zip.NewWriter(w)
	files := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{ingest.CollectiveFile, []string{"video", "criteria", "score"}, d.Collective},
		{ingest.IndividualFile, []string{"public_username", "video", "criteria", "score", "voting_right"}, d.Individual},
		{ingest.ComparisonsFile, []string{"public_username", "video_a", "video_b", "criteria", "score", "week_date"}, d.Comparisons},
	}
	for _, f := range files {
		fw, err := zw.Create(f.name)
		if err != nil {
			return fmt.Errorf("create %s: %w", f.name, err)
		}
		cw := csv.NewWriter(fw)
		if err := cw.Write(f.header); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
		if err := cw.WriteAll(f.rows); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	return zw.Close()
}

// WriteFile writes the zip archive to path.
func (d *Dataset) WriteFile(path string) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermission)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return d.WriteZip(f)
}

func randomID(rng *rand.Rand) string {
	b := make([]byte, videoIDLength)
	for i := range b {
		b[i] = videoAlphabet[rng.Intn(len(videoAlphabet))]
	}
	return string(b)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parse(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return math.Round(sum/float64(len(xs))*100) / 100
}
