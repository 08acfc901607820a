// Package registry parses every configured dataset once and serves the
// result as an immutable, process-lifetime snapshot.
//
// A Registry is built by a single Load call at startup (or FromSeries in
// tests and tools) and passed by pointer to its consumers. It has no
// mutation API; getters return copies or immutable values, so any number of
// goroutines may read it without coordination.
package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"marketdesk/internal/config"
	"marketdesk/internal/dataprocessing"
	"marketdesk/pkg/contracts/domain"
)

// maxParallelReads bounds concurrent file reads during Load
const maxParallelReads = 4

// DatasetStats summarizes what was loaded for one dataset
type DatasetStats struct {
	Dataset     domain.DatasetID `json:"dataset"`
	Files       int              `json:"files"`
	Instruments int              `json:"instruments"`
	Points      int              `json:"points"`
	First       time.Time        `json:"first,omitempty"`
	Last        time.Time        `json:"last,omitempty"`
}

// Registry holds every parsed series and futures snapshot
type Registry struct {
	catalog   Catalog
	series    map[domain.DatasetID]map[domain.InstrumentKey]domain.Series
	snapshots []domain.FedFutureSnapshot
	stats     map[domain.DatasetID]DatasetStats
	loadedAt  time.Time
}

// parsed is the result of reading one file
type parsed struct {
	series    map[domain.InstrumentKey]domain.Series
	snapshots []domain.FedFutureSnapshot
	skipped   bool
}

// Load parses every file listed in cfg. Files of one dataset are read in
// parallel and merged in configured order. A missing file is logged and
// skipped; any other read failure aborts the load.
func Load(ctx context.Context, cfg config.DataConfig, logger *slog.Logger) (*Registry, error) {
	logger = logger.With(slog.String("component", "registry"))
	catalog := DefaultCatalog()
	start := time.Now()

	sources := map[domain.DatasetID][]string{
		domain.DatasetTreasury:   cfg.Treasury,
		domain.DatasetRates:      cfg.Rates,
		domain.DatasetCredit:     cfg.Credit,
		domain.DatasetWatchlist:  cfg.Watchlist,
		domain.DatasetIndustries: cfg.Industries,
		domain.DatasetFedFutures: cfg.FedFutures,
	}

	type job struct {
		dataset domain.DatasetID
		index   int
		path    string
	}

	var jobs []job
	results := make(map[domain.DatasetID][]parsed, len(sources))
	for id, files := range sources {
		results[id] = make([]parsed, len(files))
		for i, f := range files {
			jobs = append(jobs, job{dataset: id, index: i, path: cfg.DataFile(f)})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)
	for _, j := range jobs {
		j := j
		slot := &results[j.dataset][j.index]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := readFile(catalog[j.dataset], j.path)
			if errors.Is(err, fs.ErrNotExist) {
				logger.WarnContext(gctx, "Dataset file not found, skipping",
					slog.String("dataset", string(j.dataset)),
					slog.String("path", j.path))
				*slot = parsed{skipped: true}
				return nil
			}
			if err != nil {
				return fmt.Errorf("load %s file %s: %w", j.dataset, j.path, err)
			}
			*slot = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reg := &Registry{
		catalog:  catalog,
		series:   make(map[domain.DatasetID]map[domain.InstrumentKey]domain.Series, len(sources)),
		stats:    make(map[domain.DatasetID]DatasetStats, len(sources)),
		loadedAt: time.Now().UTC(),
	}

	for id, files := range results {
		if id == domain.DatasetFedFutures {
			lists := make([][]domain.FedFutureSnapshot, 0, len(files))
			for _, p := range files {
				lists = append(lists, p.snapshots)
			}
			reg.snapshots = dataprocessing.MergeSnapshots(lists...)
		} else {
			reg.series[id] = mergeFiles(files)
		}

		stats := reg.computeStats(id)
		for _, p := range files {
			if !p.skipped {
				stats.Files++
			}
		}
		reg.stats[id] = stats

		logger.InfoContext(ctx, "Dataset loaded",
			slog.String("dataset", string(id)),
			slog.Int("files", stats.Files),
			slog.Int("instruments", stats.Instruments),
			slog.Int("points", stats.Points))
	}

	logger.InfoContext(ctx, "Registry loaded",
		slog.Int("datasets", len(reg.stats)),
		slog.Duration("duration", time.Since(start)))

	return reg, nil
}

// readFile parses one file according to the dataset's shape
func readFile(ds Dataset, path string) (parsed, error) {
	rows, err := dataprocessing.ReadRows(path)
	if err != nil {
		return parsed{}, err
	}

	switch ds.Shape {
	case ShapeWide:
		return parsed{series: dataprocessing.ParseWideRows(rows, ds.Wide)}, nil
	case ShapeFutures:
		return parsed{snapshots: dataprocessing.ParseFedFuturesRows(rows, ds.Futures)}, nil
	default:
		return parsed{series: dataprocessing.ParseLongRows(rows, ds.Long)}, nil
	}
}

// mergeFiles merges per-file results in order, later files winning
func mergeFiles(files []parsed) map[domain.InstrumentKey]domain.Series {
	byKey := make(map[domain.InstrumentKey][]domain.Series)
	for _, p := range files {
		for key, s := range p.series {
			byKey[key] = append(byKey[key], s)
		}
	}
	out := make(map[domain.InstrumentKey]domain.Series, len(byKey))
	for key, list := range byKey {
		out[key] = domain.MergeSeries(list...)
	}
	return out
}

// FromSeries builds a registry from already parsed data
func FromSeries(series map[domain.DatasetID]map[domain.InstrumentKey]domain.Series, snapshots []domain.FedFutureSnapshot) *Registry {
	reg := &Registry{
		catalog:   DefaultCatalog(),
		series:    make(map[domain.DatasetID]map[domain.InstrumentKey]domain.Series, len(series)),
		snapshots: dataprocessing.MergeSnapshots(snapshots),
		stats:     make(map[domain.DatasetID]DatasetStats),
		loadedAt:  time.Now().UTC(),
	}
	for id, m := range series {
		cp := make(map[domain.InstrumentKey]domain.Series, len(m))
		for k, s := range m {
			cp[k] = s
		}
		reg.series[id] = cp
	}
	for id := range reg.catalog {
		reg.stats[id] = reg.computeStats(id)
	}
	return reg
}

func (r *Registry) computeStats(id domain.DatasetID) DatasetStats {
	stats := DatasetStats{Dataset: id}
	extend := func(first, last time.Time) {
		if stats.First.IsZero() || first.Before(stats.First) {
			stats.First = first
		}
		if last.After(stats.Last) {
			stats.Last = last
		}
	}

	if id == domain.DatasetFedFutures {
		stats.Instruments = domain.MaxFuturesSequence
		for _, s := range r.snapshots {
			stats.Points += len(s.Contracts)
		}
		if n := len(r.snapshots); n > 0 {
			extend(r.snapshots[0].Time, r.snapshots[n-1].Time)
		} else {
			stats.Instruments = 0
		}
		return stats
	}

	for _, s := range r.series[id] {
		stats.Instruments++
		stats.Points += s.Len()
		first, ok := s.First()
		if !ok {
			continue
		}
		last, _ := s.Last()
		extend(first.Time, last.Time)
	}
	return stats
}
