package registry

import (
	"sort"
	"time"

	"marketdesk/pkg/contracts/domain"
)

// Catalog returns the dataset descriptors
func (r *Registry) Catalog() Catalog {
	return r.catalog
}

// Dataset returns the descriptor of id
func (r *Registry) Dataset(id domain.DatasetID) (Dataset, bool) {
	ds, ok := r.catalog[id]
	return ds, ok
}

// Series returns one series. An unknown key yields an empty series and false.
func (r *Registry) Series(id domain.DatasetID, key domain.InstrumentKey) (domain.Series, bool) {
	s, ok := r.series[id][key]
	return s, ok
}

// Get returns a series or an empty one
func (r *Registry) Get(id domain.DatasetID, key domain.InstrumentKey) domain.Series {
	return r.series[id][key]
}

// Dataset series accessors. The returned maps are copies.
func (r *Registry) Treasury() map[domain.InstrumentKey]domain.Series {
	return r.all(domain.DatasetTreasury)
}

func (r *Registry) Rates() map[domain.InstrumentKey]domain.Series {
	return r.all(domain.DatasetRates)
}

func (r *Registry) CreditSpreads() map[domain.InstrumentKey]domain.Series {
	return r.all(domain.DatasetCredit)
}

func (r *Registry) Watchlist() map[domain.InstrumentKey]domain.Series {
	return r.all(domain.DatasetWatchlist)
}

func (r *Registry) Industries() map[domain.InstrumentKey]domain.Series {
	return r.all(domain.DatasetIndustries)
}

// FedFutures returns a copy of the futures snapshots, sorted by time
func (r *Registry) FedFutures() []domain.FedFutureSnapshot {
	out := make([]domain.FedFutureSnapshot, len(r.snapshots))
	copy(out, r.snapshots)
	return out
}

func (r *Registry) all(id domain.DatasetID) map[domain.InstrumentKey]domain.Series {
	src := r.series[id]
	out := make(map[domain.InstrumentKey]domain.Series, len(src))
	for k, s := range src {
		out[k] = s
	}
	return out
}

// Keys returns the keys of id that have data, in catalog order
func (r *Registry) Keys(id domain.DatasetID) []domain.InstrumentKey {
	ds, ok := r.catalog[id]
	if !ok {
		return nil
	}
	var out []domain.InstrumentKey
	for _, k := range ds.Keys() {
		if _, ok := r.series[id][k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// Latest returns the most recent observation day of a dataset
func (r *Registry) Latest(id domain.DatasetID) (time.Time, bool) {
	st, ok := r.stats[id]
	if !ok || st.Last.IsZero() {
		return time.Time{}, false
	}
	return st.Last, true
}

// Stats returns per-dataset load statistics sorted by dataset id
func (r *Registry) Stats() []DatasetStats {
	out := make([]DatasetStats, 0, len(r.stats))
	for _, st := range r.stats {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Dataset < out[j].Dataset })
	return out
}

// LoadedAt returns when the registry was built
func (r *Registry) LoadedAt() time.Time {
	return r.loadedAt
}
