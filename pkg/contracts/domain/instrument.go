package domain

import (
	"sort"
	"strings"
)

// InstrumentKey identifies one instrument within a dataset
type InstrumentKey string

// String returns the key as a string
func (k InstrumentKey) String() string {
	return string(k)
}

// DatasetID names a configured dataset
type DatasetID string

const (
	DatasetTreasury   DatasetID = "treasury"
	DatasetRates      DatasetID = "rates"
	DatasetCredit     DatasetID = "credit"
	DatasetWatchlist  DatasetID = "watchlist"
	DatasetIndustries DatasetID = "industries"
	DatasetFedFutures DatasetID = "fedfutures"
)

// yellowKeys are terminal-style security type suffixes stripped from raw tickers
var yellowKeys = []string{" INDEX", " COMDTY", " CURNCY", " EQUITY", " GOVT", " CORP"}

// NormalizeTicker trims, upper-cases and strips a trailing security type suffix
func NormalizeTicker(raw string) string {
	t := strings.ToUpper(strings.TrimSpace(raw))
	t = strings.Trim(t, `"`)
	for _, suffix := range yellowKeys {
		if strings.HasSuffix(t, suffix) {
			t = strings.TrimSpace(strings.TrimSuffix(t, suffix))
			break
		}
	}
	return t
}

// KeySet is the closed set of keys of one dataset plus its alias table
type KeySet struct {
	keys    map[InstrumentKey]struct{}
	aliases map[string]InstrumentKey
	order   []InstrumentKey
}

// NewKeySet builds a KeySet. Keys resolve to themselves; aliases map
// normalized raw spellings onto keys. Aliases pointing outside keys are ignored.
func NewKeySet(keys []InstrumentKey, aliases map[string]InstrumentKey) KeySet {
	ks := KeySet{
		keys:    make(map[InstrumentKey]struct{}, len(keys)),
		aliases: make(map[string]InstrumentKey, len(aliases)+len(keys)),
	}
	for _, k := range keys {
		if _, dup := ks.keys[k]; dup {
			continue
		}
		ks.keys[k] = struct{}{}
		ks.order = append(ks.order, k)
		ks.aliases[NormalizeTicker(string(k))] = k
	}
	for alias, k := range aliases {
		if _, ok := ks.keys[k]; !ok {
			continue
		}
		ks.aliases[NormalizeTicker(alias)] = k
	}
	return ks
}

// Resolve maps a raw ticker onto a key
func (ks KeySet) Resolve(raw string) (InstrumentKey, bool) {
	k, ok := ks.aliases[NormalizeTicker(raw)]
	return k, ok
}

// Contains reports whether k is part of the set
func (ks KeySet) Contains(k InstrumentKey) bool {
	_, ok := ks.keys[k]
	return ok
}

// Keys returns the keys in declaration order
func (ks KeySet) Keys() []InstrumentKey {
	out := make([]InstrumentKey, len(ks.order))
	copy(out, ks.order)
	return out
}

// SortedKeys returns the keys of m sorted lexically
func SortedKeys(m map[InstrumentKey]Series) []InstrumentKey {
	out := make([]InstrumentKey, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
