package dataprocessing

import (
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"marketdesk/pkg/contracts/domain"
)

// Default tags of the fed funds futures export
const (
	DefaultFuturesCategory = "future"
	DefaultGenericRoot     = "FF"
)

// FuturesSpec describes how fed funds futures rows are recognized
type FuturesSpec struct {
	// Category is the required category tag, "future" when empty
	Category string
	// GenericRoot is the generic ticker root used to infer the sequence when
	// the extra column is empty, "FF" when empty (FF3 -> sequence 3)
	GenericRoot string
}

// ParseFedFutures reads CSV text and parses it with ParseFedFuturesRows
func ParseFedFutures(r io.Reader, spec FuturesSpec) ([]domain.FedFutureSnapshot, error) {
	rows, err := ReadCSVRows(r)
	if err != nil {
		return nil, err
	}
	return ParseFedFuturesRows(rows, spec), nil
}

// ParseFedFuturesRows groups futures rows into one snapshot per day, sorted
// by time. Rows without a usable sequence are dropped.
func ParseFedFuturesRows(rows [][]string, spec FuturesSpec) []domain.FedFutureSnapshot {
	category := spec.Category
	if category == "" {
		category = DefaultFuturesCategory
	}
	root := strings.ToUpper(spec.GenericRoot)
	if root == "" {
		root = DefaultGenericRoot
	}
	genericPattern := regexp.MustCompile(`^` + regexp.QuoteMeta(root) + `(\d{1,2})$`)

	byDay := make(map[int64][]domain.FuturesContract)
	days := make(map[int64]time.Time)

	for _, row := range rows {
		lr, ok := readLongRow(row, category)
		if !ok {
			continue
		}
		seq, ok := contractSequence(lr.extra, lr.ticker, genericPattern)
		if !ok {
			continue
		}
		key := lr.date.Unix()
		days[key] = lr.date
		byDay[key] = append(byDay[key], domain.FuturesContract{
			Sequence: seq,
			Ticker:   lr.ticker,
			Price:    lr.value,
		})
	}

	out := make([]domain.FedFutureSnapshot, 0, len(byDay))
	for key, contracts := range byDay {
		snap := domain.NewFedFutureSnapshot(days[key], contracts)
		if len(snap.Contracts) == 0 {
			continue
		}
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}

// MergeSnapshots combines snapshot lists; for a day present in several
// inputs the snapshot from the later input replaces the earlier one.
func MergeSnapshots(lists ...[]domain.FedFutureSnapshot) []domain.FedFutureSnapshot {
	byDay := make(map[int64]domain.FedFutureSnapshot)
	for _, list := range lists {
		for _, s := range list {
			byDay[s.Time.Unix()] = s
		}
	}
	out := make([]domain.FedFutureSnapshot, 0, len(byDay))
	for _, s := range byDay {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}

// contractSequence reads the sequence from the extra tag or, failing that,
// from the digits of a generic ticker
func contractSequence(extra, ticker string, generic *regexp.Regexp) (int, bool) {
	if extra != "" {
		if n, err := strconv.Atoi(extra); err == nil && validSequence(n) {
			return n, true
		}
	}
	m := generic.FindStringSubmatch(ticker)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || !validSequence(n) {
		return 0, false
	}
	return n, true
}

func validSequence(n int) bool {
	return n >= 1 && n <= domain.MaxFuturesSequence
}
