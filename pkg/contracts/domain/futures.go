package domain

import (
	"encoding/json"
	"sort"
	"time"
)

// MaxFuturesSequence is the number of monthly contracts carried per snapshot
const MaxFuturesSequence = 12

// FuturesContract is one generic monthly fed funds futures contract
type FuturesContract struct {
	Sequence int     `json:"sequence"`
	Ticker   string  `json:"ticker"`
	Price    float64 `json:"price"`
}

// FedFutureSnapshot is the full futures curve observed on one day
type FedFutureSnapshot struct {
	Time      time.Time
	Contracts []FuturesContract
}

// NewFedFutureSnapshot sorts contracts by sequence and keeps the last
// contract seen for each sequence.
func NewFedFutureSnapshot(t time.Time, contracts []FuturesContract) FedFutureSnapshot {
	bySeq := make(map[int]FuturesContract, len(contracts))
	for _, c := range contracts {
		if c.Sequence < 1 || c.Sequence > MaxFuturesSequence {
			continue
		}
		bySeq[c.Sequence] = c
	}
	out := make([]FuturesContract, 0, len(bySeq))
	for _, c := range bySeq {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return FedFutureSnapshot{Time: TruncateDay(t), Contracts: out}
}

// Contract returns the contract with the given sequence
func (s FedFutureSnapshot) Contract(sequence int) (FuturesContract, bool) {
	for _, c := range s.Contracts {
		if c.Sequence == sequence {
			return c, true
		}
	}
	return FuturesContract{}, false
}

// MarshalJSON encodes Time as unix milliseconds
func (s FedFutureSnapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Time      int64             `json:"time"`
		Contracts []FuturesContract `json:"contracts"`
	}{
		Time:      s.Time.UnixMilli(),
		Contracts: s.Contracts,
	})
}

// SnapshotTimes returns the observation day of every snapshot in order
func SnapshotTimes(snapshots []FedFutureSnapshot) []time.Time {
	out := make([]time.Time, len(snapshots))
	for i, s := range snapshots {
		out[i] = s.Time
	}
	return out
}
