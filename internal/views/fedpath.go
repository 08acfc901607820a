package views

import (
	"time"

	"marketdesk/internal/alignment"
	"marketdesk/internal/derivation"
	"marketdesk/internal/registry"
	"marketdesk/pkg/contracts/domain"
)

// moveSize is the size of one policy move in basis points
const moveSize = 25

// ContractRow is one monthly contract of the aligned snapshot
type ContractRow struct {
	Sequence int    `json:"sequence"`
	Ticker   string `json:"ticker"`
	Month    string `json:"month"`
	Price    Cell   `json:"price"`
	Implied  Cell   `json:"implied"`
}

// LadderRow is one forward quarter of the rate ladder
type LadderRow struct {
	Label   string `json:"label"`
	Implied Cell   `json:"implied"`
	Change  Cell   `json:"change_bp"`
}

// FedPath is the market implied policy path at the active date
type FedPath struct {
	SnapshotDate string        `json:"snapshot_date,omitempty"`
	Spot         Cell          `json:"spot"`
	Contracts    []ContractRow `json:"contracts"`
	Ladder       []LadderRow   `json:"ladder"`
	Total        Cell          `json:"total_bp"`
	Moves        Cell          `json:"moves"`
	Missing      int           `json:"missing"`
}

// FedPath builds the implied rate table of the futures snapshot aligned to
// active and the quarterly ladder chained from the effective rate.
func (b *Builder) FedPath(active time.Time) FedPath {
	active = domain.TruncateDay(active)

	spot := derivation.AlignedValue(b.reg.Get(domain.DatasetRates, registry.EFFR), active, b.opts.MaxGapDays)
	snapshot, found := alignment.AlignedSnapshot(b.reg.FedFutures(), active, b.opts.MaxGapDays)

	path := FedPath{
		Spot:      LevelCell(spot, 3),
		Contracts: []ContractRow{},
		Ladder:    make([]LadderRow, 0, derivation.LadderQuarters),
	}

	if found {
		path.SnapshotDate = snapshot.Time.Format(DateLayout)
		for _, c := range snapshot.Contracts {
			path.Contracts = append(path.Contracts, ContractRow{
				Sequence: c.Sequence,
				Ticker:   c.Ticker,
				Month:    derivation.ContractMonth(snapshot.Time, c.Sequence).Format("Jan 2006"),
				Price:    LevelCell(derivation.Float(c.Price), 3),
				Implied:  LevelCell(derivation.Float(derivation.ImpliedRate(c.Price)), 3),
			})
		}
	}

	ladder := derivation.QuarterlyLadder(snapshot, spot, active)
	for _, step := range ladder.Steps {
		row := LadderRow{
			Label:   step.Label,
			Implied: LevelCell(step.Implied, 3),
			Change:  ChangeCell(derivation.Scale(step.Change, bpPerPercent), 1),
		}
		path.Missing += countMissing(row.Implied, row.Change)
		path.Ladder = append(path.Ladder, row)
	}

	total := derivation.Scale(ladder.Total, bpPerPercent)
	path.Total = ChangeCell(total, 1)
	path.Moves = ChangeCell(derivation.Scale(total, 1.0/moveSize), 1)
	path.Missing += countMissing(path.Spot, path.Total, path.Moves)

	return path
}
