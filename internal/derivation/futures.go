package derivation

import (
	"fmt"
	"time"

	"marketdesk/pkg/contracts/domain"
)

// LadderQuarters is the number of forward quarters in a ladder
const LadderQuarters = 4

// ImpliedRate converts a fed funds futures price into its implied rate
func ImpliedRate(price float64) float64 {
	return 100 - price
}

// MonthsBetween counts calendar months from the month of from to the month of to
func MonthsBetween(from, to time.Time) int {
	from, to = from.UTC(), to.UTC()
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

// ContractMonth returns the first day of the month priced by the contract
// with the given sequence on a snapshot taken at t. Sequence 1 is the
// snapshot month itself.
func ContractMonth(t time.Time, sequence int) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, sequence-1, 0)
}

// ImpliedRateForMonth returns the rate implied for the calendar month of
// month by the snapshot's contract covering it.
func ImpliedRateForMonth(snapshot domain.FedFutureSnapshot, month time.Time) *float64 {
	seq := MonthsBetween(snapshot.Time, month) + 1
	if seq < 1 || seq > domain.MaxFuturesSequence {
		return nil
	}
	c, ok := snapshot.Contract(seq)
	if !ok {
		return nil
	}
	return Float(ImpliedRate(c.Price))
}

// LadderStep is one forward quarter of an implied rate ladder
type LadderStep struct {
	Label    string    `json:"label"`
	EndMonth time.Time `json:"end_month"`
	Implied  *float64  `json:"implied"`
	Change   *float64  `json:"change"`
}

// Ladder is the chained quarter by quarter repricing of the policy rate
type Ladder struct {
	Spot  *float64     `json:"spot"`
	Steps []LadderStep `json:"steps"`
	Total *float64     `json:"total"`
}

// QuarterEnd returns the first day of the last month of t's quarter
func QuarterEnd(t time.Time) time.Time {
	u := t.UTC()
	q := (int(u.Month()) - 1) / 3
	return time.Date(u.Year(), time.Month(q*3+3), 1, 0, 0, 0, 0, time.UTC)
}

// QuarterLabel renders t's quarter as "Q3 2025"
func QuarterLabel(t time.Time) string {
	u := t.UTC()
	return fmt.Sprintf("Q%d %d", (int(u.Month())-1)/3+1, u.Year())
}

// QuarterlyLadder builds LadderQuarters forward quarters starting with the
// quarter containing active. Each step is the implied rate for the quarter's
// end month minus the previous step's implied rate, the first step chaining
// from spot. Once a link is missing that step, every later step and the
// total are nil.
func QuarterlyLadder(snapshot domain.FedFutureSnapshot, spot *float64, active time.Time) Ladder {
	ladder := Ladder{
		Spot:  spot,
		Steps: make([]LadderStep, 0, LadderQuarters),
	}

	first := QuarterEnd(active)
	prev := spot
	broken := spot == nil

	for k := 0; k < LadderQuarters; k++ {
		end := first.AddDate(0, 3*k, 0)
		implied := ImpliedRateForMonth(snapshot, end)

		step := LadderStep{
			Label:    QuarterLabel(end),
			EndMonth: end,
			Implied:  implied,
		}
		if implied == nil {
			broken = true
		}
		if !broken {
			step.Change = NominalChange(implied, prev)
		}
		ladder.Steps = append(ladder.Steps, step)
		prev = implied
	}

	if !broken {
		ladder.Total = NominalChange(prev, spot)
	}
	return ladder
}
