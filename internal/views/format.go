package views

import (
	"fmt"
	"math"
)

// Placeholder is rendered for every missing value
const Placeholder = "--"

// NeutralThreshold is the magnitude below which a change has no direction
const NeutralThreshold = 0.00005

// Tone is the display direction of a change
type Tone string

const (
	ToneUp      Tone = "up"
	ToneDown    Tone = "down"
	ToneNeutral Tone = "neutral"
)

// ToneOf classifies v. Missing values are neutral.
func ToneOf(v *float64) Tone {
	if v == nil || math.Abs(*v) < NeutralThreshold {
		return ToneNeutral
	}
	if *v > 0 {
		return ToneUp
	}
	return ToneDown
}

// Round rounds v to decimals places, keeping nil
func Round(v *float64, decimals int) *float64 {
	if v == nil {
		return nil
	}
	pow := math.Pow(10, float64(decimals))
	r := math.Round(*v*pow) / pow
	if r == 0 {
		// drop negative zero
		r = 0
	}
	return &r
}

// FormatLevel renders a plain level
func FormatLevel(v *float64, decimals int) string {
	if v == nil {
		return Placeholder
	}
	return fmt.Sprintf("%.*f", decimals, *Round(v, decimals))
}

// FormatBps renders a signed basis point change
func FormatBps(v *float64, decimals int) string {
	if v == nil {
		return Placeholder
	}
	return signed(*Round(v, decimals), decimals)
}

// FormatPercent renders a fractional change as a signed percentage with two
// decimals (0.1 renders as +10.00%).
func FormatPercent(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return signed(*Round(v, 4)*100, 2) + "%"
}

func signed(v float64, decimals int) string {
	s := fmt.Sprintf("%+.*f", decimals, v)
	if math.Abs(v) < math.Pow(10, -float64(decimals))/2 {
		// "+0.0" and "-0.0" both read as no change
		return s[1:]
	}
	return s
}

// Cell is one formatted value of a table
type Cell struct {
	Value *float64 `json:"value"`
	Text  string   `json:"text"`
	Tone  Tone     `json:"tone,omitempty"`
}

// Missing reports whether the cell has no value
func (c Cell) Missing() bool {
	return c.Value == nil
}

// LevelCell formats a level. Levels carry no tone.
func LevelCell(v *float64, decimals int) Cell {
	return Cell{Value: Round(v, decimals), Text: FormatLevel(v, decimals)}
}

// ChangeCell formats a signed change, typically basis points
func ChangeCell(v *float64, decimals int) Cell {
	r := Round(v, decimals)
	return Cell{Value: r, Text: FormatBps(v, decimals), Tone: ToneOf(r)}
}

// PercentCell formats a fractional change as a percentage
func PercentCell(v *float64) Cell {
	r := Round(v, 4)
	return Cell{Value: r, Text: FormatPercent(v), Tone: ToneOf(r)}
}

// countMissing returns how many cells have no value
func countMissing(cells ...Cell) int {
	n := 0
	for _, c := range cells {
		if c.Missing() {
			n++
		}
	}
	return n
}
