package layout

import (
	"math"

	"github.com/mattn/go-runewidth"
)

// Measurer reports the rendered width of a label in pixels.
type Measurer interface {
	MeasureLabel(text string, size Size) float64
}

// MeasurerFunc adapts a function into a Measurer.
type MeasurerFunc func(text string, size Size) float64

// MeasureLabel calls the underlying function.
func (fn MeasurerFunc) MeasureLabel(text string, size Size) float64 {
	return fn(text, size)
}

// RuneWidthMeasurer estimates label widths from terminal cell widths, so
// wide (CJK) characters count double.
type RuneWidthMeasurer struct {
	// CellWidth is the width of one narrow cell per size. Missing sizes use
	// the default entry.
	CellWidth map[Size]float64
	// Padding is added to every non-empty label.
	Padding float64
}

// NewRuneWidthMeasurer returns a measurer calibrated to 14px body text with
// the 12px label gutter.
func NewRuneWidthMeasurer() RuneWidthMeasurer {
	return RuneWidthMeasurer{
		CellWidth: map[Size]float64{
			SizeLarge:   8,
			SizeDefault: 7,
			SizeSmall:   6,
		},
		Padding: 12,
	}
}

func (m RuneWidthMeasurer) MeasureLabel(text string, size Size) float64 {
	cells := runewidth.StringWidth(text)
	if cells == 0 {
		return 0
	}
	cell, ok := m.CellWidth[size]
	if !ok {
		cell = m.CellWidth[SizeDefault]
	}
	return math.Ceil(float64(cells)*cell + m.Padding)
}
