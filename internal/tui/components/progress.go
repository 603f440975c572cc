package components

import (
	"fmt"
	"strings"
)

const (
	filledChar = "■"
	emptyChar  = "□"
)

// StepProgress renders wizard position like: Step 2 of 4  ■■■■■□□□□□
type StepProgress struct {
	Step  int
	Total int
	Width int // character width of the bar portion
}

// NewStepProgress creates a StepProgress.
func NewStepProgress(step, total, width int) StepProgress {
	return StepProgress{Step: step, Total: total, Width: width}
}

// View returns the rendered progress line.
func (p StepProgress) View() string {
	if p.Total <= 0 {
		return ""
	}

	step := min(max(p.Step, 1), p.Total)
	label := fmt.Sprintf("Step %d of %d", step, p.Total)
	if p.Width <= 0 {
		return label
	}

	filled := (step * p.Width) / p.Total
	bar := strings.Repeat(filledChar, filled) + strings.Repeat(emptyChar, p.Width-filled)
	return label + "  " + bar
}
