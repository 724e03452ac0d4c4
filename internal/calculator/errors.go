package calculator

import "fmt"

// InsufficientDataError is returned by the scalar helpers when the input is shorter than the lookback.
type InsufficientDataError struct {
	Indicator string
	Need      int
	Have      int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("not enough data for %s: need %d, have %d", e.Indicator, e.Need, e.Have)
}
