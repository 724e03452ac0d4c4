package cache

import (
	"fmt"
	"strings"
)

// Kind names the cached result type.
type Kind string

const (
	KindHistorical Kind = "historical"
	KindWeekly     Kind = "weekly"
	KindMonthly    Kind = "monthly"
)

// Key builds "instrument:kind", e.g. "BTC-USDT:weekly".
func Key(kind Kind, instrument string) string {
	return fmt.Sprintf("%s:%s", strings.ToUpper(instrument), kind)
}

// InstrumentPrefix matches every key of one instrument.
func InstrumentPrefix(instrument string) string {
	return strings.ToUpper(instrument) + ":"
}
