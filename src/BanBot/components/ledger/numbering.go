package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Ban numbers come in two independent series sharing one table: regular bans
// use bare zero-padded digits ("0042"), unbans use "UNBAN-0007". Degraded
// mode (number generation failed) falls back to timestamp identifiers with a
// distinct "TS-" marker so downstream consumers can tell them apart from
// sequence numbers.
const (
	unbanPrefix    = "UNBAN-"
	fallbackMarker = "TS-"
	numberPadding  = 4
)

// seriesValue extracts the numeric value of a ban number within its series.
// Fallback identifiers and numbers from the other series are rejected.
func seriesValue(banNumber string, isUnban bool) (int, bool) {
	if isUnban {
		if !strings.HasPrefix(banNumber, unbanPrefix) {
			return 0, false
		}
		banNumber = strings.TrimPrefix(banNumber, unbanPrefix)
	} else if strings.HasPrefix(banNumber, unbanPrefix) {
		return 0, false
	}

	if strings.HasPrefix(banNumber, fallbackMarker) {
		return 0, false
	}

	n, err := strconv.Atoi(banNumber)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// nextInSeries computes the next number for a series given the numbers
// already present in the table. Series start at 1 and never reuse values.
func nextInSeries(existing []string, isUnban bool) int {
	max := 0
	for _, bn := range existing {
		if n, ok := seriesValue(bn, isUnban); ok && n > max {
			max = n
		}
	}
	return max + 1
}

// formatNumber renders a series value. %04d keeps zero padding up to 9999
// and degrades to the unpadded value beyond that.
func formatNumber(n int, isUnban bool) string {
	if isUnban {
		return fmt.Sprintf("%s%0*d", unbanPrefix, numberPadding, n)
	}
	return fmt.Sprintf("%0*d", numberPadding, n)
}

// fallbackNumber builds a timestamp-derived identifier for degraded mode.
// Uniqueness is not guaranteed; callers log the degradation.
func fallbackNumber(now time.Time, isUnban bool) string {
	if isUnban {
		return fmt.Sprintf("%s%s%d", unbanPrefix, fallbackMarker, now.Unix())
	}
	return fmt.Sprintf("%s%d", fallbackMarker, now.Unix())
}

// IsFallbackNumber reports whether a ban number came from the degraded
// numbering path.
func IsFallbackNumber(banNumber string) bool {
	return strings.HasPrefix(strings.TrimPrefix(banNumber, unbanPrefix), fallbackMarker)
}
