package ledger

import (
	"testing"
	"time"
)

func TestNextInSeriesStartsAtOne(t *testing.T) {
	if got := nextInSeries(nil, false); got != 1 {
		t.Fatalf("empty regular series: got %d, want 1", got)
	}
	if got := nextInSeries(nil, true); got != 1 {
		t.Fatalf("empty unban series: got %d, want 1", got)
	}
}

func TestNextInSeriesIgnoresOtherSeries(t *testing.T) {
	existing := []string{"0001", "0002", "UNBAN-0009"}
	if got := nextInSeries(existing, false); got != 3 {
		t.Fatalf("regular series: got %d, want 3", got)
	}
	if got := nextInSeries(existing, true); got != 10 {
		t.Fatalf("unban series: got %d, want 10", got)
	}
}

func TestNextInSeriesIgnoresFallbackNumbers(t *testing.T) {
	existing := []string{"0004", "TS-1712345678", "UNBAN-TS-1712345678"}
	if got := nextInSeries(existing, false); got != 5 {
		t.Fatalf("regular series: got %d, want 5", got)
	}
	if got := nextInSeries(existing, true); got != 1 {
		t.Fatalf("unban series: got %d, want 1", got)
	}
}

func TestNextInSeriesTakesMaxNotCount(t *testing.T) {
	// Deletions leave gaps; numbers must never be reused.
	existing := []string{"0001", "0042"}
	if got := nextInSeries(existing, false); got != 43 {
		t.Fatalf("got %d, want 43", got)
	}
}

func TestFormatNumberPadding(t *testing.T) {
	cases := []struct {
		n       int
		isUnban bool
		want    string
	}{
		{1, false, "0001"},
		{42, false, "0042"},
		{9999, false, "9999"},
		{12345, false, "12345"},
		{7, true, "UNBAN-0007"},
		{10001, true, "UNBAN-10001"},
	}
	for _, c := range cases {
		if got := formatNumber(c.n, c.isUnban); got != c.want {
			t.Errorf("formatNumber(%d, %v) = %q, want %q", c.n, c.isUnban, got, c.want)
		}
	}
}

func TestFallbackNumberIsDetectable(t *testing.T) {
	now := time.Unix(1712345678, 0)

	reg := fallbackNumber(now, false)
	if reg != "TS-1712345678" {
		t.Fatalf("regular fallback: got %q", reg)
	}
	if !IsFallbackNumber(reg) {
		t.Fatalf("regular fallback %q not detected", reg)
	}

	unban := fallbackNumber(now, true)
	if unban != "UNBAN-TS-1712345678" {
		t.Fatalf("unban fallback: got %q", unban)
	}
	if !IsFallbackNumber(unban) {
		t.Fatalf("unban fallback %q not detected", unban)
	}

	if IsFallbackNumber("0042") || IsFallbackNumber("UNBAN-0042") {
		t.Fatal("sequence numbers misdetected as fallback")
	}
}

func TestCountsTowardStrikes(t *testing.T) {
	cases := []struct {
		name string
		rec  BanRecord
		want bool
	}{
		{"regular strike", BanRecord{Strike: "Strike 1"}, true},
		{"custom", BanRecord{Strike: StrikeCustom}, false},
		{"unban record", BanRecord{Strike: StrikeUnban, IsUnban: true}, false},
		{"removed strike", BanRecord{Strike: "Strike 2", StrikeRemoved: true}, false},
	}
	for _, c := range cases {
		if got := c.rec.CountsTowardStrikes(); got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}
