// Package policy holds the static punishment matrix: offense category to
// strike level to sanction. The table is read-only for the process lifetime.
package policy

import "sort"

// Distinguished menu entries that are not real offense categories.
const (
	OffenseCustom            = "Custom Punishment"
	OffenseUnbanKeepStrike   = "UNBAN (Strike Remains)"
	OffenseUnbanRemoveStrike = "UNBAN (Remove Strike)"
)

// Sanction is either a fixed punishment or a set of selectable durations the
// moderator must pick from.
type Sanction struct {
	Fixed   string
	Options []string
}

// HasOptions reports whether the moderator still has to choose a duration.
func (s Sanction) HasOptions() bool { return len(s.Options) > 0 }

func fixed(v string) Sanction     { return Sanction{Fixed: v} }
func choice(v ...string) Sanction { return Sanction{Options: v} }

// Table maps offense name -> strike level -> sanction.
type Table struct {
	offenses map[string]map[string]Sanction
	strikes  []string
}

// IsUnbanOffense reports whether the menu entry diverts into the unban flow.
func IsUnbanOffense(offense string) bool {
	return offense == OffenseUnbanKeepStrike || offense == OffenseUnbanRemoveStrike
}

// Offenses lists the real offense categories alphabetically, with Custom
// Punishment first. The workflow appends the unban pseudo-offenses itself.
func (t *Table) Offenses() []string {
	names := make([]string, 0, len(t.offenses))
	for name := range t.offenses {
		if name == OffenseCustom {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return append([]string{OffenseCustom}, names...)
}

// Strikes returns the strike levels defined for an offense, in order.
func (t *Table) Strikes(offense string) []string {
	levels, ok := t.offenses[offense]
	if !ok {
		return nil
	}
	var out []string
	for _, s := range t.strikes {
		if _, defined := levels[s]; defined {
			out = append(out, s)
		}
	}
	return out
}

// Sanction resolves one offense/strike combination.
func (t *Table) Sanction(offense, strike string) (Sanction, bool) {
	levels, ok := t.offenses[offense]
	if !ok {
		return Sanction{}, false
	}
	s, ok := levels[strike]
	return s, ok
}

// Known reports whether offense is a real category in the table.
func (t *Table) Known(offense string) bool {
	_, ok := t.offenses[offense]
	return ok && offense != OffenseCustom
}

// Default returns the server's punishment matrix.
func Default() *Table {
	return &Table{
		strikes: []string{"Strike 1", "Strike 2", "Strike 3", "Strike 4"},
		offenses: map[string]map[string]Sanction{
			OffenseCustom: {},
			"Team Killing": {
				"Strike 1": choice("3 Day Ban", "4 Day Ban", "5 Day Ban", "6 Day Ban", "7 Day Ban"),
				"Strike 2": fixed("1 Month Ban"),
				"Strike 3": fixed("1 Year Ban"),
				"Strike 4": fixed("Permanent Ban"),
			},
			"Prohibited Messages & Links (Severe)": {
				"Strike 1": fixed("3 Month Ban"),
				"Strike 2": fixed("1 Year Ban"),
				"Strike 3": fixed("Permanent Ban"),
				"Strike 4": fixed("Permanent Ban"),
			},
			"Prohibited Messages & Links (Minor)": {
				"Strike 1": fixed("3 Day Ban"),
				"Strike 2": fixed("1 Month Ban"),
				"Strike 3": fixed("1 Year Ban"),
				"Strike 4": fixed("Permanent Ban"),
			},
			"Exploiting": {
				"Strike 1": choice("3 Month Ban", "6 Month Ban"),
				"Strike 2": choice("6 Month Ban", "7 Month Ban", "8 Month Ban", "9 Month Ban",
					"10 Month Ban", "11 Month Ban", "12 Month Ban"),
				"Strike 3": choice("1 Year Ban", "2 Year Ban"),
				"Strike 4": fixed("Permanent Ban"),
			},
			"Cheating": {
				"Strike 1": fixed("Permanent Ban"),
				"Strike 2": fixed("Permanent Ban"),
				"Strike 3": fixed("Permanent Ban"),
				"Strike 4": fixed("Permanent Ban"),
			},
			"Damaging Team Vehicles": {
				"Strike 1": choice("3 Day Ban", "4 Day Ban", "5 Day Ban", "6 Day Ban", "7 Day Ban"),
				"Strike 2": fixed("1 Month Ban"),
				"Strike 3": fixed("1 Year Ban"),
				"Strike 4": fixed("Permanent Ban"),
			},
			"Air to Air Ramming / Air to Enemy": {
				"Strike 1": choice("3 Day Ban", "4 Day Ban", "5 Day Ban", "6 Day Ban", "7 Day Ban"),
				"Strike 2": fixed("1 Month Ban"),
				"Strike 3": fixed("1 Year Ban"),
				"Strike 4": fixed("Permanent Ban"),
			},
			"Trolling / Griefing / Minging": {
				"Strike 1": choice("3 Day Ban", "4 Day Ban", "5 Day Ban", "6 Day Ban", "7 Day Ban"),
				"Strike 2": fixed("1 Month Ban"),
				"Strike 3": fixed("1 Year Ban"),
				"Strike 4": fixed("Permanent Ban"),
			},
			"Spawncamping with LOS": {
				"Strike 1": choice("3 Day Ban", "4 Day Ban", "5 Day Ban", "6 Day Ban", "7 Day Ban"),
				"Strike 2": fixed("1 Month Ban"),
				"Strike 3": fixed("1 Year Ban"),
				"Strike 4": fixed("Permanent Ban"),
			},
			"Spawncamping without LOS": {
				"Strike 1": choice("2 Day Ban", "3 Day Ban", "4 Day Ban", "5 Day Ban"),
				"Strike 2": fixed("1 Month Ban"),
				"Strike 3": fixed("1 Year Ban"),
				"Strike 4": fixed("Permanent Ban"),
			},
			"Abusing spawnprotection": {
				"Strike 1": choice("2 Day Ban", "3 Day Ban", "4 Day Ban", "5 Day Ban"),
				"Strike 2": fixed("1 Month Ban"),
				"Strike 3": fixed("1 Year Ban"),
				"Strike 4": fixed("Permanent Ban"),
			},
			"Stream-Sniping": {
				"Strike 1": fixed("3 Day Ban"),
				"Strike 2": fixed("3 Week Ban"),
				"Strike 3": fixed("3 Month Ban"),
				"Strike 4": fixed("Permanent Ban"),
			},
			"Ghosting": {
				"Strike 1": fixed("3 Day Ban"),
				"Strike 2": fixed("3 Week Ban"),
				"Strike 3": fixed("3 Month Ban"),
				"Strike 4": fixed("Permanent Ban"),
			},
			"Going AFK": {
				"Strike 1": fixed("Kick from Server"),
				"Strike 2": fixed("Kick from Server"),
				"Strike 3": fixed("Kick from Server"),
				"Strike 4": fixed("Kick from Server"),
			},
			"Ban Evading": {
				"Strike 1": fixed("Permanent Ban"),
				"Strike 2": fixed("Permanent Ban"),
				"Strike 3": fixed("Permanent Ban"),
				"Strike 4": fixed("Permanent Ban"),
			},
		},
	}
}
