// Package extract pulls structured results out of the free-form text the
// planning tools print. Everything here is marker-based line scanning:
// unrecognized lines are ignored so additive output changes across tool
// versions do not break extraction.
package extract

import (
	"strconv"
	"strings"

	"pddlkit/tool"
)

// Snapshot maps statistic names to the values a run reported. A key is
// present only when the tool printed the corresponding marker line; absent
// means unreported, never zero.
type Snapshot map[string]float64

// Clone returns an independent copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Statistics scans text against the profile's statistic marker table. The
// first matching line per statistic wins; the tools repeat progress lines
// across search phases and the marker patterns are written to match only the
// final aggregate form. A matched line whose number fails to parse is
// skipped for that statistic, leaving the snapshot partial rather than
// absent.
func Statistics(text string, markers []tool.StatMarker) Snapshot {
	snap := make(Snapshot)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(logPrefixRe.ReplaceAllString(strings.TrimSpace(line), ""))
		for i := range markers {
			m := &markers[i]
			if _, ok := snap[m.Name]; ok {
				continue
			}
			re, err := m.Regexp()
			if err != nil {
				continue
			}
			match := re.FindStringSubmatch(line)
			if match == nil || len(match) < 2 {
				continue
			}
			v, err := strconv.ParseFloat(match[1], 64)
			if err != nil {
				continue
			}
			snap[m.Name] = v
		}
	}
	return snap
}
