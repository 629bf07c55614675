// Package talkers orders and classifies the clients-talking records.
//
// Everything here is a pure function of its input. Start times are compared
// as raw strings: the feed formats them as "Mon DD HH:MM:SS", so the order is
// only an approximation of recency and breaks across month boundaries. That
// behavior is kept on purpose until the feed switches to a sortable format.
package talkers

import (
	"sort"
	"strings"

	"github.com/dvdash/dashboard/internal/model"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// IsTalking reports whether status is one of the talking values, ignoring case.
func IsTalking(status string) bool {
	switch strings.ToLower(status) {
	case "talking", "on", "tx on":
		return true
	default:
		return false
	}
}

// Count returns the number of talking records.
func Count(records []model.ClientTalkingRecord) int {
	n := 0
	for _, r := range records {
		if IsTalking(r.Status) {
			n++
		}
	}
	return n
}

// Sort returns a sorted copy of records. The input slice is not modified and
// a nil input yields nil.
func Sort(records []model.ClientTalkingRecord) []model.ClientTalkingRecord {
	if records == nil {
		return nil
	}
	out := make([]model.ClientTalkingRecord, len(records))
	copy(out, records)

	col := collate.New(language.Und)
	sort.SliceStable(out, func(i, j int) bool {
		return compare(col, out[i], out[j]) < 0
	})
	return out
}

func compare(col *collate.Collator, a, b model.ClientTalkingRecord) int {
	if at, bt := IsTalking(a.Status), IsTalking(b.Status); at != bt {
		if at {
			return -1
		}
		return 1
	}
	if c := strings.Compare(b.StartTime, a.StartTime); c != 0 {
		return c
	}
	if ap, bp := a.Source.Priority(), b.Source.Priority(); ap != bp {
		if ap > bp {
			return -1
		}
		return 1
	}
	return col.CompareString(a.Callsign, b.Callsign)
}
