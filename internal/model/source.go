package model

import "strings"

// Source identifies the protocol subsystem a record originates from.
type Source string

const (
	SourceM17     Source = "M17"
	SourceDMR     Source = "DMR"
	SourceP25     Source = "P25"
	SourceYSF     Source = "YSF"
	SourceUnknown Source = "unknown"
)

// Placeholder is displayed for any field the feed did not provide.
const Placeholder = "-"

// ParseSource maps a feed label onto a known source, case-insensitively.
// Labels outside the four protocols yield SourceUnknown.
func ParseSource(raw string) Source {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "M17":
		return SourceM17
	case "DMR":
		return SourceDMR
	case "P25":
		return SourceP25
	case "YSF":
		return SourceYSF
	default:
		return SourceUnknown
	}
}

// Priority ranks sources for tie-breaking; higher sorts first.
func (s Source) Priority() int {
	switch ParseSource(string(s)) {
	case SourceYSF:
		return 4
	case SourceP25:
		return 3
	case SourceDMR:
		return 2
	case SourceM17:
		return 1
	default:
		return 0
	}
}

// Known reports whether s names one of the four protocol subsystems.
func (s Source) Known() bool {
	return ParseSource(string(s)) != SourceUnknown
}
