package feed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"unicode/utf8"
)

var (
	ErrEmptyMessage    = errors.New("empty message")
	ErrNotObject       = errors.New("message is not a JSON object")
	ErrInvalidEncoding = errors.New("message is not valid UTF-8")
)

// Top-level and combined keys a message may carry. A key whose value has the
// wrong JSON type is reported by Snapshot.Rejected and left nil.
const (
	KeyCombined          = "combined"
	KeyCombinedClients   = "combined.clients_talking"
	KeyCombinedLastHeard = "combined.last_heard"
	KeyCombinedPeers     = "combined.peers"
	KeyClients           = "clients"
	KeyLastHeard         = "last_heard"
	KeyPeers             = "peers"
	KeyMMDVM             = "mmdvm"
	KeyP25               = "p25"
	KeyYSF               = "ysf"
)

// Decode parses one feed message. Any error means the message is malformed
// and must be dropped without touching the display.
func Decode(data []byte) (*Snapshot, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmptyMessage
	}
	if trimmed[0] != '{' {
		return nil, ErrNotObject
	}
	if !utf8.Valid(trimmed) {
		return nil, ErrInvalidEncoding
	}
	var snap Snapshot
	if err := json.Unmarshal(trimmed, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// UnmarshalJSON decodes each domain on its own, so one key of the wrong type
// drops only that domain. The message as a whole must still be a JSON object.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*s = Snapshot{UptimeSeconds: parseUptime(fields["uptime_seconds"])}

	if clients := decodeField[map[string]LegacyClient](s, fields[KeyClients], KeyClients); clients != nil {
		s.Clients = *clients
	}
	s.LastHeard = decodeField[[]LegacyLastHeard](s, fields[KeyLastHeard], KeyLastHeard)
	s.Peers = decodeField[[]LegacyPeer](s, fields[KeyPeers], KeyPeers)
	s.MMDVM = decodeField[MMDVM](s, fields[KeyMMDVM], KeyMMDVM)
	s.P25 = decodeField[P25](s, fields[KeyP25], KeyP25)
	s.YSF = decodeField[YSF](s, fields[KeyYSF], KeyYSF)

	combined := decodeField[map[string]json.RawMessage](s, fields[KeyCombined], KeyCombined)
	if combined == nil {
		if s.Rejected(KeyCombined) {
			s.rejected = append(s.rejected, KeyCombinedClients, KeyCombinedLastHeard, KeyCombinedPeers)
		}
		return nil
	}
	s.Combined = &Combined{
		ClientsTalking: decodeField[[]CombinedClient](s, (*combined)["clients_talking"], KeyCombinedClients),
		LastHeard:      decodeField[[]CombinedLastHeard](s, (*combined)["last_heard"], KeyCombinedLastHeard),
		Peers:          decodeField[[]CombinedPeer](s, (*combined)["peers"], KeyCombinedPeers),
	}
	return nil
}

// Rejected reports whether key was present with a value of the wrong type.
func (s *Snapshot) Rejected(key string) bool {
	return slices.Contains(s.rejected, key)
}

// RejectedKeys lists the keys dropped while decoding, in decode order.
func (s *Snapshot) RejectedKeys() []string {
	return s.rejected
}

// decodeField decodes raw into a fresh T. Absent keys and null give nil; a
// type mismatch gives nil and marks key rejected.
func decodeField[T any](s *Snapshot, raw json.RawMessage, key string) *T {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	value := new(T)
	if err := json.Unmarshal(raw, value); err != nil {
		s.rejected = append(s.rejected, key)
		return nil
	}
	return value
}

// parseUptime accepts only JSON numbers; strings, booleans and null are not
// corrections.
func parseUptime(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	if c := raw[0]; c != '-' && (c < '0' || c > '9') {
		return nil
	}
	value, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return nil
	}
	return &value
}

// Text is a display field that tolerates whatever JSON type the producer sent.
// Numbers keep their literal form, null decodes to the empty string.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*t = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case data[0] == '{' || data[0] == '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return err
		}
		*t = Text(buf.String())
	default:
		*t = Text(data)
	}
	return nil
}

// Or returns the text, or fallback when the field was absent or empty.
func (t Text) Or(fallback string) string {
	if t == "" {
		return fallback
	}
	return string(t)
}

// Present reports whether the producer supplied a non-empty value.
func (t Text) Present() bool {
	return t != ""
}
