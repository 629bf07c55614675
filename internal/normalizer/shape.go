package normalizer

import "github.com/dvdash/dashboard/internal/feed"

// Shape tags which accepted schema a list domain arrived in.
type Shape int

const (
	// ShapeAbsent means the message did not touch the domain.
	ShapeAbsent Shape = iota
	// ShapeEmpty means the domain was touched without any rows in either schema.
	ShapeEmpty
	ShapeCombined
	ShapeLegacy
)

func (s Shape) String() string {
	switch s {
	case ShapeEmpty:
		return "empty"
	case ShapeCombined:
		return "combined"
	case ShapeLegacy:
		return "legacy"
	default:
		return "absent"
	}
}

type clientsTalking struct {
	shape    Shape
	combined []feed.CombinedClient
	legacy   map[string]feed.LegacyClient
}

type lastHeard struct {
	shape    Shape
	combined []feed.CombinedLastHeard
	legacy   []feed.LegacyLastHeard
}

type peers struct {
	shape    Shape
	combined []feed.CombinedPeer
	legacy   []feed.LegacyPeer
}

// resolve applies the precedence combined list > legacy shape > empty. A
// domain counts as touched when the combined object or its legacy key is
// present, unless one of its keys was rejected and nothing usable remains.
func resolve(combinedPresent, legacyPresent, combinedObject, rejected bool) Shape {
	switch {
	case combinedPresent:
		return ShapeCombined
	case legacyPresent:
		return ShapeLegacy
	case rejected:
		return ShapeAbsent
	case combinedObject:
		return ShapeEmpty
	default:
		return ShapeAbsent
	}
}

func classifyClients(s *feed.Snapshot) clientsTalking {
	var out clientsTalking
	combinedObject := s.Combined != nil
	combinedPresent := combinedObject && s.Combined.ClientsTalking != nil
	out.shape = resolve(combinedPresent, s.Clients != nil, combinedObject,
		s.Rejected(feed.KeyCombinedClients) || s.Rejected(feed.KeyClients))
	switch out.shape {
	case ShapeCombined:
		out.combined = *s.Combined.ClientsTalking
	case ShapeLegacy:
		out.legacy = s.Clients
	}
	return out
}

func classifyLastHeard(s *feed.Snapshot) lastHeard {
	var out lastHeard
	combinedObject := s.Combined != nil
	combinedPresent := combinedObject && s.Combined.LastHeard != nil
	out.shape = resolve(combinedPresent, s.LastHeard != nil, combinedObject,
		s.Rejected(feed.KeyCombinedLastHeard) || s.Rejected(feed.KeyLastHeard))
	switch out.shape {
	case ShapeCombined:
		out.combined = *s.Combined.LastHeard
	case ShapeLegacy:
		out.legacy = *s.LastHeard
	}
	return out
}

func classifyPeers(s *feed.Snapshot) peers {
	var out peers
	combinedObject := s.Combined != nil
	combinedPresent := combinedObject && s.Combined.Peers != nil
	out.shape = resolve(combinedPresent, s.Peers != nil, combinedObject,
		s.Rejected(feed.KeyCombinedPeers) || s.Rejected(feed.KeyPeers))
	switch out.shape {
	case ShapeCombined:
		out.combined = *s.Combined.Peers
	case ShapeLegacy:
		out.legacy = *s.Peers
	}
	return out
}
