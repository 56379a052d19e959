package domain

import (
	"fmt"
	"strings"
	"time"
)

// DumpPolicy decides which of the records offered by the engine a sink encodes.
type DumpPolicy uint8

const (
	// PolicyDelta encodes a record only when the signal changed since the last dump.
	PolicyDelta DumpPolicy = iota + 1
	// PolicyFull encodes every enabled signal at every dump.
	PolicyFull
)

// String returns the string representation of DumpPolicy.
func (p DumpPolicy) String() string {
	switch p {
	case PolicyDelta:
		return "delta"
	case PolicyFull:
		return "full"
	default:
		return "unknown"
	}
}

// ParsePolicy converts a string to a DumpPolicy.
func ParsePolicy(s string) (DumpPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "delta", "change", "changes":
		return PolicyDelta, nil
	case "full", "all":
		return PolicyFull, nil
	default:
		return PolicyDelta, fmt.Errorf("invalid dump policy: %q (expected: delta|full)", s)
	}
}

// Admit reports whether a sink with this policy should encode rec.
func (p DumpPolicy) Admit(rec TraceRecord) bool {
	return p == PolicyFull || rec.Changed
}

// TraceRecord is one (time, signal, value) triple offered to a sink.
// Records are streamed; the engine keeps no history of them.
type TraceRecord struct {
	Time  uint64
	Path  string
	Index int // pre-order index of the signal, stable for the whole run
	Value Value

	// Changed is true when Value differs from the value offered at the previous dump,
	// and always true at the first dump.
	Changed bool
}

// SignalDecl declares one traced signal in a Header.
type SignalDecl struct {
	Path  string `json:"path" msgpack:"path"`
	Scope string `json:"scope" msgpack:"scope"`
	Name  string `json:"name" msgpack:"name"`
	Width int    `json:"width" msgpack:"width"`
	Index int    `json:"index" msgpack:"index"`
}

// DeclFromNode builds the declaration of a signal node.
func DeclFromNode(n *ScopeNode) SignalDecl {
	return SignalDecl{
		Path:  n.Path,
		Scope: n.ScopePath(),
		Name:  n.Name,
		Width: n.Width,
		Index: n.Index,
	}
}

// Header is what a sink receives before the first record: the traced subset of the
// scope tree in pre-order plus file-level metadata.
type Header struct {
	Timescale string
	Version   string
	Date      time.Time
	Signals   []SignalDecl
}
