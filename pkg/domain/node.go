package domain

import (
	"fmt"
	"strings"
)

// Kind tells scopes (containers) apart from signals (traced leaves).
type Kind uint8

const (
	// KindScope is a hierarchy container such as a module or block instance.
	KindScope Kind = iota + 1
	// KindSignal is a leaf holding a value that changes over simulated time.
	KindSignal
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindScope:
		return "scope"
	case KindSignal:
		return "signal"
	default:
		return "unknown"
	}
}

// MarshalText renders k as "scope" or "signal".
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses the form written by MarshalText.
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "scope":
		*k = KindScope
	case "signal":
		*k = KindSignal
	default:
		return fmt.Errorf("unknown node kind %q", b)
	}
	return nil
}

// ScopeNode represents one entry of the scope tree.
// Nodes are created by the registration pass and never change afterwards.
type ScopeNode struct {
	Path string `json:"path" yaml:"path"`
	Name string `json:"name" yaml:"name"`
	Kind Kind   `json:"kind" yaml:"kind"`

	// Width is the number of bits of a signal. Zero for scopes.
	Width int `json:"width,omitempty" yaml:"width,omitempty"`

	// Depth is the distance from the implicit root (root = 0, "top" = 1).
	Depth int `json:"depth" yaml:"depth"`

	// Index is the pre-order position of the node in its tree (root = 0).
	// It gives every consumer the same deterministic root-to-leaf order.
	Index int `json:"index" yaml:"index"`

	Parent   *ScopeNode   `json:"-" yaml:"-"`
	Children []*ScopeNode `json:"-" yaml:"-"`
}

// IsSignal reports whether the node is a traced leaf.
func (n *ScopeNode) IsSignal() bool {
	return n.Kind == KindSignal
}

// IsRoot reports whether the node is the implicit root of its tree.
func (n *ScopeNode) IsRoot() bool {
	return n.Parent == nil
}

// ScopePath returns the path of the enclosing scope.
func (n *ScopeNode) ScopePath() string {
	if n.Parent == nil {
		return RootPath
	}
	return n.Parent.Path
}

func (n *ScopeNode) String() string {
	if n.Kind == KindSignal {
		return fmt.Sprintf("%s[%d]", n.Path, n.Width)
	}
	return n.Path
}

// JoinPath appends a segment to a parent path.
func JoinPath(parent, name string) string {
	if parent == RootPath {
		return name
	}
	return parent + PathSeparator + name
}

// SplitPath returns the parent path and the last segment of path.
func SplitPath(path string) (parent, name string) {
	i := strings.LastIndex(path, PathSeparator)
	if i < 0 {
		return RootPath, path
	}
	return path[:i], path[i+1:]
}

// Segments splits path into its hierarchy segments. The root path has none.
func Segments(path string) []string {
	if path == RootPath {
		return nil
	}
	return strings.Split(path, PathSeparator)
}

// HasSegmentPrefix reports whether prefix names path itself or one of its ancestors.
// Matching only happens on segment boundaries: "t" is not a prefix of "top".
func HasSegmentPrefix(path, prefix string) bool {
	if prefix == RootPath {
		return true
	}
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+PathSeparator)
}

// ValidatePath checks that path is a well-formed, non-root registration path.
func ValidatePath(path string) error {
	if path == RootPath {
		return fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	for _, seg := range strings.Split(path, PathSeparator) {
		if seg == "" {
			return fmt.Errorf("%w: %q has an empty segment", ErrInvalidPath, path)
		}
		if strings.ContainsAny(seg, " \t\r\n") {
			return fmt.Errorf("%w: %q contains whitespace", ErrInvalidPath, path)
		}
	}
	return nil
}
