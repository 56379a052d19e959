package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Directive asks the tracer to enable every node at or below Path that lies at most
// Depth levels below it. Depth 0 means unlimited. An empty Path addresses the root.
type Directive struct {
	Depth int    `json:"depth" yaml:"depth" toml:"depth" mapstructure:"depth"`
	Path  string `json:"path" yaml:"path" toml:"path" mapstructure:"path"`
}

// NewDirective builds a validated directive.
func NewDirective(depth int, path string) (Directive, error) {
	d := Directive{Depth: depth, Path: strings.TrimSpace(path)}
	if err := d.Validate(); err != nil {
		return Directive{}, err
	}
	return d, nil
}

// Validate rejects directives that can never be applied.
func (d Directive) Validate() error {
	if d.Depth < 0 {
		return fmt.Errorf("%w: negative depth %d for %q", ErrInvalidDirective, d.Depth, d.Path)
	}
	return nil
}

// Unlimited reports whether the directive enables a whole subtree.
func (d Directive) Unlimited() bool {
	return d.Depth == UnlimitedDepth
}

// String renders the directive in its textual "depth:path" form.
func (d Directive) String() string {
	return fmt.Sprintf("%d:%s", d.Depth, d.Path)
}

// ParseDirective parses the textual form "depth:path" ("99:t", "0:", "1:top.t.cyc").
// A bare path without a depth is read as "0:path".
func ParseDirective(s string) (Directive, error) {
	s = strings.TrimSpace(s)
	depthPart, path, found := strings.Cut(s, ":")
	if !found {
		return NewDirective(UnlimitedDepth, s)
	}
	depth, err := strconv.Atoi(strings.TrimSpace(depthPart))
	if err != nil {
		return Directive{}, fmt.Errorf("%w: bad depth in %q: %v", ErrInvalidDirective, s, err)
	}
	return NewDirective(depth, path)
}

// Program is the ordered list of directives issued for a run.
// Replaying the same program against the same tree always yields the same selection.
type Program []Directive

// ParseProgram parses a list of textual directives, keeping their order.
func ParseProgram(specs []string) (Program, error) {
	prog := make(Program, 0, len(specs))
	for _, text := range specs {
		d, err := ParseDirective(text)
		if err != nil {
			return nil, err
		}
		prog = append(prog, d)
	}
	return prog, nil
}

// Strings returns the textual form of every directive.
func (p Program) Strings() []string {
	out := make([]string, len(p))
	for i, d := range p {
		out[i] = d.String()
	}
	return out
}

func (p Program) String() string {
	return strings.Join(p.Strings(), " ")
}
