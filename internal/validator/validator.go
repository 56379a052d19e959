// Package validator checks a directive program against a scope tree before a run.
package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/scopetrace/internal/scopetree"
	"github.com/aretw0/scopetrace/internal/selection"
	"github.com/aretw0/scopetrace/pkg/domain"
)

// Kind classifies a finding.
type Kind string

const (
	// KindMiss is a directive that resolves to nothing.
	KindMiss Kind = "miss"
	// KindPartial is a directive resolved to an ancestor of the requested path.
	KindPartial Kind = "partial"
	// KindRedundant is a directive that enabled nothing new.
	KindRedundant Kind = "redundant"
)

// Finding is one remark about one directive.
type Finding struct {
	Index     int              `json:"index"`
	Directive domain.Directive `json:"directive"`
	Kind      Kind             `json:"kind"`
	Message   string           `json:"message"`
}

// Report is the result of validating a program.
type Report struct {
	Findings []Finding
	Enabled  []string
	Signals  int
}

// ValidateProgram replays program against tree and reports every directive that
// did not do what its path suggests.
func ValidateProgram(tree *scopetree.Tree, program domain.Program) (*Report, error) {
	set := selection.New(tree)
	outcomes, err := set.Replay(program)
	if err != nil {
		return nil, err
	}

	r := &Report{
		Enabled: set.Paths(),
		Signals: len(set.Signals()),
	}
	for i, o := range outcomes {
		switch {
		case o.Miss:
			r.Findings = append(r.Findings, Finding{
				Index: i, Directive: o.Directive, Kind: KindMiss,
				Message: fmt.Sprintf("'%s' matches no scope or signal", o.Directive.Path),
			})
		case o.Partial:
			r.Findings = append(r.Findings, Finding{
				Index: i, Directive: o.Directive, Kind: KindPartial,
				Message: fmt.Sprintf("'%s' is not registered, resolved to '%s'", o.Directive.Path, o.Target),
			})
		case o.Added == 0:
			r.Findings = append(r.Findings, Finding{
				Index: i, Directive: o.Directive, Kind: KindRedundant,
				Message: "enables nothing that earlier directives did not",
			})
		}
	}
	return r, nil
}

// Count returns the number of findings of kind k.
func (r *Report) Count(k Kind) int {
	n := 0
	for _, f := range r.Findings {
		if f.Kind == k {
			n++
		}
	}
	return n
}

// Err returns an error listing the misses and partial matches. Redundant
// directives only fail in strict mode.
func (r *Report) Err(strict bool) error {
	var errors []string
	for _, f := range r.Findings {
		if f.Kind == KindRedundant && !strict {
			continue
		}
		errors = append(errors, fmt.Sprintf("#%d %s (%s): %s", f.Index, f.Directive, f.Kind, f.Message))
	}
	if len(errors) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
	}
	return nil
}
