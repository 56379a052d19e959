// Package vcd writes Value Change Dump traces (IEEE 1364 section 18).
package vcd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/scopetrace/pkg/domain"
	"github.com/aretw0/scopetrace/pkg/ports"
)

// Options configures a VCD sink.
type Options struct {
	// Policy is delta by default; VCD is a change format.
	Policy string `mapstructure:"policy"`
	// ScopeType is the keyword used in $scope declarations (default "module").
	ScopeType string `mapstructure:"scope_type"`
}

// Sink writes one VCD file.
type Sink struct {
	policy    domain.DumpPolicy
	scopeType string

	file    *os.File
	w       *bufio.Writer
	path    string
	ids     map[int]string // signal index -> identifier code
	hasTime bool
	time    uint64
}

var _ ports.Sink = (*Sink)(nil)
var _ ports.Flusher = (*Sink)(nil)

// New creates a VCD sink.
func New(opts Options) (*Sink, error) {
	policy := domain.PolicyDelta
	if opts.Policy != "" {
		p, err := domain.ParsePolicy(opts.Policy)
		if err != nil {
			return nil, err
		}
		policy = p
	}
	scopeType := opts.ScopeType
	if scopeType == "" {
		scopeType = "module"
	}
	return &Sink{policy: policy, scopeType: scopeType}, nil
}

// Policy implements ports.Sink.
func (s *Sink) Policy() domain.DumpPolicy {
	return s.policy
}

// Open implements ports.Sink.
func (s *Sink) Open(path string) error {
	if s.file != nil {
		return errors.New("vcd sink already open")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	s.file = f
	s.w = bufio.NewWriter(f)
	s.path = path
	s.hasTime = false
	return nil
}

// WriteHeader implements ports.Sink.
func (s *Sink) WriteHeader(h domain.Header) error {
	if s.w == nil {
		return errors.New("vcd sink is not open")
	}
	fmt.Fprintf(s.w, "$date\n\t%s\n$end\n", h.Date.Format("Mon Jan 2 15:04:05 2006"))
	if h.Version != "" {
		fmt.Fprintf(s.w, "$version\n\t%s\n$end\n", h.Version)
	}
	fmt.Fprintf(s.w, "$timescale %s $end\n", h.Timescale)

	s.ids = make(map[int]string, len(h.Signals))
	var open []string
	for i, sig := range h.Signals {
		want := domain.Segments(sig.Scope)
		common := 0
		for common < len(open) && common < len(want) && open[common] == want[common] {
			common++
		}
		for range open[common:] {
			fmt.Fprintln(s.w, "$upscope $end")
		}
		for _, name := range want[common:] {
			fmt.Fprintf(s.w, "$scope %s %s $end\n", s.scopeType, name)
		}
		open = want

		id := IdentifierCode(i)
		s.ids[sig.Index] = id
		if sig.Width == 1 {
			fmt.Fprintf(s.w, "$var wire 1 %s %s $end\n", id, sig.Name)
		} else {
			fmt.Fprintf(s.w, "$var wire %d %s %s [%d:0] $end\n", sig.Width, id, sig.Name, sig.Width-1)
		}
	}
	for range open {
		fmt.Fprintln(s.w, "$upscope $end")
	}
	_, err := fmt.Fprintln(s.w, "$enddefinitions $end")
	return err
}

// WriteRecord implements ports.Sink.
func (s *Sink) WriteRecord(rec domain.TraceRecord) error {
	if s.w == nil {
		return errors.New("vcd sink is not open")
	}
	if !s.policy.Admit(rec) {
		return nil
	}
	id, ok := s.ids[rec.Index]
	if !ok {
		return fmt.Errorf("vcd: signal %s was not declared", rec.Path)
	}
	if !s.hasTime || rec.Time != s.time {
		if _, err := fmt.Fprintf(s.w, "#%d\n", rec.Time); err != nil {
			return err
		}
		s.hasTime = true
		s.time = rec.Time
	}
	_, err := s.w.WriteString(FormatValue(rec.Value, id))
	return err
}

// Flush implements ports.Flusher.
func (s *Sink) Flush() error {
	if s.w == nil {
		return nil
	}
	return s.w.Flush()
}

// Close implements ports.Sink.
func (s *Sink) Close() error {
	if s.file == nil {
		return errors.New("vcd sink is not open")
	}
	flushErr := s.w.Flush()
	closeErr := s.file.Close()
	s.file, s.w = nil, nil
	return errors.Join(flushErr, closeErr)
}

// IdentifierCode returns the short printable identifier of the n-th declared signal.
func IdentifierCode(n int) string {
	const first, radix = '!', 94
	var b strings.Builder
	for {
		b.WriteByte(byte(first + n%radix))
		n /= radix
		if n == 0 {
			return b.String()
		}
	}
}

// FormatValue renders one value change line.
func FormatValue(v domain.Value, id string) string {
	if v.Width() == 1 {
		if v.Bit(0) {
			return "1" + id + "\n"
		}
		return "0" + id + "\n"
	}
	bits := strings.TrimLeft(v.Binary(), "0")
	if bits == "" {
		bits = "0"
	}
	return "b" + bits + " " + id + "\n"
}
