// Package saif writes Switching Activity Interchange Format files: per-bit time spent
// at 0 and 1 plus toggle counts over the traced window.
package saif

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/scopetrace/pkg/domain"
	"github.com/aretw0/scopetrace/pkg/ports"
)

// Options configures a SAIF sink.
type Options struct {
	// Policy defaults to full: activity is accumulated per dump.
	Policy string `mapstructure:"policy"`
	// Design is written in the (DESIGN) field.
	Design string `mapstructure:"design"`
}

type bitStat struct {
	value bool
	since uint64
	t0    uint64
	t1    uint64
	tc    uint64
}

type net struct {
	decl domain.SignalDecl
	bits []bitStat
	seen bool
}

type instance struct {
	name     string
	nets     []*net
	children []*instance
}

// Sink accumulates switching activity and writes the whole file at Close.
type Sink struct {
	policy domain.DumpPolicy
	design string

	file   *os.File
	header domain.Header
	root   *instance
	nets   map[int]*net
	first  uint64
	last   uint64
	dumps  int
}

var _ ports.Sink = (*Sink)(nil)

// New creates a SAIF sink.
func New(opts Options) (*Sink, error) {
	policy := domain.PolicyFull
	if opts.Policy != "" {
		p, err := domain.ParsePolicy(opts.Policy)
		if err != nil {
			return nil, err
		}
		policy = p
	}
	return &Sink{policy: policy, design: opts.Design}, nil
}

// Policy implements ports.Sink.
func (s *Sink) Policy() domain.DumpPolicy {
	return s.policy
}

// Open implements ports.Sink.
func (s *Sink) Open(path string) error {
	if s.file != nil {
		return errors.New("saif sink already open")
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
	s.root = &instance{}
	s.nets = make(map[int]*net)
	s.dumps = 0
	return nil
}

// WriteHeader implements ports.Sink.
func (s *Sink) WriteHeader(h domain.Header) error {
	if s.file == nil {
		return errors.New("saif sink is not open")
	}
	s.header = h
	index := map[string]*instance{domain.RootPath: s.root}
	for _, decl := range h.Signals {
		inst := s.instanceFor(index, decl.Scope)
		n := &net{decl: decl, bits: make([]bitStat, decl.Width)}
		inst.nets = append(inst.nets, n)
		s.nets[decl.Index] = n
	}
	return nil
}

func (s *Sink) instanceFor(index map[string]*instance, scope string) *instance {
	if inst, ok := index[scope]; ok {
		return inst
	}
	parentPath, name := domain.SplitPath(scope)
	parent := s.instanceFor(index, parentPath)
	inst := &instance{name: name}
	parent.children = append(parent.children, inst)
	index[scope] = inst
	return inst
}

// WriteRecord implements ports.Sink.
func (s *Sink) WriteRecord(rec domain.TraceRecord) error {
	if s.file == nil {
		return errors.New("saif sink is not open")
	}
	n, ok := s.nets[rec.Index]
	if !ok {
		return fmt.Errorf("saif: signal %s was not declared", rec.Path)
	}
	// every offered time is a dump, even when the policy drops its records
	if s.dumps == 0 || rec.Time != s.last {
		if s.dumps == 0 {
			s.first = rec.Time
		}
		s.last = rec.Time
		s.dumps++
	}
	if !s.policy.Admit(rec) {
		return nil
	}

	for i := range n.bits {
		b := &n.bits[i]
		v := rec.Value.Bit(i)
		if !n.seen {
			b.value, b.since = v, rec.Time
			continue
		}
		if v == b.value {
			continue
		}
		b.accumulate(rec.Time)
		b.value = v
		b.tc++
	}
	n.seen = true
	return nil
}

func (b *bitStat) accumulate(until uint64) {
	if b.value {
		b.t1 += until - b.since
	} else {
		b.t0 += until - b.since
	}
	b.since = until
}

// Close implements ports.Sink. It writes the whole file.
func (s *Sink) Close() error {
	if s.file == nil {
		return errors.New("saif sink is not open")
	}
	for _, n := range s.nets {
		if !n.seen {
			continue
		}
		for i := range n.bits {
			n.bits[i].accumulate(s.last)
		}
	}

	w := bufio.NewWriter(s.file)
	s.encode(w)
	flushErr := w.Flush()
	closeErr := s.file.Close()
	s.file = nil
	return errors.Join(flushErr, closeErr)
}

func (s *Sink) encode(w io.Writer) {
	var duration uint64
	if s.dumps > 0 {
		duration = s.last - s.first
	}

	fmt.Fprintf(w, "// dumps %d first %d last %d\n", s.dumps, s.first, s.last)
	fmt.Fprintln(w, "(SAIFILE")
	fmt.Fprintln(w, "(SAIFVERSION \"2.0\")")
	fmt.Fprintln(w, "(DIRECTION \"backward\")")
	fmt.Fprintf(w, "(DESIGN \"%s\")\n", s.design)
	if !s.header.Date.IsZero() {
		fmt.Fprintf(w, "(DATE \"%s\")\n", s.header.Date.Format("Mon Jan 2 15:04:05 2006"))
	}
	fmt.Fprintln(w, "(VENDOR \"scopetrace\")")
	fmt.Fprintln(w, "(PROGRAM_NAME \"scopetrace\")")
	fmt.Fprintf(w, "(VERSION \"%s\")\n", s.header.Version)
	fmt.Fprintln(w, "(DIVIDER / )")
	fmt.Fprintf(w, "(TIMESCALE %s)\n", Timescale(s.header.Timescale))
	fmt.Fprintf(w, "(DURATION %d)\n", duration)
	for _, child := range s.root.children {
		writeInstance(w, child, 1)
	}
	for _, n := range s.root.nets {
		// signals registered directly under the root have no instance to live in
		writeNets(w, []*net{n}, 1)
	}
	fmt.Fprintln(w, ")")
}

func writeInstance(w io.Writer, inst *instance, level int) {
	pad := strings.Repeat("  ", level)
	fmt.Fprintf(w, "%s(INSTANCE %s\n", pad, inst.name)
	if len(inst.nets) > 0 {
		writeNets(w, inst.nets, level+1)
	}
	for _, child := range inst.children {
		writeInstance(w, child, level+1)
	}
	fmt.Fprintf(w, "%s)\n", pad)
}

func writeNets(w io.Writer, nets []*net, level int) {
	pad := strings.Repeat("  ", level)
	fmt.Fprintf(w, "%s(NET\n", pad)
	for _, n := range nets {
		for i, b := range n.bits {
			name := n.decl.Name
			if n.decl.Width > 1 {
				name = fmt.Sprintf("%s\\[%d\\]", name, i)
			}
			fmt.Fprintf(w, "%s  (%s\n", pad, name)
			fmt.Fprintf(w, "%s    (T0 %d) (T1 %d) (TX 0)\n", pad, b.t0, b.t1)
			fmt.Fprintf(w, "%s    (TC %d) (IG 0)\n", pad, b.tc)
			fmt.Fprintf(w, "%s  )\n", pad)
		}
	}
	fmt.Fprintf(w, "%s)\n", pad)
}

// Timescale renders "1ps" as the SAIF form "1 ps".
func Timescale(ts string) string {
	ts = strings.TrimSpace(ts)
	i := strings.IndexFunc(ts, func(r rune) bool { return r < '0' || r > '9' })
	if i <= 0 {
		return ts
	}
	return ts[:i] + " " + strings.TrimSpace(ts[i:])
}
