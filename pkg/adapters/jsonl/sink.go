// Package jsonl writes traces as newline-delimited JSON: one header line, then one
// line per encoded record.
package jsonl

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/scopetrace/pkg/domain"
	"github.com/aretw0/scopetrace/pkg/ports"
)

// Line kinds.
const (
	KindHeader = "header"
	KindRecord = "record"
)

// Options configures a JSONL sink.
type Options struct {
	Policy string `mapstructure:"policy"`
	// Radix selects the value encoding: "bin" (default) or "hex".
	Radix string `mapstructure:"radix"`
}

// Header is the first line of a trace.
type Header struct {
	Kind      string              `json:"kind"`
	Timescale string              `json:"timescale"`
	Version   string              `json:"version,omitempty"`
	Date      time.Time           `json:"date"`
	Signals   []domain.SignalDecl `json:"signals"`
}

// Record is one value line.
type Record struct {
	Kind    string `json:"kind"`
	Time    uint64 `json:"t"`
	Path    string `json:"path"`
	Width   int    `json:"width"`
	Value   string `json:"value"`
	Changed bool   `json:"changed"`
}

// Sink writes one NDJSON trace.
type Sink struct {
	policy domain.DumpPolicy
	hex    bool

	file *os.File
	w    *bufio.Writer
	enc  *json.Encoder
}

var _ ports.Sink = (*Sink)(nil)
var _ ports.Flusher = (*Sink)(nil)

// New creates a JSONL sink.
func New(opts Options) (*Sink, error) {
	policy := domain.PolicyDelta
	if opts.Policy != "" {
		p, err := domain.ParsePolicy(opts.Policy)
		if err != nil {
			return nil, err
		}
		policy = p
	}
	s := &Sink{policy: policy}
	switch opts.Radix {
	case "", "bin", "binary":
	case "hex":
		s.hex = true
	default:
		return nil, fmt.Errorf("jsonl: unknown radix %q (expected bin|hex)", opts.Radix)
	}
	return s, nil
}

// Policy implements ports.Sink.
func (s *Sink) Policy() domain.DumpPolicy {
	return s.policy
}

// Open implements ports.Sink.
func (s *Sink) Open(path string) error {
	if s.file != nil {
		return errors.New("jsonl sink already open")
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
	s.enc = json.NewEncoder(s.w)
	return nil
}

// WriteHeader implements ports.Sink.
func (s *Sink) WriteHeader(h domain.Header) error {
	if s.enc == nil {
		return errors.New("jsonl sink is not open")
	}
	signals := h.Signals
	if signals == nil {
		signals = []domain.SignalDecl{}
	}
	return s.enc.Encode(Header{
		Kind:      KindHeader,
		Timescale: h.Timescale,
		Version:   h.Version,
		Date:      h.Date,
		Signals:   signals,
	})
}

// WriteRecord implements ports.Sink.
func (s *Sink) WriteRecord(rec domain.TraceRecord) error {
	if s.enc == nil {
		return errors.New("jsonl sink is not open")
	}
	if !s.policy.Admit(rec) {
		return nil
	}
	value := rec.Value.Binary()
	if s.hex {
		value = rec.Value.Hex()
	}
	return s.enc.Encode(Record{
		Kind:    KindRecord,
		Time:    rec.Time,
		Path:    rec.Path,
		Width:   rec.Value.Width(),
		Value:   value,
		Changed: rec.Changed,
	})
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
		return errors.New("jsonl sink is not open")
	}
	flushErr := s.w.Flush()
	closeErr := s.file.Close()
	s.file, s.w, s.enc = nil, nil, nil
	return errors.Join(flushErr, closeErr)
}

// Trace is a decoded JSONL trace.
type Trace struct {
	Header  Header
	Records []Record
}

// Times returns the distinct record timestamps in order.
func (t *Trace) Times() []uint64 {
	var out []uint64
	for _, r := range t.Records {
		if len(out) == 0 || out[len(out)-1] != r.Time {
			out = append(out, r.Time)
		}
	}
	return out
}

// ReadFile decodes the trace at path.
func ReadFile(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Read decodes a trace stream.
func Read(r io.Reader) (*Trace, error) {
	dec := json.NewDecoder(r)
	tr := &Trace{}
	if err := dec.Decode(&tr.Header); err != nil {
		return nil, fmt.Errorf("jsonl: header: %w", err)
	}
	if tr.Header.Kind != KindHeader {
		return nil, fmt.Errorf("jsonl: first line is %q, want %q", tr.Header.Kind, KindHeader)
	}
	for {
		var rec Record
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return tr, nil
		}
		if err != nil {
			return nil, fmt.Errorf("jsonl: record %d: %w", len(tr.Records), err)
		}
		tr.Records = append(tr.Records, rec)
	}
}
