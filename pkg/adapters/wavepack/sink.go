package wavepack

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
	"github.com/aretw0/scopetrace/pkg/domain"
	"github.com/aretw0/scopetrace/pkg/ports"
	"github.com/vmihailenco/msgpack/v5"
)

// Options configures a wavepack sink.
type Options struct {
	Policy string `mapstructure:"policy"`
}

// Sink writes one wavepack file. Records of a dump are held until the next
// time arrives so a frame is never written half way.
type Sink struct {
	policy domain.DumpPolicy

	file    *os.File
	w       *bufio.Writer
	enc     *msgpack.Encoder
	slots   map[int]uint32
	pending *Frame
	frames  int
}

var _ ports.Sink = (*Sink)(nil)
var _ ports.Flusher = (*Sink)(nil)

// New creates a wavepack sink.
func New(opts Options) (*Sink, error) {
	policy := domain.PolicyDelta
	if opts.Policy != "" {
		p, err := domain.ParsePolicy(opts.Policy)
		if err != nil {
			return nil, err
		}
		policy = p
	}
	return &Sink{policy: policy}, nil
}

// Policy implements ports.Sink.
func (s *Sink) Policy() domain.DumpPolicy {
	return s.policy
}

// Frames returns the number of frames written so far.
func (s *Sink) Frames() int {
	return s.frames
}

// Open implements ports.Sink.
func (s *Sink) Open(path string) error {
	if s.file != nil {
		return errors.New("wavepack sink already open")
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
	s.enc = msgpack.NewEncoder(s.w)
	s.pending = nil
	s.frames = 0
	return nil
}

// WriteHeader implements ports.Sink.
func (s *Sink) WriteHeader(h domain.Header) error {
	if s.enc == nil {
		return errors.New("wavepack sink is not open")
	}
	out := Header{
		Magic:     Magic,
		Timescale: h.Timescale,
		Version:   h.Version,
		Date:      h.Date.UnixNano(),
		Signals:   make([]Signal, len(h.Signals)),
	}
	s.slots = make(map[int]uint32, len(h.Signals))
	for i, sig := range h.Signals {
		slot, err := safecast.Conv[uint32](i)
		if err != nil {
			return fmt.Errorf("wavepack: too many signals: %w", err)
		}
		width, err := safecast.Conv[uint16](sig.Width)
		if err != nil {
			return fmt.Errorf("wavepack: signal %s is too wide: %w", sig.Path, err)
		}
		out.Signals[i] = Signal{Slot: slot, Path: sig.Path, Width: width}
		s.slots[sig.Index] = slot
	}
	return s.enc.Encode(out)
}

// WriteRecord implements ports.Sink.
func (s *Sink) WriteRecord(rec domain.TraceRecord) error {
	if s.enc == nil {
		return errors.New("wavepack sink is not open")
	}
	if !s.policy.Admit(rec) {
		return nil
	}
	slot, ok := s.slots[rec.Index]
	if !ok {
		return fmt.Errorf("wavepack: signal %s was not declared", rec.Path)
	}
	if s.pending != nil && s.pending.Time != rec.Time {
		if err := s.emit(); err != nil {
			return err
		}
	}
	if s.pending == nil {
		s.pending = &Frame{Time: rec.Time}
	}
	s.pending.Entries = append(s.pending.Entries, Entry{Slot: slot, Words: rec.Value.Words()})
	return nil
}

func (s *Sink) emit() error {
	if s.pending == nil {
		return nil
	}
	err := s.enc.Encode(s.pending)
	s.pending = nil
	if err == nil {
		s.frames++
	}
	return err
}

// Flush implements ports.Flusher. A frame still collecting records is not flushed.
func (s *Sink) Flush() error {
	if s.w == nil {
		return nil
	}
	return s.w.Flush()
}

// Close implements ports.Sink.
func (s *Sink) Close() error {
	if s.file == nil {
		return errors.New("wavepack sink is not open")
	}
	emitErr := s.emit()
	flushErr := s.w.Flush()
	closeErr := s.file.Close()
	s.file, s.w, s.enc = nil, nil, nil
	return errors.Join(emitErr, flushErr, closeErr)
}
