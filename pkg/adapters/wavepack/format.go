// Package wavepack writes and reads a compact msgpack trace format: one header
// message followed by one frame per dump time.
package wavepack

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aretw0/scopetrace/pkg/domain"
	"github.com/vmihailenco/msgpack/v5"
)

// Magic identifies a wavepack stream.
const Magic = "WPK1"

// ErrBadMagic is returned when a stream does not start with a wavepack header.
var ErrBadMagic = errors.New("not a wavepack stream")

// Signal is a header declaration. Slot is the position used by frame entries.
type Signal struct {
	Slot  uint32 `msgpack:"s"`
	Path  string `msgpack:"p"`
	Width uint16 `msgpack:"w"`
}

// Header is the first message of a stream.
type Header struct {
	Magic     string   `msgpack:"magic"`
	Timescale string   `msgpack:"ts"`
	Version   string   `msgpack:"v"`
	Date      int64    `msgpack:"d"` // unix nanoseconds
	Signals   []Signal `msgpack:"sig"`
}

// Time returns the header date.
func (h Header) Time() time.Time {
	return time.Unix(0, h.Date).UTC()
}

// Entry is one signal value inside a frame.
type Entry struct {
	Slot  uint32   `msgpack:"s"`
	Words []uint64 `msgpack:"w"`
}

// Frame holds every encoded record of one dump time.
type Frame struct {
	Time    uint64  `msgpack:"t"`
	Entries []Entry `msgpack:"e"`
}

// Reader decodes a wavepack stream.
type Reader struct {
	dec    *msgpack.Decoder
	header Header
}

// NewReader reads the header from r.
func NewReader(r io.Reader) (*Reader, error) {
	dec := msgpack.NewDecoder(r)
	var h Header
	if err := dec.Decode(&h); err != nil {
		return nil, fmt.Errorf("wavepack header: %w", err)
	}
	if h.Magic != Magic {
		return nil, ErrBadMagic
	}
	return &Reader{dec: dec, header: h}, nil
}

// Header returns the decoded header.
func (r *Reader) Header() Header {
	return r.header
}

// Next returns the next frame, or io.EOF at the end of the stream.
func (r *Reader) Next() (Frame, error) {
	var f Frame
	if err := r.dec.Decode(&f); err != nil {
		return Frame{}, err
	}
	return f, nil
}

// Value rebuilds the value of an entry using the header width.
func (r *Reader) Value(e Entry) (domain.Value, error) {
	if int(e.Slot) >= len(r.header.Signals) {
		return domain.Value{}, fmt.Errorf("wavepack: slot %d out of range", e.Slot)
	}
	return domain.FromWords(int(r.header.Signals[e.Slot].Width), e.Words), nil
}

// ReadAll decodes a whole file.
func ReadAll(path string) (Header, []Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, nil, err
	}
	defer f.Close()

	r, err := NewReader(f)
	if err != nil {
		return Header{}, nil, err
	}
	var frames []Frame
	for {
		fr, err := r.Next()
		if errors.Is(err, io.EOF) {
			return r.Header(), frames, nil
		}
		if err != nil {
			return r.Header(), frames, err
		}
		frames = append(frames, fr)
	}
}
