package vcd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/aretw0/scopetrace/pkg/domain"
)

// Var is one $var declaration.
type Var struct {
	ID    string
	Scope string
	Name  string
	Width int
}

// Path returns the dotted path of the variable.
func (v Var) Path() string {
	return domain.JoinPath(v.Scope, v.Name)
}

// Change is one value change of a variable.
type Change struct {
	Time  uint64
	ID    string
	Value string // binary digits, MSB first
}

// Trace is the decoded content of a VCD file. Only the subset this package writes is understood.
type Trace struct {
	Timescale string
	Vars      []Var
	Times     []uint64
	Changes   []Change
}

// ReadFile decodes the VCD file at path.
func ReadFile(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Read decodes a VCD stream.
func Read(r io.Reader) (*Trace, error) {
	tr := &Trace{}
	var scopes []string
	var now uint64
	inDefs := true

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)

		if inDefs {
			switch fields[0] {
			case "$timescale":
				if len(fields) >= 2 {
					tr.Timescale = fields[1]
				}
			case "$scope":
				if len(fields) < 3 {
					return nil, fmt.Errorf("vcd line %d: malformed $scope", lineNo)
				}
				scopes = append(scopes, fields[2])
			case "$upscope":
				if len(scopes) == 0 {
					return nil, fmt.Errorf("vcd line %d: $upscope without $scope", lineNo)
				}
				scopes = scopes[:len(scopes)-1]
			case "$var":
				if len(fields) < 5 {
					return nil, fmt.Errorf("vcd line %d: malformed $var", lineNo)
				}
				width, err := strconv.Atoi(fields[2])
				if err != nil {
					return nil, fmt.Errorf("vcd line %d: bad width: %w", lineNo, err)
				}
				tr.Vars = append(tr.Vars, Var{
					ID:    fields[3],
					Scope: strings.Join(scopes, domain.PathSeparator),
					Name:  fields[4],
					Width: width,
				})
			case "$enddefinitions":
				inDefs = false
			}
			continue
		}

		switch line[0] {
		case '#':
			t, err := strconv.ParseUint(line[1:], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("vcd line %d: bad timestamp: %w", lineNo, err)
			}
			if len(tr.Times) > 0 && t <= now {
				return nil, fmt.Errorf("vcd line %d: timestamp %d is not after %d", lineNo, t, now)
			}
			now = t
			tr.Times = append(tr.Times, t)
		case 'b', 'B':
			if len(fields) != 2 {
				return nil, fmt.Errorf("vcd line %d: malformed vector change", lineNo)
			}
			tr.Changes = append(tr.Changes, Change{Time: now, ID: fields[1], Value: fields[0][1:]})
		case '0', '1', 'x', 'X', 'z', 'Z':
			tr.Changes = append(tr.Changes, Change{Time: now, ID: line[1:], Value: line[:1]})
		case '$':
			// $dumpvars / $end blocks carry no information of their own
		default:
			return nil, fmt.Errorf("vcd line %d: unexpected %q", lineNo, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if inDefs {
		return nil, fmt.Errorf("vcd: missing $enddefinitions")
	}
	return tr, nil
}

// Lookup returns the variable with the given identifier code.
func (t *Trace) Lookup(id string) (Var, bool) {
	for _, v := range t.Vars {
		if v.ID == id {
			return v, true
		}
	}
	return Var{}, false
}
