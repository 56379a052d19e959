package saif

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// Activity is the switching activity of one net bit.
type Activity struct {
	T0 uint64
	T1 uint64
	TC uint64
}

// Summary is the decoded content of a SAIF file written by this package.
type Summary struct {
	Dumps    int
	First    uint64
	Last     uint64
	Duration uint64
	// Nets is keyed by dotted instance path plus net name, e.g. "top.t.cnt[3]".
	Nets map[string]Activity
}

// ReadFile decodes the SAIF file at path.
func ReadFile(path string) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Read decodes a SAIF stream.
func Read(r io.Reader) (*Summary, error) {
	br := bufio.NewReader(r)
	sum := &Summary{Nets: make(map[string]Activity)}

	first, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("saif: %w", err)
	}
	first = strings.TrimSpace(first)
	if _, err := fmt.Sscanf(first, "// dumps %d first %d last %d", &sum.Dumps, &sum.First, &sum.Last); err != nil {
		return nil, fmt.Errorf("saif: bad leading comment %q: %w", first, err)
	}

	rest, err := io.ReadAll(br)
	if err != nil {
		return nil, err
	}
	tokens := tokenize(string(rest))

	var instances []string
	var stack []string // open list heads
	var netName string
	var act Activity
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch tok {
		case "(":
			if i+1 >= len(tokens) {
				return nil, fmt.Errorf("saif: unexpected end of file")
			}
			i++
			head := tokens[i]
			stack = append(stack, head)
			switch head {
			case "INSTANCE":
				if i+1 < len(tokens) {
					i++
					instances = append(instances, tokens[i])
				}
			case "DURATION", "T0", "T1", "TC":
				if i+1 >= len(tokens) {
					return nil, fmt.Errorf("saif: %s without value", head)
				}
				i++
				n, err := strconv.ParseUint(tokens[i], 10, 64)
				if err != nil {
					return nil, fmt.Errorf("saif: %s: %w", head, err)
				}
				switch head {
				case "DURATION":
					sum.Duration = n
				case "T0":
					act.T0 = n
				case "T1":
					act.T1 = n
				case "TC":
					act.TC = n
				}
			default:
				if len(stack) >= 2 && stack[len(stack)-2] == "NET" {
					netName = strings.NewReplacer(`\[`, "[", `\]`, "]").Replace(head)
					act = Activity{}
				}
			}
		case ")":
			if len(stack) == 0 {
				return nil, fmt.Errorf("saif: unbalanced parenthesis")
			}
			head := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			switch {
			case head == "INSTANCE":
				instances = instances[:len(instances)-1]
			case len(stack) > 0 && stack[len(stack)-1] == "NET" && head == netNameHead(netName):
				key := strings.Join(append(append([]string(nil), instances...), netName), ".")
				sum.Nets[key] = act
			}
		}
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("saif: unbalanced parenthesis")
	}
	return sum, nil
}

// netNameHead maps a decoded net name back to its escaped list head.
func netNameHead(name string) string {
	return strings.NewReplacer("[", `\[`, "]", `\]`).Replace(name)
}

func tokenize(s string) []string {
	var out []string
	var cur strings.Builder
	inString := false
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case inString:
			cur.WriteRune(r)
			if r == '"' {
				inString = false
				flush()
			}
		case r == '"':
			flush()
			inString = true
			cur.WriteRune(r)
		case r == '(' || r == ')':
			flush()
			out = append(out, string(r))
		case unicode.IsSpace(r):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}
