package domain

import (
	"errors"
	"testing"
)

func TestParseDirective(t *testing.T) {
	tests := []struct {
		in      string
		want    Directive
		wantErr bool
	}{
		{in: "99:t", want: Directive{Depth: 99, Path: "t"}},
		{in: "1:top.t.cyc", want: Directive{Depth: 1, Path: "top.t.cyc"}},
		{in: "0:", want: Directive{Depth: 0, Path: ""}},
		{in: " 2 : top.t.sub1b ", want: Directive{Depth: 2, Path: "top.t.sub1b"}},
		{in: "top.t", want: Directive{Depth: 0, Path: "top.t"}},
		{in: "x:top", wantErr: true},
		{in: "-1:top", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDirective(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDirective) {
					t.Fatalf("ParseDirective(%q) error = %v, want ErrInvalidDirective", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDirective(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseDirective(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestProgram_RoundTrip(t *testing.T) {
	specs := []string{"99:t", "1:top.t.cyc", "1:top.t.sub1a", "2:top.t.sub1b"}
	prog, err := ParseProgram(specs)
	if err != nil {
		t.Fatalf("ParseProgram failed: %v", err)
	}
	got := prog.Strings()
	for i := range specs {
		if got[i] != specs[i] {
			t.Errorf("Strings()[%d] = %q, want %q", i, got[i], specs[i])
		}
	}
}
