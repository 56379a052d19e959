package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/scopetrace/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

// Params are the tunables shared by the reference models.
type Params struct {
	Width  int `mapstructure:"width" yaml:"width" toml:"width"`
	Length int `mapstructure:"length" yaml:"length" toml:"length"`
}

var kinds = map[string]func(p Params) ports.Model{
	"counter": func(p Params) ports.Model {
		return NewCounter(p.Width)
	},
	"shiftchain": func(p Params) ports.Model {
		return NewShiftChain(p.Length)
	},
}

// Kinds lists the model kinds accepted by New.
func Kinds() []string {
	out := make([]string, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New builds a reference model by kind from a raw parameter map.
func New(kind string, params map[string]any) (ports.Model, error) {
	fn, ok := kinds[strings.ToLower(kind)]
	if !ok {
		return nil, fmt.Errorf("unknown model kind %q (known: %s)", kind, strings.Join(Kinds(), ", "))
	}
	var p Params
	if err := mapstructure.WeakDecode(params, &p); err != nil {
		return nil, fmt.Errorf("invalid %s params: %w", kind, err)
	}
	return fn(p), nil
}
