package registry

import (
	"github.com/aretw0/scopetrace/pkg/adapters/jsonl"
	"github.com/aretw0/scopetrace/pkg/adapters/memory"
	"github.com/aretw0/scopetrace/pkg/adapters/redis"
	"github.com/aretw0/scopetrace/pkg/adapters/saif"
	"github.com/aretw0/scopetrace/pkg/adapters/vcd"
	"github.com/aretw0/scopetrace/pkg/adapters/wavepack"
	"github.com/aretw0/scopetrace/pkg/domain"
	"github.com/aretw0/scopetrace/pkg/ports"
)

// Default returns a registry holding every built-in format.
// Memory traces land in store; a nil store gets a fresh one.
func Default(store *memory.Store) *Registry {
	if store == nil {
		store = memory.NewStore()
	}
	r := NewRegistry()

	r.Register("vcd", func(opts map[string]any) (ports.Sink, error) {
		var o vcd.Options
		if err := DecodeOptions(opts, &o); err != nil {
			return nil, err
		}
		return vcd.New(o)
	}, ".vcd")

	r.Register("saif", func(opts map[string]any) (ports.Sink, error) {
		var o saif.Options
		if err := DecodeOptions(opts, &o); err != nil {
			return nil, err
		}
		return saif.New(o)
	}, ".saif")

	r.Register("jsonl", func(opts map[string]any) (ports.Sink, error) {
		var o jsonl.Options
		if err := DecodeOptions(opts, &o); err != nil {
			return nil, err
		}
		return jsonl.New(o)
	}, ".jsonl", ".ndjson")

	r.Register("wavepack", func(opts map[string]any) (ports.Sink, error) {
		var o wavepack.Options
		if err := DecodeOptions(opts, &o); err != nil {
			return nil, err
		}
		return wavepack.New(o)
	}, ".wpk")

	r.Register("redis", func(opts map[string]any) (ports.Sink, error) {
		var o redis.Options
		if err := DecodeOptions(opts, &o); err != nil {
			return nil, err
		}
		return redis.FromOptions(o)
	})

	r.Register("memory", func(opts map[string]any) (ports.Sink, error) {
		var o struct {
			Policy string `mapstructure:"policy"`
		}
		if err := DecodeOptions(opts, &o); err != nil {
			return nil, err
		}
		var mopts []memory.Option
		if o.Policy != "" {
			p, err := domain.ParsePolicy(o.Policy)
			if err != nil {
				return nil, err
			}
			mopts = append(mopts, memory.WithPolicy(p))
		}
		return memory.NewSink(store, mopts...), nil
	})

	return r
}
