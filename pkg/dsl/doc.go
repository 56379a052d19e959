/*
Package dsl provides a fluent Go API for declaring scope hierarchies.

It is the programmatic counterpart of a model's registration walk: tests, examples and
embedders describe scopes and signals directly in Go and get back either a scope tree or a
static model whose values they set by hand.

Example usage:

	b := dsl.New()

	top := b.Scope("top").Signal("clk", 1)
	t := top.Scope("t").Signal("cyc", 32)
	t.Scope("sub1a").Signal("x", 8)
	t.Scope("sub1b").Scope("y").Signal("z", 16)

	model := b.Model()
	model.Set("top.t.cyc", domain.FromUint64(32, 7))

	tracer := scopetrace.New(scopetrace.WithSink(sink))
	_ = tracer.Trace(model)
*/
package dsl
