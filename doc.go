/*
Package scopetrace is a selective hierarchical signal tracer for simulated models.

A model exposes a tree of named scopes and signals ("top.t.cyc"). The host chooses which
part of the tree to record with dumpvars directives, then dumps the enabled signals once per
simulated time step into a waveform sink (VCD, SAIF, JSONL, wavepack, Redis or memory).

# Concept

Selection is hierarchical: Dumpvars(depth, path) enables the longest registered node on a
segment boundary of path and every node up to depth levels below it (0 means the whole
subtree). Directives accumulate; the selection is frozen when the header is declared by the
first Dump. If no directive was issued by then, everything is traced.

The engine never formats bytes. Each sink decides, through its dump policy, whether records
whose value did not change since the previous dump are encoded.

# Usage

	tr := scopetrace.New(scopetrace.WithLogger(logger))
	if err := tr.Trace(model); err != nil {
		log.Fatal(err)
	}
	_, _ = tr.Dumpvars(99, "t")
	_, _ = tr.Dumpvars(1, "top.t.cyc")

	if err := tr.Open("simx.vcd"); err != nil {
		log.Fatal(err)
	}
	for ts := uint64(0); ts <= 20; ts++ {
		_ = model.Step(ts)
		if err := tr.Dump(ts); err != nil {
			break
		}
	}
	if err := tr.Close(); err != nil {
		log.Fatal(err)
	}
*/
package scopetrace
