package scopetrace_test

import (
	"fmt"
	"log"

	"github.com/aretw0/scopetrace"
	"github.com/aretw0/scopetrace/pkg/adapters/memory"
	"github.com/aretw0/scopetrace/pkg/model"
)

// ExampleTracer_Dumpvars traces two subtrees of the reference counter into memory.
func ExampleTracer_Dumpvars() {
	store := memory.NewStore()
	tr := scopetrace.New(scopetrace.WithSink(memory.NewSink(store)))

	counter := model.NewCounter(32)
	if err := tr.Trace(counter); err != nil {
		log.Fatal(err)
	}

	for _, d := range []struct {
		depth int
		path  string
	}{{99, "t"}, {1, "top.t.cyc"}, {1, "top.t.sub1a"}, {2, "top.t.sub1b"}} {
		o, err := tr.Dumpvars(d.depth, d.path)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%-16s miss=%v added=%d\n", o.Directive, o.Miss, o.Added)
	}

	if err := tr.Open("simx"); err != nil {
		log.Fatal(err)
	}
	for ts := uint64(0); ts <= 20; ts++ {
		if err := counter.Step(ts); err != nil {
			log.Fatal(err)
		}
		if err := tr.Dump(ts); err != nil {
			log.Fatal(err)
		}
		counter.SetClock(!counter.Clock())
	}
	if err := tr.Close(); err != nil {
		log.Fatal(err)
	}

	trace, _ := store.Get("simx")
	for _, s := range trace.Header.Signals {
		fmt.Println(s.Path, s.Width)
	}
	fmt.Println("timestamps:", len(trace.Times()))
	// Output:
	// 99:t             miss=true added=0
	// 1:top.t.cyc      miss=false added=1
	// 1:top.t.sub1a    miss=false added=2
	// 2:top.t.sub1b    miss=false added=3
	// top.t.cyc 32
	// top.t.sub1a.x 8
	// top.t.sub1b.y.z 16
	// timestamps: 11
}
