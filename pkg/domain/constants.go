package domain

const (
	// PathSeparator separates hierarchy segments in a path ("top.t.cyc").
	PathSeparator = "."

	// RootPath addresses the implicit root of every scope tree.
	RootPath = ""

	// UnlimitedDepth is the directive depth that enables a whole subtree.
	UnlimitedDepth = 0

	// DefaultTimescale is declared in headers when the host does not pick one.
	DefaultTimescale = "1ps"
)
