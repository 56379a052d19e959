package scopetrace

import _ "embed"

// Version is the release of the library, declared in trace headers.
//
//go:embed VERSION
var Version string
