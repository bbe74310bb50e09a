package capsule

import _ "embed"

// Version is the release of the capsule module.
//
//go:embed VERSION
var Version string
