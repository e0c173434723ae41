// Package defs embeds the form definitions that ship with formguard.  They
// load first, so files in the configured form directories may override any
// of them by reusing its ID.
package defs

import "embed"

// FS holds every “*.yaml” definition in this directory.
//
//go:embed *.yaml
var FS embed.FS
