// Package configs provides the embedded configuration template for mizan.
//
// The template is embedded at build time with go:embed so it ships with
// every distribution. `mizan init` writes it to the working directory as
// a starting point; internal/config fills defaults for anything removed
// from it.
package configs

import _ "embed"

// ConfigTemplate is the annotated example configuration written by
// `mizan init`.
//
//go:embed config.example.yaml
var ConfigTemplate string
