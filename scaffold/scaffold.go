// Package scaffold embeds the file templates used by "inkwell new"
// to bootstrap a fresh site directory.
package scaffold

import "embed"

//go:embed all:templates
var Templates embed.FS
