// Package schemas embeds the JSON Schemas for API and CLI payloads.
package schemas

import "embed"

// FS holds every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS
