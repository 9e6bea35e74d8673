// Package configfile reads and edits the MCP sections of provider config
// files. Four encodings are handled: plain JSON, JSON with comments
// (JSONC), YAML, and TOML.
//
// Edits are single-entry merges: [Write] replaces or inserts one named
// entry inside a keyed section and leaves everything else alone. JSONC and
// YAML edits go through a syntax tree so comments survive; TOML is decoded
// and re-encoded, which drops comments. Every write is atomic and keeps the
// file's permission bits.
package configfile
