package criteria

import _ "embed"

//go:embed criteria.json
var embedded []byte

// Load parses and validates the embedded reference dataset.
func Load() (*Set, error) {
	return parse(embedded)
}
