package content

import (
	"slices"
	"strings"

	"github.com/inful/mdfp"
)

// Fingerprint returns the canonical content hash of a source file.
//
// Metadata is serialized as sorted `key: value` lines joined with LF and no
// trailing newline, so the hash does not depend on line endings or the key
// order of the original block. A file without metadata hashes its body only.
func Fingerprint(metadata map[string]string, body string) string {
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+": "+metadata[k])
	}
	return mdfp.CalculateFingerprintFromParts(strings.Join(lines, "\n"), body)
}
