package player

import "strings"

// ExportFileName returns the suggested export name for an original file
// name: the last extension is replaced by "_edited.wav". A name that would
// become empty, such as ".wav", is kept whole.
func ExportFileName(original string) string {
	base := original
	if i := strings.LastIndex(original, "."); i >= 0 {
		base = original[:i]
	}
	if base == "" {
		base = original
	}
	return base + ExportSuffix + ExportExtension
}
