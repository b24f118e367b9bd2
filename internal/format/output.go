package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Names lists the supported output formats.
var Names = []string{"json", "edn"}

// Valid reports whether name is a supported format ("" means json).
func Valid(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return true
	}
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}

// Write encodes v in the named format followed by a newline.
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "edn":
		return WriteEDN(w, v, pretty)
	default:
		return fmt.Errorf("unknown format %q (want %s)", format, strings.Join(Names, " or "))
	}
}

// WriteJSON writes strict JSON. Extra information for callers belongs in a
// "meta" object next to "data", never in free text.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
