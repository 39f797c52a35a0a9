package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter writes data as JSON, indented two spaces unless Compact.
// HTML characters are left unescaped so URLs such as company_logo print
// as stored.
type JSONFormatter struct {
	Compact bool
}

func (f *JSONFormatter) Format(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if !f.Compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(data)
}
