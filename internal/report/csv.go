package report

import (
	"bytes"
	"io"
	"strings"
)

const CSVContentType = "text/csv;charset=utf-8"

// WriteCSV writes the header line unquoted, then every data field wrapped
// in double quotes with inner quotes doubled. Lines are separated by "\n"
// with no trailing newline, so N rows give N+1 lines.
//
// encoding/csv only quotes fields that need it, which changes the bytes
// downstream spreadsheets were built against.
func WriteCSV(w io.Writer, t Table) error {
	if _, err := io.WriteString(w, strings.Join(t.Headers, ",")); err != nil {
		return err
	}
	for _, row := range t.Rows {
		var b strings.Builder
		b.WriteByte('\n')
		for i, f := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(f, `"`, `""`))
			b.WriteByte('"')
		}
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

func CSV(t Table) []byte {
	var buf bytes.Buffer
	_ = WriteCSV(&buf, t)
	return buf.Bytes()
}
