package budget

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// recordWriter builds one JSONL record with a fixed field order: the record
// kind first, then the fields of the embedded values. Its zero value is
// ready to use.
type recordWriter struct {
	bytes.Buffer
	err error
}

// newRecord starts a record of the given kind.
func newRecord(kind string) *recordWriter {
	w := new(recordWriter)
	return w.Append("record", kind)
}

// Embed merges the fields of a raw JSON object into the record.
func (w *recordWriter) Embed(rawJSON []byte) *recordWriter {
	if w.err != nil {
		return w
	}
	trimmed := bytes.TrimSpace(rawJSON)
	if len(trimmed) < 2 || trimmed[0] != '{' || trimmed[len(trimmed)-1] != '}' {
		w.err = fmt.Errorf("cannot embed %q: not a JSON object", trimmed)
		return w
	}
	trimmed = bytes.TrimSpace(trimmed[1 : len(trimmed)-1])
	if len(trimmed) > 0 {
		w.Write(trimmed)
		w.WriteString(",")
	}
	return w
}

// EmbedFrom marshals v, which must encode as a JSON object, and merges its
// fields into the record.
func (w *recordWriter) EmbedFrom(v any) *recordWriter {
	if w.err != nil {
		return w
	}
	rawJSON, err := json.Marshal(v)
	if err != nil {
		w.err = fmt.Errorf("failed to marshal for embedding: %w", err)
		return w
	}
	return w.Embed(rawJSON)
}

// Append adds a key-value pair to the record.
func (w *recordWriter) Append(key string, value any) *recordWriter {
	if w.err != nil {
		return w
	}
	valBytes, err := json.Marshal(value)
	if err != nil {
		w.err = fmt.Errorf("failed to marshal value for key %q: %w", key, err)
		return w
	}
	keyBytes, _ := json.Marshal(key)
	w.Write(keyBytes)
	w.WriteString(":")
	w.Write(valBytes)
	w.WriteString(",")
	return w
}

// MarshalJSON returns the record as a JSON object.
func (w *recordWriter) MarshalJSON() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	content := bytes.TrimSuffix(w.Bytes(), []byte(","))
	final := make([]byte, 0, len(content)+2)
	final = append(final, '{')
	final = append(final, content...)
	final = append(final, '}')
	return final, nil
}

// WriteLine writes the record followed by a newline.
func (w *recordWriter) WriteLine(out io.Writer) error {
	line, err := w.MarshalJSON()
	if err != nil {
		return err
	}
	line = append(line, '\n')
	_, err = out.Write(line)
	return err
}
