package renderer

import (
	"bytes"
	"io"
)

// ConditionalBlock buffers a section and copies it to w only when block
// reports that it wrote something worth showing.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	bw := &bytes.Buffer{}
	if block(bw) {
		io.Copy(w, bw)
	}
}
