package normalize

import (
	"bytes"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// mergePDFs concatenates the given PDF buffers into one document, preserving
// input order.
func mergePDFs(buffers [][]byte) ([]byte, error) {
	readers := make([]io.ReadSeeker, len(buffers))
	for i, b := range buffers {
		readers[i] = bytes.NewReader(b)
	}

	var out bytes.Buffer
	if err := api.MergeRaw(readers, &out, false, nil); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
