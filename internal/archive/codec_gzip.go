package archive

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

func init() {
	Register(GzipCodec{})
}

// GzipCodec implements GZIP compression
type GzipCodec struct{}

func (GzipCodec) Name() string { return CodecGzip }

// Decompress returns a GZIP reader
func (GzipCodec) Decompress(r io.Reader) (io.ReadCloser, error) {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("creating gzip reader: %w", err)
	}
	return gr, nil
}
