package archive

import (
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
)

func init() {
	Register(Bzip2Codec{})
}

// Bzip2Codec implements BZIP2 compression
type Bzip2Codec struct{}

func (Bzip2Codec) Name() string { return CodecBzip2 }

// Decompress returns a BZIP2 reader
func (Bzip2Codec) Decompress(r io.Reader) (io.ReadCloser, error) {
	br, err := bzip2.NewReader(r, &bzip2.ReaderConfig{})
	if err != nil {
		return nil, fmt.Errorf("creating bzip2 reader: %w", err)
	}
	return br, nil
}
