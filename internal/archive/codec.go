// Package archive unpacks downloaded runtime and native library archives.
package archive

import (
	"fmt"
	"io"
	"strings"
)

// Codec names, also used as archive suffixes after ".tar".
const (
	CodecNone  = "none"
	CodecGzip  = "gz"
	CodecBzip2 = "bz2"
)

// Codec is a stream compression scheme layered under a tar archive.
type Codec interface {
	// Name returns the codec identifier (e.g., CodecGzip)
	Name() string

	// Decompress wraps r so that read data is decompressed
	Decompress(r io.Reader) (io.ReadCloser, error)
}

// Registry maps codec names to implementations
var Registry = make(map[string]Codec)

// Register registers a codec implementation
func Register(c Codec) {
	Registry[c.Name()] = c
}

// Get retrieves a codec by name
func Get(name string) (Codec, error) {
	c, ok := Registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown codec: %s", name)
	}
	return c, nil
}

func init() {
	Register(noneCodec{})
}

type noneCodec struct{}

func (noneCodec) Name() string { return CodecNone }

func (noneCodec) Decompress(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}
