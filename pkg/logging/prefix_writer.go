package logging

import (
	"bytes"
	"io"
	"sync"
)

// PrefixWriter wraps an io.Writer and adds a prefix to each line. It is safe
// for concurrent use, which hclog sub-loggers sharing one sink rely on.
type PrefixWriter struct {
	mu     sync.Mutex
	prefix []byte
	writer io.Writer
	buffer bytes.Buffer
}

// NewPrefixWriter creates a new PrefixWriter.
func NewPrefixWriter(prefix string, w io.Writer) *PrefixWriter {
	return &PrefixWriter{
		prefix: []byte(prefix),
		writer: w,
	}
}

// Write buffers data until a newline is seen, then writes the prefixed line.
func (pw *PrefixWriter) Write(p []byte) (int, error) {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	pw.buffer.Write(p)
	for {
		i := bytes.IndexByte(pw.buffer.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := append(append([]byte(nil), pw.prefix...), pw.buffer.Next(i+1)...)
		if _, err := pw.writer.Write(line); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// Flush writes a trailing partial line, if any.
func (pw *PrefixWriter) Flush() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.buffer.Len() == 0 {
		return nil
	}
	line := append(append([]byte(nil), pw.prefix...), pw.buffer.Bytes()...)
	pw.buffer.Reset()
	_, err := pw.writer.Write(append(line, '\n'))
	return err
}
