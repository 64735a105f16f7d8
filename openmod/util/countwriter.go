package util

import "io"

type CountingWriter struct {
	io.Writer
	BytesWritten int
}

func NewCountingWriter(w io.Writer) *CountingWriter {
	return &CountingWriter{
		Writer:       w,
		BytesWritten: 0,
	}
}

func (w *CountingWriter) Write(b []byte) (int, error) {
	n, err := w.Writer.Write(b)
	w.BytesWritten += n
	return n, err
}

// LookbackCountingWriter also remembers the last few bytes written, so
// callers can tell whether output already ended with a newline.
type LookbackCountingWriter struct {
	CountingWriter
	LastBytes []byte

	size int
}

func NewLookbackCountingWriter(w io.Writer, size int) *LookbackCountingWriter {
	return &LookbackCountingWriter{
		CountingWriter: CountingWriter{Writer: w},
		LastBytes:      make([]byte, 0, size),
		size:           size,
	}
}

func (w *LookbackCountingWriter) Write(b []byte) (int, error) {
	n, err := w.CountingWriter.Write(b)

	if n > 0 {
		w.LastBytes = append(w.LastBytes, b[:n]...)
		if len(w.LastBytes) > w.size {
			w.LastBytes = w.LastBytes[len(w.LastBytes)-w.size:]
		}
	}

	return n, err
}
