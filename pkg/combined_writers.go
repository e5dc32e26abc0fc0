package pkg

import (
	"io"

	"go.uber.org/multierr"
)

// CombinedWriter writes to all its writers, and keeps going when some of them fail.
type CombinedWriter struct {
	Writers []io.Writer
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	return &CombinedWriter{
		Writers: append([]io.Writer(nil), writers...),
	}
}

// Write returns the sum of bytes written by all writers and the combined errors.
func (cw *CombinedWriter) Write(p []byte) (int, error) {
	var (
		total int
		errs  error
	)
	for _, w := range cw.Writers {
		n, err := w.Write(p)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		total += n
	}
	return total, errs
}
