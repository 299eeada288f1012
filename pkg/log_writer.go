package pkg

import (
	"io"

	"go.uber.org/multierr"
)

// LogWriter fans out log output to several writers (e.g. stdout and a rotated file).
// A failing writer does not stop the others; all errors are returned combined.
type LogWriter struct {
	writers []io.Writer
}

func NewLogWriter(writers ...io.Writer) *LogWriter {
	lw := &LogWriter{}
	for _, w := range writers {
		if w != nil {
			lw.writers = append(lw.writers, w)
		}
	}
	return lw
}

func (lw *LogWriter) Write(p []byte) (int, error) {
	var err error
	written := 0
	for _, w := range lw.writers {
		if _, werr := w.Write(p); werr != nil {
			err = multierr.Append(err, werr)
			continue
		}
		written++
	}
	if written == 0 && len(lw.writers) > 0 {
		return 0, err
	}
	// at least one destination got the full entry
	return len(p), err
}
