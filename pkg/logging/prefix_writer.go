package logging

import (
	"bytes"
	"io"
)

// PrefixWriter decorates each complete log line with a fixed prefix. hclog
// emits one line per Write in practice, but nothing guarantees it, so data
// is buffered until a newline arrives and only whole lines go out prefixed.
type PrefixWriter struct {
	prefix  []byte
	out     io.Writer
	pending bytes.Buffer
}

func NewPrefixWriter(prefix string, out io.Writer) *PrefixWriter {
	return &PrefixWriter{
		prefix: []byte(prefix),
		out:    out,
	}
}

// Write implements io.Writer. Partial lines stay buffered across calls; the
// reported count always covers all of p, since everything is retained.
func (w *PrefixWriter) Write(p []byte) (int, error) {
	if _, err := w.pending.Write(p); err != nil {
		return 0, err
	}

	for {
		line, err := w.pending.ReadBytes('\n')
		if err != nil {
			// Incomplete tail; push it back and wait for the rest.
			if len(line) > 0 {
				if _, wErr := w.pending.Write(line); wErr != nil {
					return 0, wErr
				}
			}
			break
		}
		if _, err := w.out.Write(w.prefix); err != nil {
			return 0, err
		}
		if _, err := w.out.Write(line); err != nil {
			return 0, err
		}
	}

	return len(p), nil
}
