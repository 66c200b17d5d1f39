package console

import "io"

// escapeReader watches the keystroke stream for the detach sequence at the
// start of a line. Partial matches are held back until resolved; on a full
// match onEscape fires and the stream ends without forwarding the sequence
// to the remote side.
type escapeReader struct {
	r        io.Reader
	escape   []byte
	onEscape func()

	lineStart bool
	matched   int
	pending   []byte
	done      bool
}

func (e *escapeReader) Read(p []byte) (int, error) {
	if e.done {
		return 0, io.EOF
	}

	if len(e.pending) > 0 {
		n := copy(p, e.pending)
		e.pending = e.pending[n:]
		return n, nil
	}

	buf := make([]byte, len(p))
	n, err := e.r.Read(buf)

	var out []byte
	for _, c := range buf[:n] {
		if e.matched > 0 || (e.lineStart && c == e.escape[0]) {
			if c == e.escape[e.matched] {
				e.matched++
				if e.matched == len(e.escape) {
					e.done = true
					e.onEscape()
					break
				}
				continue
			}
			// Mismatch: release the held prefix. The byte may itself open
			// a fresh attempt, as in "&&." where the second '&' restarts
			// the sequence.
			out = append(out, e.escape[:e.matched]...)
			e.matched = 0
			if c == e.escape[0] {
				e.matched = 1
				continue
			}
		}
		out = append(out, c)
		e.lineStart = c == '\n' || c == '\r'
	}

	written := copy(p, out)
	if written < len(out) {
		e.pending = append(e.pending, out[written:]...)
	}
	if written == 0 && len(e.pending) == 0 {
		if e.done {
			return 0, io.EOF
		}
		return 0, err
	}
	return written, nil
}
