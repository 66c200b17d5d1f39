// Package console bridges an operator terminal to a node's serial console.
//
// The remote side is a console-server process reached over an interactive
// Kubernetes exec stream; the local side is the operator's terminal, put
// into raw mode for the duration. Typing the escape sequence "&." at the
// start of a line detaches cleanly.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/go-logr/logr"
	"golang.org/x/term"
)

var (
	// ErrTargetUnreachable reports that no console session could be
	// established: no traffic ever flowed.
	ErrTargetUnreachable = errors.New("console target unreachable")

	// ErrStreamClosed reports that an established session ended from the
	// remote side rather than by the operator's escape.
	ErrStreamClosed = errors.New("console stream closed")
)

// DefaultEscape detaches the bridge when typed at the start of a line.
const DefaultEscape = "&."

// Streams carries the three byte streams of an interactive session.
type Streams struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
	TTY    bool
}

// StreamOpener attaches an interactive stream to one node's console and
// blocks until the stream ends or ctx is cancelled.
type StreamOpener interface {
	Open(ctx context.Context, node string, streams Streams) error
}

// Bridge connects local streams to a remote console.
type Bridge struct {
	opener StreamOpener
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	escape string
	log    logr.Logger
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithStreams overrides the local streams (defaults are the process's
// stdin, stdout, and stderr).
func WithStreams(in io.Reader, out, errOut io.Writer) Option {
	return func(b *Bridge) {
		b.in, b.out, b.errOut = in, out, errOut
	}
}

// WithEscape overrides the detach sequence. Empty disables detaching.
func WithEscape(seq string) Option {
	return func(b *Bridge) { b.escape = seq }
}

// WithLogger attaches a logger.
func WithLogger(log logr.Logger) Option {
	return func(b *Bridge) { b.log = log }
}

// NewBridge builds a Bridge over the given opener.
func NewBridge(opener StreamOpener, opts ...Option) *Bridge {
	b := &Bridge{
		opener: opener,
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
		escape: DefaultEscape,
		log:    logr.Discard(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach connects to the node's console and blocks until the operator
// detaches, the remote closes, or ctx is cancelled. A clean escape returns
// nil. A session that ends before any byte flows returns
// ErrTargetUnreachable; one that ends after traffic returns ErrStreamClosed.
func (b *Bridge) Attach(ctx context.Context, node string) error {
	ctx, detach := context.WithCancelCause(ctx)
	defer detach(nil)

	// Only remote output counts as traffic: keystrokes alone do not prove
	// the far end ever answered.
	var exchanged atomic.Int64

	in := b.in
	if b.escape != "" {
		in = &escapeReader{
			r:         in,
			escape:    []byte(b.escape),
			lineStart: true, // a session starts at a line boundary
			onEscape: func() {
				detach(errDetached)
			},
		}
	}
	out := &countingWriter{w: b.out, n: &exchanged}

	restore, isTTY, err := makeRaw(b.in)
	if err != nil {
		return fmt.Errorf("configure terminal: %w", err)
	}
	defer restore()

	b.log.V(1).Info("attaching console", "node", node, "tty", isTTY)
	openErr := b.opener.Open(ctx, node, Streams{In: in, Out: out, ErrOut: b.errOut, TTY: isTTY})

	if context.Cause(ctx) == errDetached {
		b.log.V(1).Info("console detached", "node", node, "bytes", exchanged.Load())
		return nil
	}
	if ctx.Err() != nil {
		return context.Cause(ctx)
	}
	if exchanged.Load() == 0 {
		if openErr != nil {
			return fmt.Errorf("%w: %s: %w", ErrTargetUnreachable, node, openErr)
		}
		return fmt.Errorf("%w: %s", ErrTargetUnreachable, node)
	}
	if openErr != nil {
		return fmt.Errorf("%w: %s: %w", ErrStreamClosed, node, openErr)
	}
	return fmt.Errorf("%w: %s", ErrStreamClosed, node)
}

// errDetached marks a cancellation caused by the operator's escape.
var errDetached = errors.New("operator detached")

// makeRaw switches a terminal stdin into raw mode. Non-terminal inputs
// (pipes, tests) pass through untouched.
func makeRaw(in io.Reader) (restore func(), isTTY bool, err error) {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return func() {}, false, nil
	}
	state, err := term.MakeRaw(int(f.Fd()))
	if err != nil {
		return nil, false, err
	}
	return func() { _ = term.Restore(int(f.Fd()), state) }, true, nil
}

type countingWriter struct {
	w io.Writer
	n *atomic.Int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n.Add(int64(n))
	return n, err
}
