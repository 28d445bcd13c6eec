// Package halo implements the toroidal ring of byte channels described
// in spec.md §4.4 (component C4): K links, each carrying exactly one
// packed row per generation, connecting strip i to strip (i+1) mod K.
//
// original_source/swargol.py multiplexes both directions of a link
// over a single full-duplex multiprocessing.Pipe per boundary. Go
// channels are unidirectional by convention, and spec.md's own data
// model describes the halo channel as SPSC (single-producer,
// single-consumer) — so each boundary is represented here as two
// one-way channels instead of one duplexed pipe: one carrying the
// upper strip's bottom row down to its neighbour (received as that
// neighbour's top halo), one carrying the lower strip's top row up
// (received as the upper neighbour's bottom halo). This is the same
// ring topology and the same one-message-per-direction-per-tick
// traffic pattern, just without Python's pipe-duplexing trick, which
// Go's channel model has no need to reproduce.
package halo

import (
	"fmt"

	"github.com/flga/swargol/internal/errors"
)

// Handle is one strip worker's view of its ring connections.
type Handle struct {
	SendTop    chan<- []byte // my row 0, to the strip above
	SendBottom chan<- []byte // my row H-1, to the strip below
	RecvTop    <-chan []byte // the strip above's row H-1 (my top halo)
	RecvBottom <-chan []byte // the strip below's row 0 (my bottom halo)
}

// NewRing builds a ring of k strips' worth of halo channels, each a
// capacity-1 in-process queue (Design Notes §9: workers are goroutines,
// not OS processes, so the ring is plain buffered channels rather than
// pipes). Worker 0's "above" neighbour is worker k-1, closing the ring
// with no special-cased edge worker, per spec.md §4.4.
func NewRing(k int) ([]Handle, error) {
	if k < 1 {
		return nil, &errors.ConfigError{Msg: "halo ring requires at least one strip"}
	}

	// down[i]: strip i's bottom row, consumed by strip (i+1)%k as its top halo.
	// up[i]:   strip i's top row, consumed by strip (i-1+k)%k as its bottom halo.
	down := make([]chan []byte, k)
	up := make([]chan []byte, k)
	for i := 0; i < k; i++ {
		down[i] = make(chan []byte, 1)
		up[i] = make(chan []byte, 1)
	}

	handles := make([]Handle, k)
	for i := 0; i < k; i++ {
		handles[i] = Handle{
			SendTop:    up[i],
			SendBottom: down[i],
			RecvTop:    down[(i-1+k)%k],
			RecvBottom: up[(i+1)%k],
		}
	}
	return handles, nil
}

// Recv reads one row from ch and validates its length against want,
// returning a *errors.ProtocolViolation on mismatch (spec.md §7).
func Recv(component string, ch <-chan []byte, want int) ([]byte, error) {
	row := <-ch
	if len(row) != want {
		return nil, &errors.ProtocolViolation{Component: component, Want: want, Got: len(row)}
	}
	return row, nil
}

// Send writes one row to ch. A length mismatch here is a bug in the
// calling worker, not a protocol violation from a peer — Recv is
// where a peer's violation is caught — so Send panics rather than
// returning an error.
func Send(ch chan<- []byte, row []byte, want int) {
	if len(row) != want {
		panic(fmt.Sprintf("halo: Send called with %d bytes, want %d", len(row), want))
	}
	ch <- row
}
