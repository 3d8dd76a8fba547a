package sdci

import (
	"context"
	"fmt"
	"math"
	"math/bits"
	"unsafe"

	"github.com/hupe1980/sdci/internal/bitset"
	"github.com/hupe1980/sdci/internal/packed"
	"github.com/hupe1980/sdci/internal/sampled"
)

// Unchanged keeps the current value of a parameter in Initialize.
const Unchanged = math.MaxUint64

// maxQ bounds the power table for the degenerate unary alphabet, where
// sigma^q never overflows.
const maxQ = 1 << 20

// Index is a semi-dynamic compact index over a text of symbols in
// [0, AlphabetSize). Text can only be appended.
//
// The zero value is an empty index with parameters (0, 0, 0); call
// Initialize before appending.
//
// An Index is not safe for concurrent mutation. Queries may run
// concurrently as long as no mutator is in flight.
type Index struct {
	sigma uint64
	q     uint64
	k     uint64

	n          uint64 // text length
	last       uint64 // encoding of the last min(n, q) symbols
	nextSample uint64 // text length at which the next q-gram is sampled
	firstSeen  bool   // the q-gram ending at the last symbol was new

	pow     []uint64 // sigma^0 .. sigma^q
	samples sampled.List
	efirst  packed.Array // q-gram -> leading symbol+1 of its first new predecessor
	enext   packed.Array // q-gram -> leading symbol+1 of the next sibling predecessor
	seen    bitset.Set

	logger  *Logger
	metrics MetricsCollector
}

// New creates an index over an alphabet of sigma symbols that samples
// every k-th q-gram. Zero for any parameter yields an empty, uninitialized index.
func New(sigma, q, k uint64, optFns ...Option) (*Index, error) {
	o := applyOptions(optFns)
	ix := &Index{logger: o.logger, metrics: o.metricsCollector}
	if err := ix.Initialize(sigma, q, k); err != nil {
		return nil, err
	}
	if o.expectedLength > 0 {
		_ = ix.Reserve(o.expectedLength)
	}
	return ix, nil
}

func (ix *Index) log() *Logger {
	if ix.logger == nil {
		return NoopLogger()
	}
	return ix.logger
}

func (ix *Index) collector() MetricsCollector {
	if ix.metrics == nil {
		return NoopMetricsCollector{}
	}
	return ix.metrics
}

// Initialize discards the text and sets new parameters. Unchanged keeps the
// current value of a parameter. With unchanged parameters only the text is
// cleared.
//
// It fails with ErrInvalidArgument if k > q and with ErrOverflow if the
// q-gram space times 8 does not fit in uint64. On failure the index is reset
// to parameters (0, 0, 0).
func (ix *Index) Initialize(sigma, q, k uint64) (err error) {
	if sigma == Unchanged {
		sigma = ix.sigma
	}
	if q == Unchanged {
		q = ix.q
	}
	if k == Unchanged {
		k = ix.k
	}
	defer func() {
		ix.log().LogInitialize(context.Background(), sigma, q, k, err)
	}()

	if sigma == ix.sigma && q == ix.q && k == ix.k {
		ix.Clear()
		return nil
	}

	ix.release()
	if sigma == 0 || q == 0 || k == 0 {
		return nil
	}
	if k > q {
		return fmt.Errorf("%w: sampling stride %d exceeds q-gram length %d", ErrInvalidArgument, k, q)
	}

	pow, err := powers(sigma, q)
	if err != nil {
		return err
	}
	kinds := pow[q]

	edgeWidth := packed.WidthFor(sigma + 1)
	if err := ix.samples.Initialize(kinds, 0); err != nil {
		ix.release()
		return translateError(err)
	}
	if err := ix.efirst.Resize(edgeWidth, kinds); err != nil {
		ix.release()
		return translateError(err)
	}
	if err := ix.enext.Resize(edgeWidth, kinds); err != nil {
		ix.release()
		return translateError(err)
	}
	if err := ix.seen.Initialize(kinds); err != nil {
		ix.release()
		return translateError(err)
	}

	ix.sigma, ix.q, ix.k = sigma, q, k
	ix.pow = pow
	ix.nextSample = q
	return nil
}

// powers returns sigma^0 .. sigma^q and checks that sigma^q*8 fits in uint64.
func powers(sigma, q uint64) ([]uint64, error) {
	if (q > 64 && sigma > 1) || q > maxQ {
		return nil, fmt.Errorf("%w: %d^%d", ErrOverflow, sigma, q)
	}
	pow := make([]uint64, q+1)
	pow[0] = 1
	for i := range q {
		hi, lo := bits.Mul64(pow[i], sigma)
		if hi != 0 {
			return nil, fmt.Errorf("%w: %d^%d", ErrOverflow, sigma, q)
		}
		pow[i+1] = lo
	}
	if pow[q] > math.MaxUint64/8 {
		return nil, fmt.Errorf("%w: %d^%d q-grams", ErrOverflow, sigma, q)
	}
	return pow, nil
}

// release drops every buffer and resets the parameters to (0, 0, 0).
func (ix *Index) release() {
	ix.sigma, ix.q, ix.k = 0, 0, 0
	ix.n, ix.last, ix.nextSample, ix.firstSeen = 0, 0, 0, false
	ix.pow = nil
	ix.samples = sampled.List{}
	ix.efirst = packed.Array{}
	ix.enext = packed.Array{}
	ix.seen = bitset.Set{}
}

// resetAfter rolls a failed mutation back to the empty index.
func (ix *Index) resetAfter(op string, cause error) {
	ix.release()
	ix.log().LogReset(context.Background(), op, cause)
}

// Reserve makes room for the samples of a text of n symbols. It is a
// capacity hint; on failure the index is unchanged.
func (ix *Index) Reserve(n uint64) error {
	if ix.k == 0 {
		return nil
	}
	return translateError(ix.samples.Reserve(n/ix.k + min(n%ix.k, 1)))
}

// Clear discards the text and keeps the parameters and capacity.
func (ix *Index) Clear() {
	if ix.n >= ix.q {
		if ix.n > ix.q {
			ix.efirst.Zero()
		}
		ix.samples.Clear()
		ix.seen.Clear()
	}
	ix.n = 0
	ix.last = 0
	ix.nextSample = ix.q
	ix.firstSeen = false
}

// Swap exchanges the contents of ix and other in O(1). Loggers and metrics
// collectors stay with their index.
func (ix *Index) Swap(other *Index) {
	logger, metrics := ix.logger, ix.metrics
	otherLogger, otherMetrics := other.logger, other.metrics
	*ix, *other = *other, *ix
	ix.logger, ix.metrics = logger, metrics
	other.logger, other.metrics = otherLogger, otherMetrics
}

// Clone returns a deep copy of ix sharing its logger and metrics collector.
func (ix *Index) Clone() *Index {
	c := *ix
	c.pow = append([]uint64(nil), ix.pow...)
	c.samples = ix.samples.Clone()
	c.efirst = ix.efirst.Clone()
	c.enext = ix.enext.Clone()
	c.seen = ix.seen.Clone()
	return &c
}

// AlphabetSize returns sigma.
func (ix *Index) AlphabetSize() uint64 { return ix.sigma }

// Q returns the q-gram length.
func (ix *Index) Q() uint64 { return ix.q }

// K returns the sampling stride.
func (ix *Index) K() uint64 { return ix.k }

// Len returns the text length.
func (ix *Index) Len() uint64 { return ix.n }

// MaxPatternLen returns the longest pattern Locate accepts, q-k+1.
func (ix *Index) MaxPatternLen() uint64 { return ix.q - ix.k + 1 }

// HeapUsage returns the bytes held by the index buffers.
func (ix *Index) HeapUsage() uint64 {
	return uint64(cap(ix.pow))*8 +
		ix.samples.HeapUsage() +
		ix.efirst.HeapUsage() +
		ix.enext.HeapUsage() +
		ix.seen.HeapUsage()
}

// MemoryUsage returns HeapUsage plus the size of the Index value itself.
func (ix *Index) MemoryUsage() uint64 {
	return ix.HeapUsage() + uint64(unsafe.Sizeof(*ix))
}

// ShrinkToFit narrows the sample links to the current sample count and
// releases spare capacity. On failure the index is reset to empty.
func (ix *Index) ShrinkToFit() error {
	if err := ix.samples.ShrinkToFit(); err != nil {
		ix.resetAfter("shrink", err)
		return translateError(err)
	}
	return nil
}
