package sdci

import (
	"errors"
	"fmt"

	"github.com/hupe1980/sdci/internal/bitset"
	"github.com/hupe1980/sdci/internal/packed"
	"github.com/hupe1980/sdci/persistence"
)

var (
	// ErrInvalidArgument is returned for bad construction parameters and
	// out-of-alphabet symbols in appended text.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrLength is returned when a pattern exceeds MaxPatternLen.
	ErrLength = errors.New("length error")

	// ErrOverflow is returned when capacity arithmetic exceeds the uint64 range.
	ErrOverflow = errors.New("overflow")

	// ErrFormat is returned for truncated, foreign or inconsistent snapshots.
	ErrFormat = persistence.ErrFormat

	// ErrIO is returned when a snapshot stream or file is unusable.
	ErrIO = persistence.ErrIO

	// ErrNotInitialized is returned when text is appended to an index whose
	// alphabet size is zero.
	ErrNotInitialized = fmt.Errorf("%w: index is not initialized", ErrInvalidArgument)
)

// InvalidSymbolError indicates a symbol outside [0, AlphabetSize).
type InvalidSymbolError struct {
	Symbol       uint64
	AlphabetSize uint64
}

func (e *InvalidSymbolError) Error() string {
	return fmt.Sprintf("invalid argument: the alphabet size is %d, but the input contains the value %d", e.AlphabetSize, e.Symbol)
}

// Is reports whether target is ErrInvalidArgument.
func (e *InvalidSymbolError) Is(target error) bool { return target == ErrInvalidArgument }

// PatternLengthError indicates a pattern longer than MaxPatternLen.
type PatternLengthError struct {
	Length uint64
	Max    uint64
}

func (e *PatternLengthError) Error() string {
	return fmt.Sprintf("length error: the pattern length must not exceed %d", e.Max)
}

// Is reports whether target is ErrLength.
func (e *PatternLengthError) Is(target error) bool { return target == ErrLength }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Already public kinds.
	if errors.Is(err, ErrInvalidArgument) || errors.Is(err, ErrLength) ||
		errors.Is(err, ErrOverflow) || errors.Is(err, ErrFormat) || errors.Is(err, ErrIO) {
		return err
	}

	// Capacity arithmetic of the engine components.
	if errors.Is(err, packed.ErrOverflow) || errors.Is(err, bitset.ErrOverflow) {
		return fmt.Errorf("%w: %w", ErrOverflow, err)
	}
	if errors.Is(err, packed.ErrInvalidWidth) {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if errors.Is(err, persistence.ErrUnknownCompression) {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return fmt.Errorf("%w: %w", ErrIO, err)
}
