package main

import (
	"fmt"
	"strings"
)

// Alphabet maps characters to dense symbol codes and back.
type Alphabet struct {
	chars []rune
	codes map[rune]uint64
}

// NewAlphabet builds an alphabet where the i-th character of chars has code i.
func NewAlphabet(chars string) (*Alphabet, error) {
	a := &Alphabet{codes: make(map[rune]uint64)}
	for _, c := range chars {
		if _, dup := a.codes[c]; dup {
			return nil, fmt.Errorf("duplicate character %q in alphabet", c)
		}
		a.codes[c] = uint64(len(a.chars))
		a.chars = append(a.chars, c)
	}
	if len(a.chars) == 0 {
		return nil, fmt.Errorf("alphabet is empty")
	}
	return a, nil
}

// Size returns the number of symbols.
func (a *Alphabet) Size() uint64 {
	return uint64(len(a.chars))
}

// Encode maps s to symbol codes. Line breaks are skipped.
func (a *Alphabet) Encode(s string) ([]uint64, error) {
	out := make([]uint64, 0, len(s))
	for i, c := range s {
		if c == '\n' || c == '\r' {
			continue
		}
		code, ok := a.codes[c]
		if !ok {
			return nil, fmt.Errorf("character %q at offset %d is not in alphabet %q", c, i, string(a.chars))
		}
		out = append(out, code)
	}
	return out, nil
}

// Decode maps symbol codes back to characters.
func (a *Alphabet) Decode(symbols []uint64) string {
	var sb strings.Builder
	sb.Grow(len(symbols))
	for _, s := range symbols {
		if s < uint64(len(a.chars)) {
			sb.WriteRune(a.chars[s])
		} else {
			sb.WriteByte('?')
		}
	}
	return sb.String()
}
