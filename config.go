// This is free and unencumbered software released into the public domain.
//
// Anyone is free to copy, modify, publish, use, compile, sell, or
// distribute this software, either in source code form or as a compiled
// binary, for any purpose, commercial or non-commercial, and by any
// means.
//
// In jurisdictions that recognize copyright laws, the author or authors
// of this software dedicate any and all copyright interest in the
// software to the public domain. We make this dedication for the benefit
// of the public at large and to the detriment of our heirs and
// successors. We intend this dedication to be an overt act of
// relinquishment in perpetuity of all present and future rights to this
// software under copyright law.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
// MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
// IN NO EVENT SHALL THE AUTHORS BE LIABLE FOR ANY CLAIM, DAMAGES OR
// OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE,
// ARISING FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR
// OTHER DEALINGS IN THE SOFTWARE.
//
// For more information, please refer to <https://unlicense.org>

package verkle

import (
	"fmt"

	"github.com/vvlabs/verkle-trie/internal/ipa"
	"github.com/vvlabs/verkle-trie/store"
)

// supportedWidthBits enumerates spec.md §3's recognized WIDTH_BITS values.
var supportedWidthBits = map[int]bool{2: true, 4: true, 6: true, 8: true, 10: true, 12: true}

// Config bundles everything a trie instance needs that is immutable for
// its lifetime: the branching width's field/curve setup and the store
// handle it commits nodes through. Mirrors ethereum-go-verkle's
// package-level IPAConfig/TreeConfig singleton pattern (config.go,
// config_ipa.go), generalized into an explicit per-instance value since
// spec.md's width_bits is configurable per trie rather than fixed at 256.
type Config struct {
	WidthBits int
	Width     int
	IPA       *ipa.Config
	Store     store.KV
}

// NewConfig validates widthBits against spec.md §3's enumerated set and
// builds the IPA configuration (domain + basis) and store wiring for a
// trie instance. basisSeed, if non-nil, makes the Pedersen basis
// deterministic and reproducible across process restarts against the same
// store; if nil, a fresh non-reproducible basis is sampled, matching
// spec.md §1's Non-goals ("a placeholder random basis is acceptable").
// Seeded configs are cached per width by ipa.NewConfig, so within one
// process the first seed used for a width fixes that width's basis.
func NewConfig(widthBits int, kv store.KV, basisSeed []byte) (*Config, error) {
	if !supportedWidthBits[widthBits] {
		return nil, fmt.Errorf("%w: width_bits=%d", ErrUnsupportedWidth, widthBits)
	}
	width := 1 << uint(widthBits)

	var ic *ipa.Config
	var err error
	if basisSeed != nil {
		ic, err = ipa.NewConfig(width, basisSeed)
	} else {
		ic, err = ipa.NewRandomConfig(width)
	}
	if err != nil {
		return nil, err
	}

	return &Config{
		WidthBits: widthBits,
		Width:     width,
		IPA:       ic,
		Store:     kv,
	}, nil
}
