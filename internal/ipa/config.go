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

package ipa

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Config bundles the evaluation domain and Pedersen basis a trie commits
// against. One Config is built per configured width and shared by every
// node in a trie, mirroring ethereum-go-verkle/config.go's package-level
// IPAConfig singleton (there guarded by a plain configMtx sync.Mutex).
type Config struct {
	Width  int
	Domain *Domain
	Basis  *Basis
}

var (
	configGroup singleflight.Group
	configMu    sync.Mutex
	configCache = map[int]*Config{}
)

// NewConfig builds (or returns the cached) Config for the given width,
// deriving its basis deterministically from seed. Concurrent first-time
// calls for the same width share a single construction via singleflight,
// generalizing the teacher's single-width configMtx.Lock to our
// multi-width setting (a process may host trie instances at more than one
// configured width at once).
//
// The cache is keyed by width alone: once a Config exists for a width, a
// later call for that width returns it unchanged, whatever seed it passes.
func NewConfig(width int, seed []byte) (*Config, error) {
	if width < 4 || width > 4096 {
		return nil, fmt.Errorf("ipa: unsupported width %d", width)
	}

	configMu.Lock()
	if c, ok := configCache[width]; ok {
		configMu.Unlock()
		return c, nil
	}
	configMu.Unlock()

	v, err, _ := configGroup.Do(fmt.Sprintf("config-%d", width), func() (interface{}, error) {
		c := &Config{
			Width:  width,
			Domain: NewDomain(width),
			Basis:  NewBasis(width, seed),
		}
		configMu.Lock()
		configCache[width] = c
		configMu.Unlock()
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Config), nil
}

// NewRandomConfig is NewConfig with a freshly-sampled, non-reproducible
// basis, used when no shared seed is available (tests, ad hoc tries).
func NewRandomConfig(width int) (*Config, error) {
	if width < 4 || width > 4096 {
		return nil, fmt.Errorf("ipa: unsupported width %d", width)
	}
	return &Config{
		Width:  width,
		Domain: NewDomain(width),
		Basis:  NewRandomBasis(width),
	}, nil
}

// CommitSparse commits a sparse child-slot vector under this Config's basis.
func (c *Config) CommitSparse(values map[int]Fr) Point {
	return PedersenCommitSparse(c.Basis, values)
}

// Commit commits a dense vector (len(v) == c.Width) under this Config's basis.
func (c *Config) Commit(v []Fr) Point {
	return PedersenCommit(c.Basis, v)
}
