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
	"sort"
	"strconv"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vvlabs/verkle-trie/internal/ipa"
)

// A node payload is a tagged tuple (tag, entries): tag is "leaf" or
// "inner", entries is an ordered list of (field_name, field_value) pairs
// sorted lexicographically by field name, RLP-encoded. Mirrors
// ethereum-go-verkle/encoding.go's tag-byte-then-field-list shape
// (ParseNode dispatches on a leading tag byte), generalized here to a tag
// string plus a name-sorted field list per spec.md §4.6.
const (
	tagLeaf  = "leaf"
	tagInner = "inner"
)

type fieldEntry struct {
	Name  string
	Value []byte
}

type encodedNode struct {
	Tag    string
	Fields []fieldEntry
}

func encodeNode(tag string, fields []fieldEntry) ([]byte, error) {
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	return rlp.EncodeToBytes(encodedNode{Tag: tag, Fields: fields})
}

// EncodeLeaf serializes a leaf's payload per spec.md §4.6: fields "key",
// "value", "commitment" (serialized point), "hash" (big-endian bytes).
func EncodeLeaf(l *LeafNode) ([]byte, error) {
	hb := l.Hash.Bytes()
	cb := ipa.SerializePoint(&l.Commitment)
	fields := []fieldEntry{
		{Name: "key", Value: append([]byte(nil), l.Key[:]...)},
		{Name: "value", Value: append([]byte(nil), l.Value[:]...)},
		{Name: "commitment", Value: append([]byte(nil), cb[:]...)},
		{Name: "hash", Value: hb[:]},
	}
	return encodeNode(tagLeaf, fields)
}

// EncodeInner serializes an inner node's payload per spec.md §4.6: fields
// "commitment", "hash", and a decimal-string child-index key for every
// populated slot, each mapped to its 32-byte child path identifier.
func EncodeInner(n *InnerNode) ([]byte, error) {
	hb := n.Hash.Bytes()
	cb := ipa.SerializePoint(&n.Commitment)
	fields := make([]fieldEntry, 0, 2+len(n.Children))
	fields = append(fields,
		fieldEntry{Name: "commitment", Value: append([]byte(nil), cb[:]...)},
		fieldEntry{Name: "hash", Value: hb[:]},
	)
	for i, id := range n.Children {
		fields = append(fields, fieldEntry{
			Name:  strconv.Itoa(i),
			Value: append([]byte(nil), id[:]...),
		})
	}
	return encodeNode(tagInner, fields)
}

// DecodeNode parses a payload previously written by EncodeLeaf/EncodeInner
// back into a Node.
func DecodeNode(data []byte) (Node, error) {
	var enc encodedNode
	if err := rlp.DecodeBytes(data, &enc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	switch enc.Tag {
	case tagLeaf:
		return decodeLeafFields(enc.Fields)
	case tagInner:
		return decodeInnerFields(enc.Fields)
	default:
		return nil, fmt.Errorf("%w: unknown tag %q", ErrInvalidEncoding, enc.Tag)
	}
}

func decodeLeafFields(fields []fieldEntry) (*LeafNode, error) {
	l := &LeafNode{}
	var haveKey, haveValue, haveCommitment, haveHash bool
	for _, f := range fields {
		switch f.Name {
		case "key":
			if len(f.Value) != 32 {
				return nil, fmt.Errorf("%w: leaf key wrong length", ErrInvalidEncoding)
			}
			copy(l.Key[:], f.Value)
			haveKey = true
		case "value":
			if len(f.Value) != 32 {
				return nil, fmt.Errorf("%w: leaf value wrong length", ErrInvalidEncoding)
			}
			copy(l.Value[:], f.Value)
			haveValue = true
		case "commitment":
			p, err := ipa.DeserializePoint(f.Value)
			if err != nil {
				return nil, fmt.Errorf("%w: leaf commitment: %v", ErrInvalidEncoding, err)
			}
			l.Commitment = p
			haveCommitment = true
		case "hash":
			l.Hash.SetBytes(f.Value)
			haveHash = true
		default:
			return nil, fmt.Errorf("%w: unexpected leaf field %q", ErrInvalidEncoding, f.Name)
		}
	}
	if !haveKey || !haveValue || !haveCommitment || !haveHash {
		return nil, fmt.Errorf("%w: leaf missing required field", ErrInvalidEncoding)
	}
	return l, nil
}

func decodeInnerFields(fields []fieldEntry) (*InnerNode, error) {
	n := NewEmptyInner()
	var haveCommitment, haveHash bool
	for _, f := range fields {
		switch f.Name {
		case "commitment":
			p, err := ipa.DeserializePoint(f.Value)
			if err != nil {
				return nil, fmt.Errorf("%w: inner commitment: %v", ErrInvalidEncoding, err)
			}
			n.Commitment = p
			haveCommitment = true
		case "hash":
			n.Hash.SetBytes(f.Value)
			haveHash = true
		default:
			idx, err := strconv.Atoi(f.Name)
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("%w: unexpected inner field %q", ErrInvalidEncoding, f.Name)
			}
			if len(f.Value) != 32 {
				return nil, fmt.Errorf("%w: inner child id wrong length", ErrInvalidEncoding)
			}
			var id [32]byte
			copy(id[:], f.Value)
			n.Children[idx] = id
		}
	}
	if !haveCommitment || !haveHash {
		return nil, fmt.Errorf("%w: inner missing required field", ErrInvalidEncoding)
	}
	return n, nil
}
