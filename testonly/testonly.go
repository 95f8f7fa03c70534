// Copyright 2022 Google LLC. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package testonly provides fixtures for building proof trees and
// recomputing their expected root hash in tests, without exercising the
// Validator under test to construct its own inputs.
package testonly

import (
	"github.com/cryptotrie/mapproof/dbkey"
	"github.com/cryptotrie/mapproof/hashing"
	"github.com/cryptotrie/mapproof/prooftree"
)

// Key32 builds a 32-byte array from a short hex-free byte pattern, left
// padding with zeroes. Panics on bad input; only meant for literal test
// data.
func Key32(b ...byte) [32]byte {
	var out [32]byte
	if len(b) > 32 {
		panic("testonly: Key32 given more than 32 bytes")
	}
	copy(out[32-len(b):], b)
	return out
}

// MustLeaf builds a LEAF dbkey.Key or panics.
func MustLeaf(raw [32]byte) dbkey.Key {
	k, err := dbkey.NewLeaf(raw)
	if err != nil {
		panic(err)
	}
	return k
}

// MustBranch builds a BRANCH dbkey.Key or panics. bits beyond
// numSignificantBits in raw must already be zero.
func MustBranch(raw [32]byte, numSignificantBits uint16) dbkey.Key {
	k, err := dbkey.NewBranch(raw, numSignificantBits)
	if err != nil {
		panic(err)
	}
	return k
}

// HashLeaf recomputes H_leaf the same way the validator does, for use in
// test fixtures that need to predict a branch's elided child hash.
func HashLeaf(f hashing.Factory, key dbkey.Key, value []byte) [32]byte {
	valueHash := hashBytes(f, value)
	h := f()
	h.Write(key.Encode())
	h.Write(valueHash[:])
	return h.Sum()
}

// HashBranch recomputes H_branch the same way the validator does.
func HashBranch(f hashing.Factory, leftHash, rightHash [32]byte, leftKey, rightKey dbkey.Key) [32]byte {
	h := f()
	h.Write(leftHash[:])
	h.Write(rightHash[:])
	h.Write(leftKey.Encode())
	h.Write(rightKey.Encode())
	return h.Sum()
}

func hashBytes(f hashing.Factory, data []byte) [32]byte {
	h := f()
	h.Write(data)
	return h.Sum()
}

// FixedHasher is a deterministic, non-cryptographic hashing.Hasher for
// tests that need predictable digests: Sum returns the 64-bit running FNV-1a
// style accumulation over everything written to it, big-endian in the last 8
// bytes of the digest, with the first 24 bytes zero.
type FixedHasher struct {
	state uint64
}

// FixedHasherFactory is a hashing.Factory producing FixedHasher instances.
func FixedHasherFactory() hashing.Hasher {
	return &FixedHasher{state: offsetBasis}
}

const (
	offsetBasis = 14695981039346656037
	prime       = 1099511628211
)

// Write implements hashing.Hasher.
func (f *FixedHasher) Write(p []byte) (int, error) {
	for _, b := range p {
		f.state ^= uint64(b)
		f.state *= prime
	}
	return len(p), nil
}

// Sum implements hashing.Hasher.
func (f *FixedHasher) Sum() [32]byte {
	var out [32]byte
	for i := 0; i < 8; i++ {
		out[24+i] = byte(f.state >> (8 * (7 - i)))
	}
	return out
}

// StubSerializer returns raw leaf bytes back as a string, so tests can
// assert on human-readable values without pulling in an encoding library.
type StubSerializer struct {
	// FailOn, if non-nil, causes Deserialize to return an error for any
	// input equal to it, to exercise the malformed-value error path.
	FailOn []byte
}

// Deserialize implements mapproof.ValueSerializer structurally: testonly does
// not import mapproof, so the interface is satisfied by method set alone.
func (s StubSerializer) Deserialize(raw []byte) (any, error) {
	if s.FailOn != nil && string(raw) == string(s.FailOn) {
		return nil, errDeserialize
	}
	return string(raw), nil
}

var errDeserialize = stubError("testonly: stub deserialize failure")

type stubError string

func (e stubError) Error() string { return string(e) }

// LeftBranchOf is a convenience constructor for prooftree.LeftBranch.
func LeftBranchOf(left prooftree.Node, rightHash [32]byte, leftKey, rightKey dbkey.Key) *prooftree.LeftBranch {
	return &prooftree.LeftBranch{Left: left, RightHash: rightHash, LeftKey: leftKey, RightKey: rightKey}
}

// RightBranchOf is a convenience constructor for prooftree.RightBranch.
func RightBranchOf(leftHash [32]byte, right prooftree.Node, leftKey, rightKey dbkey.Key) *prooftree.RightBranch {
	return &prooftree.RightBranch{LeftHash: leftHash, Right: right, LeftKey: leftKey, RightKey: rightKey}
}
