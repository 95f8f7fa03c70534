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

// Package hashing abstracts the streaming hash primitive the validator
// feeds canonical node encodings through. The primitive is injected so a
// caller can match whichever hash the storage engine used to compute the
// root it is validating against.
package hashing

import (
	"crypto/sha256"
	"hash"

	"golang.org/x/crypto/sha3"
)

// Size is the fixed digest width produced by every Hasher in this package.
const Size = 32

// Hasher accumulates bytes and produces a fixed-size digest. A Hasher is
// used for exactly one node's worth of input and then discarded; it is not
// reused across nodes.
type Hasher interface {
	Write(p []byte) (n int, err error)
	// Sum finalizes the hash and returns the digest. Sum must not be called
	// more than once on the same Hasher.
	Sum() [Size]byte
}

// Factory constructs a fresh, independent Hasher. Independent here means
// calling Factory concurrently from multiple goroutines, and writing to the
// Hashers it returns concurrently, must be safe.
type Factory func() Hasher

type stdHasher struct {
	h hash.Hash
}

func (s stdHasher) Write(p []byte) (int, error) { return s.h.Write(p) }

func (s stdHasher) Sum() [Size]byte {
	var out [Size]byte
	copy(out[:], s.h.Sum(nil))
	return out
}

// SHA256Factory builds Hashers backed by crypto/sha256 — the spec's
// "SHA-256-class" production primitive.
func SHA256Factory() Hasher {
	return stdHasher{h: sha256.New()}
}

// Keccak256Factory builds Hashers backed by golang.org/x/crypto/sha3's
// legacy Keccak-256 construction, for validating proofs produced by a
// Keccak-backed storage engine (the common case among this pack's
// Ethereum-family tries).
func Keccak256Factory() Hasher {
	return stdHasher{h: sha3.NewLegacyKeccak256()}
}
