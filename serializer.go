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

package mapproof

// ValueSerializer maps a user-level value to and from the canonical bytes
// stored (and hashed) in the map. The validator never interprets value
// bytes itself beyond hashing them; this facade is injected so the
// validator stays agnostic of the storage engine's value encoding.
type ValueSerializer interface {
	// Deserialize converts canonical bytes (as carried by a leaf proof
	// node) back into a user-level value. An error here is a proof
	// malformation, not a programmer fault: untrusted proof bytes may be
	// garbage.
	Deserialize(raw []byte) (any, error)
}

// RawBytesSerializer is a ValueSerializer that returns the canonical bytes
// unchanged, for callers that store opaque byte values directly.
type RawBytesSerializer struct{}

// Deserialize implements ValueSerializer.
func (RawBytesSerializer) Deserialize(raw []byte) (any, error) {
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}
