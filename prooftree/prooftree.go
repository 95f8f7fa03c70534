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

// Package prooftree defines the closed set of Merkle-Patricia map proof
// node variants and the visitor interface used to walk them. The set is
// closed by design: adding a variant is a breaking change, so a new
// implementer of Visitor is forced by the compiler to handle it, rather
// than silently falling through a switch's default case.
package prooftree

import "github.com/cryptotrie/mapproof/dbkey"

// Node is implemented by every proof-tree node variant. Accept dispatches to
// the Visitor method matching the node's concrete type.
type Node interface {
	Accept(v Visitor) error
}

// Visitor is implemented by a proof validator. Each node variant accepts a
// Visitor by invoking the one method that corresponds to it.
type Visitor interface {
	VisitEmptyMapProof(*EmptyMapProof) error
	VisitEqualValueAtRoot(*EqualValueAtRoot) error
	VisitNonEqualValueAtRoot(*NonEqualValueAtRoot) error
	VisitMappingNotFoundBranch(*MappingNotFoundBranch) error
	VisitLeftBranch(*LeftBranch) error
	VisitRightBranch(*RightBranch) error
	VisitLeafValue(*LeafValue) error
}

// EmptyMapProof witnesses that the map is empty. Legal only at the root.
type EmptyMapProof struct{}

// Accept implements Node.
func (n *EmptyMapProof) Accept(v Visitor) error { return v.VisitEmptyMapProof(n) }

// EqualValueAtRoot asserts the requested key's value is stored directly at
// the root. Legal only at the root.
type EqualValueAtRoot struct {
	LeafKey dbkey.Key
	Value   []byte
}

// Accept implements Node.
func (n *EqualValueAtRoot) Accept(v Visitor) error { return v.VisitEqualValueAtRoot(n) }

// NonEqualValueAtRoot asserts the map holds exactly one entry, at a key
// other than the requested one. Legal only at the root.
type NonEqualValueAtRoot struct {
	LeafKey   dbkey.Key
	ValueHash [32]byte
}

// Accept implements Node.
func (n *NonEqualValueAtRoot) Accept(v Visitor) error { return v.VisitNonEqualValueAtRoot(n) }

// MappingNotFoundBranch is a terminal absence witness: neither child's
// prefix can contain the requested key.
type MappingNotFoundBranch struct {
	LeftHash, RightHash [32]byte
	LeftKey, RightKey   dbkey.Key
}

// Accept implements Node.
func (n *MappingNotFoundBranch) Accept(v Visitor) error { return v.VisitMappingNotFoundBranch(n) }

// LeftBranch descends into Left; the right subtree is elided, represented
// only by its hash.
type LeftBranch struct {
	Left      Node
	RightHash [32]byte
	LeftKey   dbkey.Key
	RightKey  dbkey.Key
}

// Accept implements Node.
func (n *LeftBranch) Accept(v Visitor) error { return v.VisitLeftBranch(n) }

// RightBranch is the symmetric counterpart of LeftBranch.
type RightBranch struct {
	LeftHash [32]byte
	Right    Node
	LeftKey  dbkey.Key
	RightKey dbkey.Key
}

// Accept implements Node.
func (n *RightBranch) Accept(v Visitor) error { return v.VisitRightBranch(n) }

// LeafValue carries the value at the requested key, reached via some
// ancestor branch's descended child.
type LeafValue struct {
	Value []byte
}

// Accept implements Node.
func (n *LeafValue) Accept(v Visitor) error { return v.VisitLeafValue(n) }
