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

import (
	"fmt"

	"github.com/cryptotrie/mapproof/dbkey"
	"github.com/cryptotrie/mapproof/hashing"
	"github.com/cryptotrie/mapproof/prooftree"
	"github.com/cryptotrie/mapproof/treepath"
)

// KeySizeBytes and KeySizeBits mirror dbkey's fixed width, re-exported here
// since they're the units callers of this package think in.
const (
	KeySizeBytes  = dbkey.Size
	KeySizeBits   = dbkey.Bits
	HashSizeBytes = hashing.Size
)

// Option configures a Validator at construction time.
type Option func(*Validator)

// WithStructuralChecks toggles PERFORM_TREE_CORRECTNESS_CHECKS (spec §6.4).
// Defaults to true. Disabling it skips the branch structural invariants
// (1)-(3), relying on hash recomputation to reject otherwise ill-structured
// proofs — safe only to the extent the injected hasher's canonical encoding
// is collision resistant (§9 Open Question; left as documented, not
// resolved away). The descent-prefix checks of Left/RightBranch and the
// child-prefix tests of MappingNotFoundBranch still run when it is disabled.
func WithStructuralChecks(enabled bool) Option {
	return func(v *Validator) { v.checkStructure = enabled }
}

// Validator walks exactly one proof tree, checking it against an expected
// root hash and requested key. It is not safe for concurrent use, and it is
// one-shot: Validate may only be called once per instance (spec P7).
type Validator struct {
	expectedRootHash [32]byte
	requestedKey     [32]byte
	serializer       ValueSerializer
	hasherFactory    hashing.Factory
	checkStructure   bool

	path             *treepath.Path
	status           Status
	visitedAnyBranch bool
	visited          bool
	value            any
	hasValue         bool
	computedHash     [32]byte

	// pendingChildKey is set by a branch handler immediately before
	// descending into the child it chose, and read by VisitLeafValue if
	// that child turns out to be a leaf. It is dynamically scoped to a
	// single Accept call: a handler other than VisitLeafValue never reads
	// it, so a nested branch overwriting it before its own descent never
	// clobbers a pending read.
	pendingChildKey *dbkey.Key
}

// NewValidator constructs a Validator for a single proof tree.
// hasherFactory must match the hash the storage engine used to compute
// expectedRootHash; serializer must match the value encoding it used.
func NewValidator(expectedRootHash [32]byte, requestedKey [32]byte, serializer ValueSerializer, hasherFactory hashing.Factory, opts ...Option) *Validator {
	v := &Validator{
		expectedRootHash: expectedRootHash,
		requestedKey:     requestedKey,
		serializer:       serializer,
		hasherFactory:    hasherFactory,
		checkStructure:   true,
		path:             treepath.New(),
		status:           StatusNotVisited,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate walks root, the one proof tree this Validator will ever see.
// Calling it more than once is a programmer fault (panics with
// IllegalState). The returned error is non-nil only for proof bytes the
// injected ValueSerializer could not decode; all other proof defects are
// reported through Status/IsValid, not a returned error.
func (v *Validator) Validate(root prooftree.Node) error {
	if v.visited {
		illegalState("Validate called twice on the same validator; construct a new Validator per proof")
	}
	v.visited = true
	return root.Accept(v)
}

// Status returns the validator's current outcome classification.
func (v *Validator) Status() Status { return v.status }

// IsValid reports whether the proof is both structurally valid and
// recomputes to the expected root hash. Safe to call at any time, including
// before Validate.
func (v *Validator) IsValid() bool {
	return v.status == StatusValid && v.computedHash == v.expectedRootHash
}

// HasValue reports whether a membership value was recovered. Only
// meaningful once IsValid() is true; a valid non-membership witness leaves
// this false.
func (v *Validator) HasValue() bool { return v.hasValue }

// Value returns the deserialized value proved present at the requested
// key. Calling it when the validator is not valid, or valid but only
// proving absence, is a programmer fault (spec §4.3/§7): Value panics with
// an *ErrProofNotValid describing the status and any hash mismatch.
func (v *Validator) Value() any {
	if !v.IsValid() || !v.hasValue {
		panic(&ErrProofNotValid{
			Status:       v.status,
			HashMismatch: v.status == StatusValid && v.computedHash != v.expectedRootHash,
		})
	}
	return v.value
}

// requireRootOnly enforces that EmptyMapProof/EqualValueAtRoot/
// NonEqualValueAtRoot are only ever visited at the root before any branch.
func (v *Validator) requireRootOnly(variant string) {
	if v.path.Len() != 0 || v.visitedAnyBranch {
		illegalState("%s visited after descent into a branch has begun; root-only proof node variants may only appear at the root", variant)
	}
}

// VisitEmptyMapProof implements prooftree.Visitor.
func (v *Validator) VisitEmptyMapProof(n *prooftree.EmptyMapProof) error {
	v.requireRootOnly("EmptyMapProof")
	v.computedHash = [32]byte{}
	v.hasValue = false
	v.status = StatusValid
	return nil
}

// VisitEqualValueAtRoot implements prooftree.Visitor.
func (v *Validator) VisitEqualValueAtRoot(n *prooftree.EqualValueAtRoot) error {
	v.requireRootOnly("EqualValueAtRoot")
	if n.LeafKey.Kind() != dbkey.Leaf || n.LeafKey.Raw() != v.requestedKey {
		v.status = StatusInvalidDbKeyOfRootNode
		return nil
	}
	valueHash := v.hash(n.Value)
	v.computedHash = v.hashLeaf(n.LeafKey, valueHash)
	val, err := v.serializer.Deserialize(n.Value)
	if err != nil {
		return fmt.Errorf("mapproof: deserializing root leaf value: %w", err)
	}
	v.value, v.hasValue = val, true
	v.status = StatusValid
	return nil
}

// VisitNonEqualValueAtRoot implements prooftree.Visitor.
func (v *Validator) VisitNonEqualValueAtRoot(n *prooftree.NonEqualValueAtRoot) error {
	v.requireRootOnly("NonEqualValueAtRoot")
	if n.LeafKey.Kind() != dbkey.Leaf {
		v.status = StatusInvalidDbKeyOfRootNode
		return nil
	}
	if n.LeafKey.Raw() == v.requestedKey {
		v.status = StatusInvalidDbKeyOfRootNode
		return nil
	}
	v.computedHash = v.hashLeaf(n.LeafKey, n.ValueHash)
	v.hasValue = false
	v.status = StatusValid
	return nil
}

// enterBranch applies the depth bound shared by all three branch variants
// and marks that a branch has now been visited.
func (v *Validator) enterBranch() bool {
	if v.path.Len() >= dbkey.Bits {
		v.status = StatusInvalidBranchNodeDepth
		return false
	}
	v.visitedAnyBranch = true
	return true
}

// checkBranchStructure applies structural checks (1)-(3) of spec §4.2, when
// enabled.
func (v *Validator) checkBranchStructure(leftKey, rightKey dbkey.Key) bool {
	if !v.checkStructure {
		return true
	}
	pos := v.path.Len()
	if leftKey.Bit(pos) != 0 || rightKey.Bit(pos) != 1 {
		v.status = StatusInvalidPathToNode
		return false
	}
	if !v.pathIsPrefixOf(leftKey) || !v.pathIsPrefixOf(rightKey) {
		v.status = StatusInvalidPathToNode
		return false
	}
	if int(leftKey.NumSignificantBits()) <= pos || int(rightKey.NumSignificantBits()) <= pos {
		v.status = StatusInvalidPathToNode
		return false
	}
	return true
}

// pathIsPrefixOf reports whether the path accumulated so far equals the
// first path.Len() bits of key's raw bytes.
func (v *Validator) pathIsPrefixOf(key dbkey.Key) bool {
	raw := key.Raw()
	for i := 0; i < v.path.Len(); i++ {
		if dbkey.Bit(raw, i) != v.path.Bit(i) {
			return false
		}
	}
	return true
}

// extendPath appends key's bits beyond the current path length, up to
// key's significant length, then returns the pre-extension length so the
// caller can Truncate back to it after recursing.
func (v *Validator) extendPath(key dbkey.Key) int {
	pos := v.path.Len()
	raw := key.Raw()
	for i := pos; i < int(key.NumSignificantBits()); i++ {
		v.path.Append(dbkey.Bit(raw, i))
	}
	return pos
}

// VisitLeftBranch implements prooftree.Visitor.
func (v *Validator) VisitLeftBranch(n *prooftree.LeftBranch) error {
	if !v.enterBranch() {
		return nil
	}
	if !v.checkBranchStructure(n.LeftKey, n.RightKey) {
		return nil
	}
	if !n.LeftKey.IsPrefixOf(v.requestedKey) {
		v.status = StatusInvalidPathToNode
		return nil
	}

	pos := v.extendPath(n.LeftKey)
	v.pendingChildKey = &n.LeftKey
	err := n.Left.Accept(v)
	v.path.Truncate(pos)
	if err != nil {
		return err
	}
	if v.status != StatusValid {
		return nil
	}
	childHash := v.computedHash
	v.computedHash = v.hashBranch(childHash, n.RightHash, n.LeftKey, n.RightKey)
	v.status = StatusValid
	return nil
}

// VisitRightBranch implements prooftree.Visitor.
func (v *Validator) VisitRightBranch(n *prooftree.RightBranch) error {
	if !v.enterBranch() {
		return nil
	}
	if !v.checkBranchStructure(n.LeftKey, n.RightKey) {
		return nil
	}
	if !n.RightKey.IsPrefixOf(v.requestedKey) {
		v.status = StatusInvalidPathToNode
		return nil
	}

	pos := v.extendPath(n.RightKey)
	v.pendingChildKey = &n.RightKey
	err := n.Right.Accept(v)
	v.path.Truncate(pos)
	if err != nil {
		return err
	}
	if v.status != StatusValid {
		return nil
	}
	childHash := v.computedHash
	v.computedHash = v.hashBranch(n.LeftHash, childHash, n.LeftKey, n.RightKey)
	v.status = StatusValid
	return nil
}

// VisitMappingNotFoundBranch implements prooftree.Visitor.
func (v *Validator) VisitMappingNotFoundBranch(n *prooftree.MappingNotFoundBranch) error {
	if !v.enterBranch() {
		return nil
	}
	if !v.checkBranchStructure(n.LeftKey, n.RightKey) {
		return nil
	}

	leftMatches := n.LeftKey.IsPrefixOf(v.requestedKey)
	rightMatches := n.RightKey.IsPrefixOf(v.requestedKey)
	switch {
	case !leftMatches && !rightMatches:
		v.computedHash = v.hashBranch(n.LeftHash, n.RightHash, n.LeftKey, n.RightKey)
		v.hasValue = false
		v.status = StatusValid
	case leftMatches != rightMatches:
		v.status = StatusMayContainRequestedValueInSubtrees
	default:
		// Both children matching is structurally impossible given check
		// (1)-(3); a proof claiming it is malformed, not inconclusive.
		v.status = StatusInvalidPathToNode
	}
	return nil
}

// VisitLeafValue implements prooftree.Visitor.
func (v *Validator) VisitLeafValue(n *prooftree.LeafValue) error {
	if v.path.Len() == 0 && !v.visitedAnyBranch {
		v.status = StatusInvalidPathToNode
		return nil
	}
	parentKey := v.pendingChildKey
	if parentKey == nil || parentKey.Kind() != dbkey.Leaf || parentKey.Raw() != v.requestedKey {
		v.status = StatusInvalidPathToNode
		return nil
	}

	valueHash := v.hash(n.Value)
	v.computedHash = v.hashLeaf(*parentKey, valueHash)
	val, err := v.serializer.Deserialize(n.Value)
	if err != nil {
		return fmt.Errorf("mapproof: deserializing leaf value: %w", err)
	}
	v.value, v.hasValue = val, true
	v.status = StatusValid
	return nil
}

func (v *Validator) hash(data []byte) [32]byte {
	h := v.hasherFactory()
	h.Write(data)
	return h.Sum()
}

// hashLeaf implements H_leaf (spec §6.2).
func (v *Validator) hashLeaf(key dbkey.Key, valueHash [32]byte) [32]byte {
	h := v.hasherFactory()
	h.Write(key.Encode())
	h.Write(valueHash[:])
	return h.Sum()
}

// hashBranch implements H_branch (spec §6.2).
func (v *Validator) hashBranch(leftHash, rightHash [32]byte, leftKey, rightKey dbkey.Key) [32]byte {
	h := v.hasherFactory()
	h.Write(leftHash[:])
	h.Write(rightHash[:])
	h.Write(leftKey.Encode())
	h.Write(rightKey.Encode())
	return h.Sum()
}
