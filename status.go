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

// Package mapproof validates proofs of membership and non-membership in a
// persistent Merkle-Patricia map: given an expected root hash, a requested
// key and a proof tree, it determines whether the tree recomputes to the
// root and what, if anything, it proves about the key.
package mapproof

import "fmt"

// Status is the closed taxonomy of validator outcomes. Names are part of
// the error-message contract: the *ErrProofNotValid that Value panics with
// embeds Status.String() verbatim in its message so callers can
// pattern-match on it.
type Status int

const (
	// StatusNotVisited is the initial state before Validate has run.
	StatusNotVisited Status = iota
	// StatusValid means the proof tree is structurally valid. This does
	// NOT by itself mean the proof is valid overall: IsValid also requires
	// the recomputed hash to match the expected root hash. The two are
	// kept distinct so callers can tell a structural defect from a root
	// hash mismatch against an otherwise well-formed proof.
	StatusValid
	// StatusInvalidDbKeyOfRootNode means a root-only node variant carried
	// a DbKey inconsistent with its variant (wrong kind, or a key that
	// matches/mismatches the requested key in the wrong direction).
	StatusInvalidDbKeyOfRootNode
	// StatusInvalidBranchNodeDepth means a branch was visited at or beyond
	// the maximum key depth.
	StatusInvalidBranchNodeDepth
	// StatusInvalidPathToNode means a branch's child keys violate the
	// structural invariants of §4.2(1)-(3), or a descent's target child
	// does not prefix the requested key, or a leaf's key does not match
	// the requested key.
	StatusInvalidPathToNode
	// StatusMayContainRequestedValueInSubtrees means a
	// MappingNotFoundBranch was reached whose descent would need to go
	// into an elided subtree to answer the membership question: the
	// witness is inconclusive.
	StatusMayContainRequestedValueInSubtrees
)

func (s Status) String() string {
	switch s {
	case StatusNotVisited:
		return "NOT_VISITED"
	case StatusValid:
		return "VALID"
	case StatusInvalidDbKeyOfRootNode:
		return "INVALID_DB_KEY_OF_ROOT_NODE"
	case StatusInvalidBranchNodeDepth:
		return "INVALID_BRANCH_NODE_DEPTH"
	case StatusInvalidPathToNode:
		return "INVALID_PATH_TO_NODE"
	case StatusMayContainRequestedValueInSubtrees:
		return "MAY_CONTAIN_REQUESTED_VALUE_IN_SUBTREES"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}
