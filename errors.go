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

import "fmt"

// ErrProofNotValid is the panic value raised by Value when the validator is
// not in a valid terminal state holding a value. Its fields give the Status
// and whether a root hash mismatch was the cause.
type ErrProofNotValid struct {
	Status       Status
	HashMismatch bool
}

func (e *ErrProofNotValid) Error() string {
	if e.Status == StatusValid && e.HashMismatch {
		return fmt.Sprintf("proof not valid: status=%s (recomputed root hash does not match expected root hash)", e.Status)
	}
	return fmt.Sprintf("proof not valid: status=%s", e.Status)
}

// IllegalState is the panic value raised when the validator's traversal
// contract is violated by the caller: this is a programmer fault (spec §7),
// never an expected outcome of validating an arbitrary proof tree produced
// by a conforming proof generator.
type IllegalState struct {
	Reason string
}

func (e IllegalState) Error() string {
	return "mapproof: illegal state: " + e.Reason
}

func illegalState(format string, args ...any) {
	panic(IllegalState{Reason: fmt.Sprintf(format, args...)})
}
