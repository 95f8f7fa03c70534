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

package dbkey_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/cryptotrie/mapproof/dbkey"
)

func raw(b ...byte) [32]byte {
	var out [32]byte
	copy(out[:], b)
	return out
}

func TestNewLeafRequiresFullLength(t *testing.T) {
	_, err := dbkey.NewLeaf(raw(0xff))
	require.NoError(t, err)
}

func TestNewBranchRejectsFullLength(t *testing.T) {
	_, err := dbkey.NewBranch(raw(0xff), dbkey.Bits)
	require.Error(t, err)
	require.True(t, errors.Is(err, dbkey.ErrNonCanonical))
}

func TestNewBranchRejectsNonZeroTail(t *testing.T) {
	// 0x81 has its last bit (index 7) set, which falls outside the first 4
	// significant bits and must be zero for the key to be canonical.
	_, err := dbkey.NewBranch(raw(0x81), 4)
	require.Error(t, err)
	require.True(t, errors.Is(err, dbkey.ErrNonCanonical))
}

func TestNewBranchAcceptsCanonicalPrefix(t *testing.T) {
	k, err := dbkey.NewBranch(raw(0x80), 1)
	require.NoError(t, err)
	require.Equal(t, dbkey.Branch, k.Kind())
	require.EqualValues(t, 1, k.NumSignificantBits())
}

func TestBitAddressingIsMSBFirst(t *testing.T) {
	k, err := dbkey.NewLeaf(raw(0x80))
	require.NoError(t, err)
	require.EqualValues(t, 1, k.Bit(0))
	for i := 1; i < 8; i++ {
		require.EqualValuesf(t, 0, k.Bit(i), "bit %d", i)
	}
}

func TestCommonPrefixLength(t *testing.T) {
	tests := []struct {
		name string
		a, b [32]byte
		bitsA, bitsB uint16
		want uint16
	}{
		{
			name:  "identical leaves share all 256 bits",
			a:     raw(0x12, 0x34),
			b:     raw(0x12, 0x34),
			bitsA: dbkey.Bits,
			bitsB: dbkey.Bits,
			want:  dbkey.Bits,
		},
		{
			name:  "differ in first byte",
			a:     raw(0x00),
			b:     raw(0x80),
			bitsA: dbkey.Bits,
			bitsB: dbkey.Bits,
			want:  0,
		},
		{
			name:  "differ after first byte",
			a:     raw(0xff, 0x00),
			b:     raw(0xff, 0x80),
			bitsA: dbkey.Bits,
			bitsB: dbkey.Bits,
			want:  8,
		},
		{
			name:  "capped by shorter branch length",
			a:     raw(0x00),
			b:     raw(0x00),
			bitsA: 4,
			bitsB: dbkey.Bits,
			want:  4,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ka := mustKey(t, tc.a, tc.bitsA)
			kb := mustKey(t, tc.b, tc.bitsB)
			require.Equal(t, tc.want, ka.CommonPrefixLength(kb))
		})
	}
}

func mustKey(t *testing.T, r [32]byte, bits uint16) dbkey.Key {
	t.Helper()
	if bits == dbkey.Bits {
		k, err := dbkey.NewLeaf(r)
		require.NoError(t, err)
		return k
	}
	k, err := dbkey.NewBranch(r, bits)
	require.NoError(t, err)
	return k
}

func TestIsPrefixOf(t *testing.T) {
	k, err := dbkey.NewBranch(raw(0x80), 1)
	require.NoError(t, err)
	require.True(t, k.IsPrefixOf(raw(0x80)))
	require.True(t, k.IsPrefixOf(raw(0xff)))
	require.False(t, k.IsPrefixOf(raw(0x00)))
}

func TestEncodeLengthAndKindMarker(t *testing.T) {
	leaf, err := dbkey.NewLeaf(raw(0x01))
	require.NoError(t, err)
	branch, err := dbkey.NewBranch(raw(0x00), 3)
	require.NoError(t, err)

	require.Len(t, leaf.Encode(), dbkey.Size+2+1)
	if diff := cmp.Diff(leaf.Encode(), branch.Encode()); diff == "" {
		t.Error("LEAF and BRANCH encodings of different keys must differ, got no diff")
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	k, err := dbkey.NewBranch(raw(0x0f, 0x80), 9)
	require.NoError(t, err)
	if diff := cmp.Diff(k.Encode(), k.Encode()); diff != "" {
		t.Errorf("Encode() not deterministic across calls: %s", diff)
	}
}

func TestEqual(t *testing.T) {
	a, err := dbkey.NewLeaf(raw(0x01))
	require.NoError(t, err)
	b, err := dbkey.NewLeaf(raw(0x01))
	require.NoError(t, err)
	c, err := dbkey.NewLeaf(raw(0x02))
	require.NoError(t, err)
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
}
