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

// mapproofverify is a small command-line front end for the mapproof
// validator: it reads a JSON-encoded proof tree from a file, takes the
// expected root hash and requested key as hex flags, and reports whether the
// proof is valid.
package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cryptotrie/mapproof"
	"github.com/cryptotrie/mapproof/dbkey"
	"github.com/cryptotrie/mapproof/hashing"
	"github.com/cryptotrie/mapproof/prooftree"
)

var (
	proofFile  = flag.String("proof", "", "path to a JSON-encoded proof tree")
	rootHex    = flag.String("root_hash", "", "expected root hash, hex encoded")
	keyHex     = flag.String("requested_key", "", "requested key, hex encoded")
	hashFnName = flag.String("hash", "sha256", "hash function the proof was built with: sha256 or keccak256")
)

// wireNode mirrors the JSON shape of a proof tree: exactly one of its
// fields is populated, naming which prooftree.Node variant this node is.
// This is the CLI's on-disk format, not part of the validator's public API.
type wireNode struct {
	EmptyMapProof         *struct{}           `json:"empty_map_proof,omitempty"`
	EqualValueAtRoot      *wireEqualAtRoot     `json:"equal_value_at_root,omitempty"`
	NonEqualValueAtRoot   *wireNonEqualAtRoot  `json:"non_equal_value_at_root,omitempty"`
	MappingNotFoundBranch *wireBranchHashes    `json:"mapping_not_found_branch,omitempty"`
	LeftBranch            *wireLeftBranch      `json:"left_branch,omitempty"`
	RightBranch           *wireRightBranch     `json:"right_branch,omitempty"`
	LeafValue             *wireLeafValue       `json:"leaf_value,omitempty"`
}

type wireKey struct {
	Raw                string `json:"raw"`
	NumSignificantBits uint16 `json:"num_significant_bits"`
	Leaf               bool   `json:"leaf"`
}

type wireEqualAtRoot struct {
	LeafKey wireKey `json:"leaf_key"`
	Value   string  `json:"value"`
}

type wireNonEqualAtRoot struct {
	LeafKey   wireKey `json:"leaf_key"`
	ValueHash string  `json:"value_hash"`
}

type wireBranchHashes struct {
	LeftHash string  `json:"left_hash"`
	RightKey wireKey `json:"right_key"`
	RightHash string `json:"right_hash"`
	LeftKey  wireKey `json:"left_key"`
}

type wireLeftBranch struct {
	Left      wireNode `json:"left"`
	RightHash string   `json:"right_hash"`
	LeftKey   wireKey  `json:"left_key"`
	RightKey  wireKey  `json:"right_key"`
}

type wireRightBranch struct {
	LeftHash string   `json:"left_hash"`
	Right    wireNode `json:"right"`
	LeftKey  wireKey  `json:"left_key"`
	RightKey wireKey  `json:"right_key"`
}

type wireLeafValue struct {
	Value string `json:"value"`
}

func decodeKey(w wireKey) dbkey.Key {
	raw := decodeHash(w.Raw)
	var k dbkey.Key
	var err error
	if w.Leaf {
		k, err = dbkey.NewLeaf(raw)
	} else {
		k, err = dbkey.NewBranch(raw, w.NumSignificantBits)
	}
	if err != nil {
		log.Fatalf("decoding key: %v", err)
	}
	return k
}

func decodeHash(s string) [32]byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		log.Fatalf("decoding hex: %v", err)
	}
	var out [32]byte
	copy(out[:], b)
	return out
}

func buildNode(w wireNode) prooftree.Node {
	switch {
	case w.EmptyMapProof != nil:
		return &prooftree.EmptyMapProof{}
	case w.EqualValueAtRoot != nil:
		return &prooftree.EqualValueAtRoot{
			LeafKey: decodeKey(w.EqualValueAtRoot.LeafKey),
			Value:   decodeBytes(w.EqualValueAtRoot.Value),
		}
	case w.NonEqualValueAtRoot != nil:
		return &prooftree.NonEqualValueAtRoot{
			LeafKey:   decodeKey(w.NonEqualValueAtRoot.LeafKey),
			ValueHash: decodeHash(w.NonEqualValueAtRoot.ValueHash),
		}
	case w.MappingNotFoundBranch != nil:
		n := w.MappingNotFoundBranch
		return &prooftree.MappingNotFoundBranch{
			LeftHash:  decodeHash(n.LeftHash),
			RightHash: decodeHash(n.RightHash),
			LeftKey:   decodeKey(n.LeftKey),
			RightKey:  decodeKey(n.RightKey),
		}
	case w.LeftBranch != nil:
		n := w.LeftBranch
		return &prooftree.LeftBranch{
			Left:      buildNode(n.Left),
			RightHash: decodeHash(n.RightHash),
			LeftKey:   decodeKey(n.LeftKey),
			RightKey:  decodeKey(n.RightKey),
		}
	case w.RightBranch != nil:
		n := w.RightBranch
		return &prooftree.RightBranch{
			LeftHash: decodeHash(n.LeftHash),
			Right:    buildNode(n.Right),
			LeftKey:  decodeKey(n.LeftKey),
			RightKey: decodeKey(n.RightKey),
		}
	case w.LeafValue != nil:
		return &prooftree.LeafValue{Value: decodeBytes(w.LeafValue.Value)}
	default:
		log.Fatalf("proof node has no recognized variant populated")
		return nil
	}
}

func decodeBytes(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		log.Fatalf("decoding hex: %v", err)
	}
	return b
}

func hasherFactory(name string) hashing.Factory {
	switch name {
	case "sha256":
		return hashing.SHA256Factory
	case "keccak256":
		return hashing.Keccak256Factory
	default:
		log.Fatalf("unknown hash function %q", name)
		return nil
	}
}

func main() {
	flag.Parse()
	if *proofFile == "" || *rootHex == "" || *keyHex == "" {
		log.Fatal("usage: mapproofverify -proof=<file> -root_hash=<hex> -requested_key=<hex>")
	}

	raw, err := os.ReadFile(*proofFile)
	if err != nil {
		log.Fatalf("reading proof file: %v", err)
	}
	var w wireNode
	if err := json.Unmarshal(raw, &w); err != nil {
		log.Fatalf("parsing proof JSON: %v", err)
	}
	root := buildNode(w)

	var requestedKey [32]byte
	kb, err := hex.DecodeString(*keyHex)
	if err != nil {
		log.Fatalf("decoding requested_key: %v", err)
	}
	copy(requestedKey[:], kb)

	validator := mapproof.NewValidator(decodeHash(*rootHex), requestedKey, mapproof.RawBytesSerializer{}, hasherFactory(*hashFnName))
	if err := validator.Validate(root); err != nil {
		log.Fatalf("validating proof: %v", err)
	}

	fmt.Printf("status: %s\n", validator.Status())
	fmt.Printf("valid: %v\n", validator.IsValid())
	if validator.IsValid() && validator.HasValue() {
		fmt.Printf("value: %x\n", validator.Value())
	}
}
