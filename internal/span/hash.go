package span

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
)

// StableHash computes a deterministic, collision-resistant 64-character hex
// digest over v. Maps are re-encoded with sorted keys before hashing so that
// Go's randomized map iteration order never leaks into the digest — the same
// discipline the teacher applies when digesting rendered manifests
// (internal/inventory.ComputeManifestDigest), generalized from "a slice of
// resources" to "any canonicalizable payload".
//
// StableHash is the single hashing primitive behind every branded id
// (ExprId, NodeId components that need content hashing) and behind pipeline
// stage fingerprints and cache keys.
func StableHash(v any) string {
	h := sha256.New()
	h.Write(canonicalize(v))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// canonicalize renders v as JSON with map keys sorted at every level. Plain
// json.Marshal already sorts map[string]T keys, so the only extra work is
// normalizing slices of key-value pairs passed as []KV for order-independent
// sets (used by fingerprinting dep lists).
func canonicalize(v any) []byte {
	switch t := v.(type) {
	case KV:
		return canonicalizeKVs([]KV{t})
	case []KV:
		return canonicalizeKVs(t)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			// Canonicalization inputs are always JSON-marshalable internal
			// structs; a failure here is a programmer error, not a runtime
			// condition to recover from.
			panic(fmt.Sprintf("span: cannot canonicalize value for hashing: %v", err))
		}
		return b
	}
}

// KV is an order-independent key/value pair used when canonicalizing sets
// whose natural Go representation (a slice built during traversal) carries
// incidental order that must not affect the hash.
type KV struct {
	Key   string
	Value any
}

func canonicalizeKVs(kvs []KV) []byte {
	sorted := make([]KV, len(kvs))
	copy(sorted, kvs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })
	m := make(map[string]any, len(sorted))
	for _, kv := range sorted {
		m[kv.Key] = kv.Value
	}
	b, err := json.Marshal(m)
	if err != nil {
		panic(fmt.Sprintf("span: cannot canonicalize keyed set for hashing: %v", err))
	}
	return b
}
