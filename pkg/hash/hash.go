// Package hash computes deterministic content digests for diagram payloads.
//
// Payloads are first encoded as canonical JSON: object keys sorted, no
// insignificant whitespace, numbers preserved exactly as encoded. Two payloads
// that encode to the same JSON value therefore hash identically, regardless
// of map iteration order or object identity.
//
// [Checksum] produces the 64-character SHA-256 hex digest stored on every
// diagram. [ContentID] produces a CIDv1 string for content-addressed storage.
package hash

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	gocid "github.com/ipfs/go-cid"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multihash"
)

// Canonical produces a deterministic JSON encoding of v with sorted keys.
// Struct field order, map iteration order and indentation do not affect the
// result. Array order is preserved.
func Canonical(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return canonicalEncode(raw)
}

func canonicalEncode(v any) ([]byte, error) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buf := []byte{'{'}
		for i, k := range keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			keyBytes, _ := json.Marshal(k)
			buf = append(buf, keyBytes...)
			buf = append(buf, ':')
			valBytes, err := canonicalEncode(val[k])
			if err != nil {
				return nil, err
			}
			buf = append(buf, valBytes...)
		}
		buf = append(buf, '}')
		return buf, nil

	case []any:
		buf := []byte{'['}
		for i, item := range val {
			if i > 0 {
				buf = append(buf, ',')
			}
			itemBytes, err := canonicalEncode(item)
			if err != nil {
				return nil, err
			}
			buf = append(buf, itemBytes...)
		}
		buf = append(buf, ']')
		return buf, nil

	case json.Number:
		return []byte(val.String()), nil

	default:
		return json.Marshal(v)
	}
}

// Checksum returns the SHA-256 hex digest of the canonical encoding of v.
// Values that cannot be encoded, such as non-finite floats, are an error.
func Checksum(v any) (string, error) {
	data, err := Canonical(v)
	if err != nil {
		return "", err
	}
	return Sum(data), nil
}

// Sum computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Sum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Equal reports whether a and b have the same canonical encoding.
// Values that fail to encode are never equal.
func Equal(a, b any) bool {
	ca, err := Canonical(a)
	if err != nil {
		return false
	}
	cb, err := Canonical(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ca, cb)
}

// ContentID computes a CIDv1 (raw codec, SHA2-256) for data and returns its
// base32 multibase encoding.
func ContentID(data []byte) (string, error) {
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return "", fmt.Errorf("multihash: %w", err)
	}
	c := gocid.NewCidV1(gocid.Raw, mh)
	encoded, err := multibase.Encode(multibase.Base32, c.Bytes())
	if err != nil {
		return "", fmt.Errorf("multibase: %w", err)
	}
	return encoded, nil
}

// ParseContentID decodes a string produced by [ContentID] and returns the
// hex SHA-256 digest it addresses.
func ParseContentID(s string) (string, error) {
	_, raw, err := multibase.Decode(s)
	if err != nil {
		return "", fmt.Errorf("decode content id: %w", err)
	}
	c, err := gocid.Cast(raw)
	if err != nil {
		return "", fmt.Errorf("cast content id: %w", err)
	}
	decoded, err := multihash.Decode(c.Hash())
	if err != nil {
		return "", fmt.Errorf("decode multihash: %w", err)
	}
	return hex.EncodeToString(decoded.Digest), nil
}
