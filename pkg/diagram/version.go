package diagram

import (
	"bytes"
	"encoding/json"
	"strconv"

	errs "github.com/matzehuels/diagrams/pkg/errors"
)

// DefaultVersion is used when a diagram is created without a version.
var DefaultVersion = IntVersion(1)

type versionKind uint8

const (
	versionAbsent versionKind = iota
	versionString
	versionInt
)

// Version is an opaque caller-supplied token: a string, an integer, or
// absent. The zero value is absent. Versions are comparable with ==.
type Version struct {
	kind versionKind
	str  string
	num  int64
}

// StringVersion returns a string version token.
func StringVersion(s string) Version {
	return Version{kind: versionString, str: s}
}

// IntVersion returns an integer version token.
func IntVersion(n int64) Version {
	return Version{kind: versionInt, num: n}
}

// IsZero reports whether the version is absent.
func (v Version) IsZero() bool { return v.kind == versionAbsent }

// Int returns the integer value and true for integer versions.
func (v Version) Int() (int64, bool) { return v.num, v.kind == versionInt }

// String returns the token as text; absent versions print as "".
func (v Version) String() string {
	switch v.kind {
	case versionString:
		return v.str
	case versionInt:
		return strconv.FormatInt(v.num, 10)
	default:
		return ""
	}
}

// MarshalJSON encodes strings as JSON strings, integers as numbers and an
// absent version as null.
func (v Version) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case versionString:
		return json.Marshal(v.str)
	case versionInt:
		return []byte(strconv.FormatInt(v.num, 10)), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a string, an integer or null.
func (v *Version) UnmarshalJSON(data []byte) error {
	parsed, err := ParseVersion(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseVersion decodes a raw JSON version token. Empty input and null yield
// an absent version. Anything other than a string or an integer is an
// INVALID_ENVELOPE error.
func ParseVersion(raw json.RawMessage) (Version, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Version{}, nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return Version{}, errs.Wrap(errs.ErrCodeInvalidEnvelope, err, "invalid version")
		}
		return StringVersion(s), nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var tok any
	if err := dec.Decode(&tok); err != nil {
		return Version{}, errs.Wrap(errs.ErrCodeInvalidEnvelope, err, "invalid version")
	}
	if num, ok := tok.(json.Number); ok {
		if n, err := num.Int64(); err == nil {
			return IntVersion(n), nil
		}
	}
	return Version{}, errs.New(errs.ErrCodeInvalidEnvelope,
		"version must be a string, an integer or null, got %s", trimmed)
}

// VersionOf converts a decoded scalar (string, integer or integral float,
// as produced by JSON and YAML decoders) into a Version.
func VersionOf(v any) (Version, error) {
	switch val := v.(type) {
	case nil:
		return Version{}, nil
	case string:
		return StringVersion(val), nil
	case int:
		return IntVersion(int64(val)), nil
	case int64:
		return IntVersion(val), nil
	case uint64:
		if val <= 1<<63-1 {
			return IntVersion(int64(val)), nil
		}
	case float64:
		if val == float64(int64(val)) {
			return IntVersion(int64(val)), nil
		}
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return IntVersion(n), nil
		}
	}
	return Version{}, errs.New(errs.ErrCodeInvalidEnvelope,
		"version must be a string, an integer or null, got %v", v)
}
