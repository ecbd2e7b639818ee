// Package codec turns diagrams into envelope text and back.
//
// # Overview
//
// Encoding is direct: [Marshal] wraps a diagram with [diagram.ToEnvelope] and
// writes JSON. Decoding needs to know which concrete type to rebuild, so it
// goes through a [Registry] that maps envelope type names to load functions:
//
//	d, err := codec.Unmarshal(data)
//	if errs.Is(err, errs.ErrCodeUnknownType) { ... }
//
// [DefaultRegistry] knows every diagram in this module. Callers with their
// own diagram types build a registry with [NewRegistry] and pass it through
// [WithRegistry].
//
// # Accepted Input
//
// [Decoder.Decode] accepts envelope text ([]byte, string, io.Reader), an
// already parsed [diagram.Envelope], or a generic map such as the result of
// decoding JSON or YAML into map[string]any.
//
// # Errors
//
// Failures carry a code from the errors package:
//   - INVALID_FORMAT: the text is not valid JSON or YAML
//   - INVALID_ENVELOPE: the text parses but is not an envelope (not an
//     object, data not an object, version not a scalar)
//   - UNKNOWN_TYPE: the type field is missing or names no registered kind
//   - TYPE_MISMATCH: the type names an abstract kind that cannot be loaded
//   - CHECKSUM_MISMATCH: strict decoding found a stale checksum
//
// Errors returned by the concrete Load functions (VALIDATION_FAILED for
// broken references and the like) pass through unchanged.
//
// # Checksums
//
// By default a stale checksum is not an error: the diagram is returned with
// a [diagram.WarnChecksumMismatch] warning and its checksum recomputed from
// content. [WithStrictChecksum] turns the mismatch into an error.
package codec
