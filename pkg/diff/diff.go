// Package diff computes structural deltas between two element collections.
//
// Each side supplies [Elements]: a mapping from an element-type tag (for
// example "nodes" or "commits") to the ordered elements of that type.
// [Compute] pairs elements by identifier and reports what was added, removed
// and modified per tag.
//
// # Identifiers
//
// An element's identifier is the first exported string field its struct type
// declares from ID, Name, Title, Label. Elements without such a field, or
// whose field is empty, are identified by value: their canonical JSON
// encoding. Value identity cannot express "modified", so a relabelled
// relationship without a stable identifier shows up as one removal plus one
// addition.
//
// # Equality
//
// Two elements sharing an identifier are modified when their canonical JSON
// encodings differ (see [hash.Equal]). This makes nil and empty slices
// compare by encoded value rather than by Go representation.
package diff

import (
	"reflect"
	"sort"

	"github.com/matzehuels/diagrams/pkg/hash"
)

// identifierFields lists the struct fields consulted for element identity,
// in priority order.
var identifierFields = []string{"ID", "Name", "Title", "Label"}

// Elements maps an element-type tag to the elements of that type.
type Elements map[string][]any

// Change pairs the old and new version of an element present on both sides.
type Change struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// Delta is the difference for one element type.
type Delta struct {
	Added    []any    `json:"added,omitempty"`
	Removed  []any    `json:"removed,omitempty"`
	Modified []Change `json:"modified,omitempty"`
}

// Empty reports whether the delta carries no changes.
func (d Delta) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Modified) == 0
}

// Result maps element-type tags to their deltas. Only tags with at least one
// change are present.
type Result map[string]Delta

// Empty reports whether no tag changed.
func (r Result) Empty() bool { return len(r) == 0 }

// Tags returns the changed tags in sorted order.
func (r Result) Tags() []string {
	tags := make([]string, 0, len(r))
	for t := range r {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Collect converts a typed slice into the []any form used by [Elements].
func Collect[T any](items []T) []any {
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}

// Compute returns the delta from self to other.
//
// Only tags present on both sides are compared; a tag supplied by one side
// alone is ignored. Added elements keep the order of other, removed and
// modified elements keep the order of self.
func Compute(self, other Elements) Result {
	result := Result{}
	for tag, selfItems := range self {
		otherItems, ok := other[tag]
		if !ok {
			continue
		}
		if d := compareCollection(selfItems, otherItems); !d.Empty() {
			result[tag] = d
		}
	}
	return result
}

func compareCollection(selfItems, otherItems []any) Delta {
	selfIdx := indexByIdentifier(selfItems)
	otherIdx := indexByIdentifier(otherItems)

	var d Delta
	for _, el := range otherItems {
		if _, ok := selfIdx[Identifier(el)]; !ok {
			d.Added = append(d.Added, el)
		}
	}
	for _, el := range selfItems {
		j, ok := otherIdx[Identifier(el)]
		if !ok {
			d.Removed = append(d.Removed, el)
			continue
		}
		if !hash.Equal(el, otherItems[j]) {
			d.Modified = append(d.Modified, Change{Old: el, New: otherItems[j]})
		}
	}
	return d
}

// indexByIdentifier maps each identifier to the position of its first element.
func indexByIdentifier(items []any) map[string]int {
	idx := make(map[string]int, len(items))
	for i, el := range items {
		key := Identifier(el)
		if _, seen := idx[key]; !seen {
			idx[key] = i
		}
	}
	return idx
}

// Identifier returns the key used to pair el with its counterpart.
// Keys derived from an identifying field are prefixed with the field name;
// value keys are prefixed with "value:".
func Identifier(el any) string {
	v := reflect.ValueOf(el)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return "value:null"
		}
		v = v.Elem()
	}
	if v.Kind() == reflect.Struct {
		for _, name := range identifierFields {
			f, ok := v.Type().FieldByName(name)
			if !ok || !f.IsExported() || f.Type.Kind() != reflect.String {
				continue
			}
			if s := v.FieldByIndex(f.Index).String(); s != "" {
				return name + ":" + s
			}
			break
		}
	}
	data, err := hash.Canonical(el)
	if err != nil {
		return "value:" + reflect.TypeOf(el).String()
	}
	return "value:" + string(data)
}
