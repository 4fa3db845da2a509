// SPDX-License-Identifier: MPL-2.0

package schema

// complexTypes is the fixed set of base types treated as structured data.
var complexTypes = map[string]bool{
	TypeObject: true,
	TypeArray:  true,
	TypeMap:    true,
}

// IsComplexType unwraps modifier layers and reports whether the base type is
// an object, array or map.
func IsComplexType(s Schema) bool {
	if s == nil {
		return false
	}
	return complexTypes[s.Unwrap().TypeName()]
}

// GetMeta returns the schema's metadata, or the zero Meta for a nil schema.
// Metadata declared on a modifier layer wins over the unwrapped base.
func GetMeta(s Schema) Meta {
	if s == nil {
		return Meta{}
	}
	m := s.Meta()
	base := s.Unwrap().Meta()
	if m.FileCheck == nil {
		m.FileCheck = base.FileCheck
	}
	if m.DisplayName == "" {
		m.DisplayName = base.DisplayName
	}
	return m
}

// ShouldFileCheck reports whether raw string values for s may be loaded from a
// file or parsed as inline JSON. An explicit fileCheck always wins; otherwise
// structured types are checked and scalars are taken literally.
func ShouldFileCheck(s Schema) bool {
	if fc := GetMeta(s).FileCheck; fc != nil {
		return *fc
	}
	return IsComplexType(s)
}

// DisplayName returns the declared display name, falling back to name.
func DisplayName(s Schema, name string) string {
	if dn := GetMeta(s).DisplayName; dn != "" {
		return dn
	}
	return name
}
