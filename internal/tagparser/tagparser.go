package tagparser

import "strings"

// ParsedTag represents a parsed json struct tag as used for GraphQL input
// object rendering.
type ParsedTag struct {
	// Name is the serialized field name (the part before the first comma).
	Name string
	// OmitEmpty indicates the omitempty option is present.
	OmitEmpty bool
	// Skip indicates the field is excluded ("-" or no usable name).
	Skip bool
}

// ParseJSONTag parses a json struct tag value.
// Examples:
//   - "variantId" -> {Name: "variantId"}
//   - "email,omitempty" -> {Name: "email", OmitEmpty: true}
//   - "-" -> {Skip: true}
//   - "" -> {Skip: true}
func ParseJSONTag(tag string) ParsedTag {
	if tag == "" || tag == "-" {
		return ParsedTag{Skip: true}
	}

	name := tag
	var opts string
	if idx := strings.IndexByte(tag, ','); idx != -1 {
		name, opts = tag[:idx], tag[idx+1:]
	}
	if name == "" || name == "-" {
		return ParsedTag{Skip: true}
	}

	parsed := ParsedTag{Name: name}
	for opts != "" {
		var opt string
		if idx := strings.IndexByte(opts, ','); idx != -1 {
			opt, opts = opts[:idx], opts[idx+1:]
		} else {
			opt, opts = opts, ""
		}
		if opt == "omitempty" {
			parsed.OmitEmpty = true
		}
	}
	return parsed
}
