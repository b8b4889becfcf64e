package payload

import "strings"

// Serialize flattens v into the canonical text used as signing input.
//
// Mapping entries are written in ascending byte-wise key order as the key
// followed by the serialized value. List elements are written in order.
// Scalars are written in their textual form (see Value.Text). No separators
// are emitted, so the result depends only on the tree and never on the
// insertion order of any mapping.
func Serialize(v Value) string {
	var sb strings.Builder
	serialize(&sb, v)
	return sb.String()
}

func serialize(sb *strings.Builder, v Value) {
	switch v.kind {
	case KindList:
		for _, e := range v.list {
			serialize(sb, e)
		}
	case KindMap:
		for _, k := range v.Keys() {
			sb.WriteString(k)
			serialize(sb, v.m[k])
		}
	default:
		sb.WriteString(v.Text())
	}
}
