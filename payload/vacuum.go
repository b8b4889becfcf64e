package payload

// Vacuum removes null values and empty containers from v, recursively.
//
// A mapping or list that ends up empty is itself removed, so the result is
// null when nothing is left. Other scalars, including false, 0 and "", are
// kept. Vacuum never modifies v.
func Vacuum(v Value) Value {
	switch v.kind {
	case KindList:
		l := make([]Value, 0, len(v.list))
		for _, e := range v.list {
			if ve := Vacuum(e); !ve.IsNull() {
				l = append(l, ve)
			}
		}
		if len(l) == 0 {
			return Null()
		}
		return Value{kind: KindList, list: l}
	case KindMap:
		m := make(map[string]Value, len(v.m))
		for k, e := range v.m {
			if ve := Vacuum(e); !ve.IsNull() {
				m[k] = ve
			}
		}
		if len(m) == 0 {
			return Null()
		}
		return Value{kind: KindMap, m: m}
	default:
		return v
	}
}
