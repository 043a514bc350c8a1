package mapping

// FieldMapping is the resolved canonical-field → source-column table.
// Every canonical field has an entry; a field with no usable source
// resolves to its own id, a key guaranteed not to exist in the data so
// lookups through it yield the empty value.
type FieldMapping map[Field]string

// Column returns the resolved source column for a field. The table is
// total, so the second return only guards against a hand-built map.
func (m FieldMapping) Column(f Field) string {
	if col, ok := m[f]; ok {
		return col
	}
	return string(f)
}

// HasExplicit reports whether the field resolved to a real source
// column rather than falling back to its own id.
func (m FieldMapping) HasExplicit(f Field) bool {
	col, ok := m[f]
	return ok && col != string(f)
}

// Clone returns a copy of the table.
func (m FieldMapping) Clone() FieldMapping {
	out := make(FieldMapping, len(m))
	for f, col := range m {
		out[f] = col
	}
	return out
}

// Resolve walks each canonical field's alias chain against the supplied
// alias-id → source-column assignments and produces the immutable
// resolution table. First alias with an assignment wins. The category
// L2/L3 fields default to the next-higher resolved level when absent,
// so every row has a non-empty L1-rooted category path. Resolution is a
// single pass and is idempotent.
func Resolve(assignments map[string]string) FieldMapping {
	resolved := make(FieldMapping, len(Fields))

	for _, field := range Fields {
		col := ""
		for _, alias := range Aliases(field) {
			if c, ok := assignments[alias]; ok && c != "" {
				col = c
				break
			}
		}
		if col != "" {
			resolved[field] = col
		}
	}

	// Lower category levels inherit the next-higher resolved column.
	if _, ok := resolved[FieldCategoryL2]; !ok {
		if l1, ok := resolved[FieldCategoryL1]; ok {
			resolved[FieldCategoryL2] = l1
		}
	}
	if _, ok := resolved[FieldCategoryL3]; !ok {
		if l2, ok := resolved[FieldCategoryL2]; ok {
			resolved[FieldCategoryL3] = l2
		}
	}

	// Unresolved fields fall back to their own id so the table is total.
	for _, field := range Fields {
		if _, ok := resolved[field]; !ok {
			resolved[field] = string(field)
		}
	}

	return resolved
}

// Assignments converts a resolved table back into alias-id assignments,
// the shape Resolve accepts. Round-tripping through Resolve yields an
// identical table.
func (m FieldMapping) Assignments() map[string]string {
	out := make(map[string]string, len(m))
	for f, col := range m {
		out[string(f)] = col
	}
	return out
}
