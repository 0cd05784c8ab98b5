package config

// DeepMerge merges src into dst and returns the result. Neither input is
// modified. When both sides hold a JSON object for the same key the merge
// recurses; any other value in src overwrites the value in dst.
func DeepMerge(dst, src map[string]any) map[string]any {
	out := make(map[string]any, len(dst)+len(src))
	for k, v := range dst {
		out[k] = deepCopy(v)
	}
	for k, v := range src {
		if dm, ok := out[k].(map[string]any); ok {
			if sm, ok := v.(map[string]any); ok {
				out[k] = DeepMerge(dm, sm)
				continue
			}
		}
		out[k] = deepCopy(v)
	}
	return out
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = deepCopy(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCopy(e)
		}
		return out
	default:
		return v
	}
}

// cloneDocument deep-copies a configuration document.
func cloneDocument(doc map[string]any) map[string]any {
	return deepCopy(doc).(map[string]any)
}

// section returns the named object section of a document, creating it in
// the returned map if absent.
func section(doc map[string]any, name string) map[string]any {
	if s, ok := doc[name].(map[string]any); ok {
		return s
	}
	s := map[string]any{}
	doc[name] = s
	return s
}
