package agent

import (
	"encoding/json"
	"errors"
	"strings"
)

var ErrUnrecognizedShape = errors.New("unrecognized agent response shape")

// Shape locates a candidate result inside a decoded envelope. Locate must be
// pure; acceptance against the capability's required fields happens after.
type Shape struct {
	Name   string
	Locate func(root any, resultKey string) (any, bool)
}

func pathShape(name string, keys ...string) Shape {
	return Shape{
		Name: name,
		Locate: func(root any, resultKey string) (any, bool) {
			resolved := make([]string, len(keys))
			for i, k := range keys {
				if k == "" {
					k = resultKey
				}
				resolved[i] = k
			}
			return lookup(root, resolved...)
		},
	}
}

// DefaultShapes is the envelope priority order. Support for a new agent
// response layout is added by appending here.
func DefaultShapes() []Shape {
	return []Shape{
		pathShape("result.Output.result", "result", "Output", "result"),
		pathShape("result.Output.<key>", "result", "Output", ""),
		pathShape("result.Output", "result", "Output"),
		pathShape("result.<key>", "result", ""),
		pathShape("Output.<key>", "Output", ""),
		pathShape("<key>", ""),
		pathShape("result", "result"),
		pathShape("flat"),
	}
}

// lookup walks nested objects. String values that hold JSON are decoded on
// the way, since agents often return their output as text.
func lookup(root any, keys ...string) (any, bool) {
	cur := unwrapString(root)
	for _, k := range keys {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		next, ok := obj[k]
		if !ok {
			return nil, false
		}
		cur = unwrapString(next)
	}
	return cur, true
}

func unwrapString(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}

	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}

	if !strings.HasPrefix(s, "{") && !strings.HasPrefix(s, "[") {
		return v
	}

	var decoded any
	if err := json.Unmarshal([]byte(s), &decoded); err != nil {
		return v
	}
	return decoded
}

func hasKind(v any, kind FieldKind) bool {
	switch kind {
	case KindBool:
		_, ok := v.(bool)
		return ok
	case KindNumber:
		_, ok := v.(float64)
		return ok
	case KindString:
		_, ok := v.(string)
		return ok
	case KindArray:
		_, ok := v.([]any)
		return ok
	case KindObject:
		_, ok := v.(map[string]any)
		return ok
	}
	return false
}

func accepts(candidate any, spec Spec) (map[string]any, bool) {
	obj, ok := candidate.(map[string]any)
	if !ok {
		return nil, false
	}

	for _, f := range spec.Required {
		v, ok := obj[f.Name]
		if !ok {
			return nil, false
		}
		if !hasKind(unwrapString(v), f.Kind) {
			return nil, false
		}
	}

	return obj, true
}

// Extract tries each shape in order and returns the first candidate whose
// required fields are all present and correctly typed.
func Extract(root any, spec Spec, shapes []Shape) (map[string]any, string, error) {
	for _, shape := range shapes {
		candidate, ok := shape.Locate(root, spec.ResultKey)
		if !ok {
			continue
		}

		obj, ok := accepts(candidate, spec)
		if !ok {
			continue
		}

		for _, f := range spec.Required {
			obj[f.Name] = unwrapString(obj[f.Name])
		}

		return obj, shape.Name, nil
	}

	return nil, "", ErrUnrecognizedShape
}
