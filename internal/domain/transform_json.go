package domain

import "encoding/json"

// transformEnvelope is the persisted/wire form of a transform: the concrete
// fields plus a "kind" discriminator.
type transformEnvelope struct {
	Kind TransformKind `json:"kind"`
}

// MarshalTransform encodes a transform as a flat JSON object with a "kind"
// discriminator alongside the variant's own fields.
func MarshalTransform(t Transform) ([]byte, error) {
	body, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	kind, err := json.Marshal(t.Kind())
	if err != nil {
		return nil, err
	}
	fields["kind"] = kind
	return json.Marshal(fields)
}

// UnmarshalTransform decodes a transform from its envelope form.
func UnmarshalTransform(data []byte) (Transform, error) {
	var env transformEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, ErrValidation("transform envelope: %v", err)
	}
	switch env.Kind {
	case KindCustomColumn:
		var t CustomColumn
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, ErrValidation("custom_column transform: %v", err)
		}
		return t, nil
	case KindComputed:
		var t Computed
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, ErrValidation("computed transform: %v", err)
		}
		return t, nil
	case KindCase:
		var t Case
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, ErrValidation("case transform: %v", err)
		}
		return t, nil
	case KindReplace:
		var t Replace
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, ErrValidation("replace transform: %v", err)
		}
		return t, nil
	case KindTranslate:
		var t Translate
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, ErrValidation("translate transform: %v", err)
		}
		return t, nil
	case KindNullHandling:
		var t NullHandling
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, ErrValidation("null_handling transform: %v", err)
		}
		return t, nil
	case KindUnpivot:
		var t Unpivot
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, ErrValidation("unpivot transform: %v", err)
		}
		return t, nil
	case KindJoin:
		var t Join
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, ErrValidation("join transform: %v", err)
		}
		return t, nil
	case "":
		return nil, ErrValidation("transform envelope is missing kind")
	default:
		return nil, ErrValidation("unknown transform kind %q", env.Kind)
	}
}

// TransformList is a JSON-decodable slice of transform envelopes.
type TransformList []Transform

// UnmarshalJSON decodes each element through UnmarshalTransform.
func (l *TransformList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return ErrValidation("transform list: %v", err)
	}
	out := make(TransformList, 0, len(raw))
	for i, r := range raw {
		t, err := UnmarshalTransform(r)
		if err != nil {
			return ErrValidation("transform %d: %v", i, err)
		}
		out = append(out, t)
	}
	*l = out
	return nil
}

// MarshalJSON encodes each element through MarshalTransform.
func (l TransformList) MarshalJSON() ([]byte, error) {
	raw := make([]json.RawMessage, 0, len(l))
	for _, t := range l {
		b, err := MarshalTransform(t)
		if err != nil {
			return nil, err
		}
		raw = append(raw, b)
	}
	return json.Marshal(raw)
}
