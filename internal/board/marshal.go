package board

import (
	"encoding/json"
	"fmt"
)

// envelope carries the discriminator beside the flattened variant payload.
// Marshal injects "type"; Unmarshal peeks it to pick the concrete struct.
type envelope struct {
	Type Kind `json:"type"`
}

// MarshalObject serializes an object with its kind discriminator inline,
// e.g. {"type":"sticky","id":"…","x":0,…}. The output round-trips through
// UnmarshalObject and is the wire form used by selection clipboards and the
// snapshot layer.
func MarshalObject(o Object) ([]byte, error) {
	payload, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", o.Kind(), err)
	}

	// Splice the discriminator into the flat payload rather than nesting
	// it, so consumers see one object with a "type" field.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("marshal %s: %w", o.Kind(), err)
	}
	fields["type"] = json.RawMessage(fmt.Sprintf("%q", o.Kind()))

	out, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", o.Kind(), err)
	}
	return out, nil
}

// UnmarshalObject parses data produced by MarshalObject back into the
// matching concrete variant.
func UnmarshalObject(data []byte) (Object, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal object: %w", err)
	}

	var obj Object
	switch env.Type {
	case KindSticky:
		obj = &Sticky{}
	case KindShape:
		obj = &Shape{}
	case KindText:
		obj = &Text{}
	case KindConnector:
		obj = &Connector{}
	case KindFrame:
		obj = &Frame{}
	case KindTable:
		obj = &Table{}
	default:
		return nil, fmt.Errorf("unmarshal object: unknown type %q", env.Type)
	}

	if err := json.Unmarshal(data, obj); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", env.Type, err)
	}
	return obj, nil
}

// MarshalObjects serializes a slice of objects as a JSON array, preserving
// order. Used by selection serialization.
func MarshalObjects(objs []Object) ([]byte, error) {
	parts := make([]json.RawMessage, len(objs))
	for i, o := range objs {
		raw, err := MarshalObject(o)
		if err != nil {
			return nil, err
		}
		parts[i] = raw
	}
	return json.Marshal(parts)
}

// UnmarshalObjects parses a JSON array produced by MarshalObjects.
func UnmarshalObjects(data []byte) ([]Object, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return nil, fmt.Errorf("unmarshal objects: %w", err)
	}
	objs := make([]Object, len(parts))
	for i, raw := range parts {
		o, err := UnmarshalObject(raw)
		if err != nil {
			return nil, fmt.Errorf("objects[%d]: %w", i, err)
		}
		objs[i] = o
	}
	return objs, nil
}
