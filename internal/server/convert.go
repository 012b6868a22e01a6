package server

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"
)

// toStruct converts anything that marshals to a JSON object.
func toStruct(v any) (*structpb.Struct, error) {
	m, err := toMap(v)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

func toMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return m, nil
}

func stringField(in *structpb.Struct, key string) string {
	if v, ok := in.GetFields()[key]; ok {
		return strings.TrimSpace(v.GetStringValue())
	}
	return ""
}

// intField returns def when key is absent; present values must be whole
// numbers within [min, max].
func intField(in *structpb.Struct, key string, def, min, max int) (int, error) {
	v, ok := in.GetFields()[key]
	if !ok {
		return def, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%s must be a number", key)
	}
	f := n.NumberValue
	if f != math.Trunc(f) || f < float64(min) || f > float64(max) {
		return 0, fmt.Errorf("%s must be a whole number between %d and %d", key, min, max)
	}
	return int(f), nil
}

func boolField(in *structpb.Struct, key string, def bool) bool {
	v, ok := in.GetFields()[key]
	if !ok {
		return def
	}
	if b, ok := v.GetKind().(*structpb.Value_BoolValue); ok {
		return b.BoolValue
	}
	return def
}
