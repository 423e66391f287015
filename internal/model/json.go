package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// MarshalJSON writes the draft as a flat object. Legacy alias names are
// mirrored from their canonical fields so older readers keep working.
func (f FormData) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(f.Extensions)+len(stringFieldNames)+len(amountFieldNames)+5)
	for k, v := range f.Extensions {
		out[k] = jsonSafe(v)
	}

	for _, name := range stringFieldNames {
		if p := *stringFields[name](&f); p != nil {
			out[name] = *p
		}
	}
	for _, name := range amountFieldNames {
		if p := *amountFields[name](&f); p != nil {
			out[name] = *p
		}
	}
	for legacy, canonical := range Aliases {
		if v, ok := out[canonical]; ok {
			out[legacy] = v
		}
	}

	out[FieldOrderIntakeFiles] = nonNilFiles(f.OrderIntakeFiles)
	out[FieldInternalComments] = nonNilComments(f.InternalComments)
	if f.DesignerUploads != nil {
		out[FieldDesignerUploads] = f.DesignerUploads
	}

	return json.Marshal(out)
}

// UnmarshalJSON reads a flat object. Null values are treated as absent, and a
// legacy name is only used when its canonical field is absent.
func (f *FormData) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decode form data: %w", err)
	}

	next := FormData{}
	for name, raw := range fields {
		if isNull(raw) {
			continue
		}
		if canonical, ok := Aliases[name]; ok {
			if c, present := fields[canonical]; present && !isNull(c) {
				continue
			}
		}

		value, err := decodeFieldValue(name, raw)
		if err != nil {
			return fmt.Errorf("decode %s: %w", name, err)
		}
		if err := next.SetField(name, value); err != nil {
			return err
		}
	}

	if next.OrderIntakeFiles == nil {
		next.OrderIntakeFiles = []UploadMeta{}
	}
	if next.InternalComments == nil {
		next.InternalComments = map[string]string{}
	}

	*f = next
	return nil
}

func decodeFieldValue(name string, raw json.RawMessage) (any, error) {
	switch CanonicalField(name) {
	case FieldOrderIntakeFiles:
		var v []UploadMeta
		err := json.Unmarshal(raw, &v)
		return v, err
	case FieldInternalComments:
		var v map[string]string
		err := json.Unmarshal(raw, &v)
		return v, err
	case FieldDesignerUploads:
		var v map[string][]DesignerUpload
		err := json.Unmarshal(raw, &v)
		return v, err
	}

	if IsNumericField(name) {
		var a Amount
		err := a.UnmarshalJSON(raw)
		return a, err
	}

	var v any
	err := json.Unmarshal(raw, &v)
	return v, err
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func nonNilFiles(files []UploadMeta) []UploadMeta {
	if files == nil {
		return []UploadMeta{}
	}
	return files
}

func nonNilComments(comments map[string]string) map[string]string {
	if comments == nil {
		return map[string]string{}
	}
	return comments
}

// jsonSafe replaces values encoding/json rejects with nil, so a stray NaN
// becomes null instead of failing the whole draft. Maps and slices are
// copied, never modified in place.
func jsonSafe(v any) any {
	switch t := v.(type) {
	case nil, string, bool, json.Number, json.RawMessage,
		int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return v
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		return v
	case float32:
		if math.IsNaN(float64(t)) || math.IsInf(float64(t), 0) {
			return nil
		}
		return v
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = jsonSafe(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = jsonSafe(e)
		}
		return out
	}
	if _, err := json.Marshal(v); err != nil {
		return nil
	}
	return v
}
