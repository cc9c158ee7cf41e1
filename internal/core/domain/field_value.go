package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ValueKind tags the variant held by a FieldValue.
type ValueKind string

const (
	KindNull   ValueKind = ""
	KindText   ValueKind = "text"
	KindBool   ValueKind = "boolean"
	KindNumber ValueKind = "number"
	KindOpaque ValueKind = "opaque"
)

// CSVFieldName is the reserved custom field that holds rows ingested from CSV uploads.
const CSVFieldName = "csvData"

// CustomFieldValue is an answer to one of a TaskType's declared fields.
type CustomFieldValue struct {
	FieldName string     `json:"fieldName"`
	FieldKind string     `json:"fieldKind"`
	Value     FieldValue `json:"value"`
}

// FieldValue is a tagged union over text, boolean, number and opaque values.
// The zero value is null.
type FieldValue struct {
	kind   ValueKind
	text   string
	flag   bool
	number float64
	opaque any
}

func TextValue(s string) FieldValue    { return FieldValue{kind: KindText, text: s} }
func BoolValue(b bool) FieldValue      { return FieldValue{kind: KindBool, flag: b} }
func NumberValue(n float64) FieldValue { return FieldValue{kind: KindNumber, number: n} }

// OpaqueValue wraps structured data (lists, objects) the core does not interpret.
func OpaqueValue(v any) FieldValue {
	if v == nil {
		return FieldValue{}
	}
	return FieldValue{kind: KindOpaque, opaque: v}
}

// ValueOf classifies a decoded JSON or BSON value.
func ValueOf(v any) FieldValue {
	switch x := v.(type) {
	case nil:
		return FieldValue{}
	case FieldValue:
		return x
	case string:
		return TextValue(x)
	case bool:
		return BoolValue(x)
	case float64:
		return NumberValue(x)
	case float32:
		return NumberValue(float64(x))
	case int:
		return NumberValue(float64(x))
	case int32:
		return NumberValue(float64(x))
	case int64:
		return NumberValue(float64(x))
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return NumberValue(f)
		}
		return TextValue(x.String())
	default:
		return OpaqueValue(x)
	}
}

func (v FieldValue) Kind() ValueKind { return v.kind }
func (v FieldValue) IsNull() bool    { return v.kind == KindNull }

// Text returns the string variant.
func (v FieldValue) Text() (string, bool) { return v.text, v.kind == KindText }

// Bool returns the boolean variant.
func (v FieldValue) Bool() (bool, bool) { return v.flag, v.kind == KindBool }

// Number returns the numeric variant.
func (v FieldValue) Number() (float64, bool) { return v.number, v.kind == KindNumber }

// Interface returns the held value as a plain Go value.
func (v FieldValue) Interface() any {
	switch v.kind {
	case KindText:
		return v.text
	case KindBool:
		return v.flag
	case KindNumber:
		return v.number
	case KindOpaque:
		return v.opaque
	}
	return nil
}

func (v FieldValue) String() string {
	return fmt.Sprintf("%s(%v)", v.kind, v.Interface())
}

func (v FieldValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func (v *FieldValue) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = ValueOf(raw)
	return nil
}
