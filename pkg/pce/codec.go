package pce

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// ObjectEncoder is implemented by types whose wire form is not the
// field-by-field encoding of their struct, such as label sets and
// pairing key usage limits.
type ObjectEncoder interface {
	EncodeObject() (any, error)
}

// ObjectDecoder is the decode-side counterpart of ObjectEncoder.
type ObjectDecoder interface {
	DecodeObject(data json.RawMessage) error
}

// Decode populates out from data. data may be raw JSON ([]byte or
// json.RawMessage) or an already-decoded value of the same type as out,
// in which case decoding is a copy and a no-op otherwise. out must be a
// non-nil pointer to a struct. The decoded object is validated before
// Decode returns.
func Decode(data any, out any) error {
	if data == nil {
		return nil
	}

	outValue := reflect.ValueOf(out)
	if outValue.Kind() != reflect.Pointer || outValue.IsNil() {
		return fmt.Errorf("decoding object: out must be a non-nil pointer, got %T: %w", out, ErrUnexpectedBody)
	}

	var raw json.RawMessage

	switch v := data.(type) {
	case json.RawMessage:
		raw = v
	case []byte:
		raw = v
	default:
		// Already-typed values pass through unchanged.
		dataValue := reflect.ValueOf(data)
		if dataValue.Type() == outValue.Type() {
			outValue.Elem().Set(dataValue.Elem())

			return Validate(out)
		}

		if dataValue.Type() == outValue.Elem().Type() {
			outValue.Elem().Set(dataValue)

			return Validate(out)
		}

		return fmt.Errorf("decoding object: cannot decode %T into %T: %w", data, out, ErrUnexpectedBody)
	}

	if decoder, ok := out.(ObjectDecoder); ok {
		err := decoder.DecodeObject(raw)
		if err != nil {
			return err
		}

		return Validate(out)
	}

	err := decodeStruct(raw, outValue.Elem())
	if err != nil {
		return err
	}

	return Validate(out)
}

// Unmarshal decodes raw JSON into a new value of type T.
func Unmarshal[T any](data []byte) (*T, error) {
	out := new(T)

	err := Decode(json.RawMessage(data), out)
	if err != nil {
		return nil, err
	}

	return out, nil
}

func decodeStruct(raw json.RawMessage, v reflect.Value) error {
	if isJSONNull(raw) {
		return nil
	}

	if v.Kind() != reflect.Struct {
		return json.Unmarshal(raw, v.Addr().Interface())
	}

	var fields map[string]json.RawMessage

	err := json.Unmarshal(raw, &fields)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", v.Type().Name(), err)
	}

	model := ModelOf(v.Type())

	var extra Extra

	for name, fieldRaw := range fields {
		descriptor, known := model.Field(name)
		if !known {
			if model.HasExtra() {
				if extra == nil {
					extra = make(Extra)
				}

				extra[name] = fieldRaw
			}

			continue
		}

		err := decodeField(descriptor, fieldRaw, v.FieldByIndex(descriptor.Index))
		if err != nil {
			return fmt.Errorf("decoding %s.%s: %w", v.Type().Name(), name, err)
		}
	}

	if extra != nil {
		v.FieldByIndex(model.extraIndex).Set(reflect.ValueOf(extra))
	}

	return nil
}

func decodeField(descriptor *FieldDescriptor, raw json.RawMessage, v reflect.Value) error {
	if isJSONNull(raw) {
		return nil
	}

	switch descriptor.Kind {
	case KindScalar:
		return json.Unmarshal(raw, v.Addr().Interface())
	case KindObject:
		return decodeObjectField(raw, v)
	case KindList:
		return decodeList(descriptor, raw, v)
	case KindReference:
		return decodeReference(raw, v)
	case KindUnion:
		return decodeUnion(descriptor, raw, v)
	default:
		return json.Unmarshal(raw, v.Addr().Interface())
	}
}

func decodeObjectField(raw json.RawMessage, v reflect.Value) error {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}

		v = v.Elem()
	}

	if decoder, ok := v.Addr().Interface().(ObjectDecoder); ok {
		return decoder.DecodeObject(raw)
	}

	return decodeStruct(raw, v)
}

// decodeList always produces a non-nil slice for an empty JSON array so
// that empty and absent collections stay distinguishable.
func decodeList(descriptor *FieldDescriptor, raw json.RawMessage, v reflect.Value) error {
	if v.Type() == rawMessageType {
		return json.Unmarshal(raw, v.Addr().Interface())
	}

	var elements []json.RawMessage

	err := json.Unmarshal(raw, &elements)
	if err != nil {
		return err
	}

	slice := reflect.MakeSlice(v.Type(), len(elements), len(elements))
	for i, elementRaw := range elements {
		err := decodeField(descriptor.Elem, elementRaw, slice.Index(i))
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}

	v.Set(slice)

	return nil
}

func decodeReference(raw json.RawMessage, v reflect.Value) error {
	ref := &Reference{}

	// Bare JSON strings are HREFs.
	if len(raw) > 0 && raw[0] == '"' {
		err := json.Unmarshal(raw, &ref.Href)
		if err != nil {
			return err
		}
	} else {
		err := json.Unmarshal(raw, ref)
		if err != nil {
			return err
		}
	}

	v.Set(reflect.ValueOf(ref))

	return nil
}

// decodeUnion tries the registered members in declaration order and
// commits to the first structurally compatible one. A bare JSON string
// commits to Reference without attempting object decode.
func decodeUnion(descriptor *FieldDescriptor, raw json.RawMessage, v reflect.Value) error {
	members, ok := UnionMembers(descriptor.Type)
	if !ok {
		return fmt.Errorf("union %s has no registered members: %w", descriptor.Type, ErrUnexpectedBody)
	}

	if len(raw) > 0 && raw[0] == '"' {
		return decodeReference(raw, v)
	}

	var fields map[string]json.RawMessage

	err := json.Unmarshal(raw, &fields)
	if err != nil {
		return err
	}

	for _, member := range members {
		if member == referenceType {
			// Reference only claims a lone href key; richer objects
			// fall through to their full member type.
			if _, ok := fields["href"]; !ok || len(fields) > 1 {
				continue
			}
		} else if !structurallyCompatible(fields, ModelOf(member)) {
			continue
		}

		candidate := reflect.New(member)

		err := decodeStruct(raw, candidate.Elem())
		if err != nil {
			return err
		}

		v.Set(candidate)

		return nil
	}

	return fmt.Errorf("no union member of %s matches keys in %s: %w", descriptor.Type, string(raw), ErrUnexpectedBody)
}

// structurallyCompatible reports whether at least one key of the raw
// object is a known field of the model.
func structurallyCompatible(fields map[string]json.RawMessage, model *TypeModel) bool {
	for name := range fields {
		if _, ok := model.byName[name]; ok {
			return true
		}
	}

	return false
}

func isJSONNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// Encode converts an object to its wire representation: a value that
// json.Marshal renders as the PCE expects. Nil and empty-string fields
// are elided, Referable fields are flattened to bare HREFs, and Extra
// keys are merged back in without overriding typed fields.
func Encode(v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	if encoder, ok := v.(ObjectEncoder); ok {
		return encoder.EncodeObject()
	}

	value := reflect.ValueOf(v)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil
		}

		if encoder, ok := value.Interface().(ObjectEncoder); ok {
			return encoder.EncodeObject()
		}

		value = value.Elem()
	}

	if value.Kind() != reflect.Struct {
		return value.Interface(), nil
	}

	if encoder, ok := value.Interface().(ObjectEncoder); ok {
		return encoder.EncodeObject()
	}

	return encodeStruct(value)
}

// Marshal encodes an object and renders it to JSON.
func Marshal(v any) ([]byte, error) {
	encoded, err := Encode(v)
	if err != nil {
		return nil, err
	}

	return json.Marshal(encoded)
}

func encodeStruct(v reflect.Value) (map[string]any, error) {
	model := ModelOf(v.Type())
	out := make(map[string]any, len(model.Fields))

	for i := range model.Fields {
		descriptor := &model.Fields[i]
		field := v.FieldByIndex(descriptor.Index)

		if elideValue(field) {
			continue
		}

		encoded, err := encodeField(descriptor, field)
		if err != nil {
			return nil, fmt.Errorf("encoding %s.%s: %w", v.Type().Name(), descriptor.Name, err)
		}

		if encoded == nil {
			continue
		}

		out[descriptor.Name] = encoded
	}

	if model.HasExtra() {
		extraValue := v.FieldByIndex(model.extraIndex)
		if !extraValue.IsNil() {
			extra, _ := extraValue.Interface().(Extra)
			for name, raw := range extra {
				if _, taken := out[name]; taken {
					continue
				}

				out[name] = raw
			}
		}
	}

	return out, nil
}

func encodeField(descriptor *FieldDescriptor, v reflect.Value) (any, error) {
	switch descriptor.Kind {
	case KindScalar:
		return v.Interface(), nil
	case KindObject, KindUnion:
		return Encode(v.Interface())
	case KindReference:
		return encodeReference(v)
	case KindList:
		return encodeList(descriptor, v)
	default:
		return v.Interface(), nil
	}
}

// encodeReference flattens any Referable to its bare HREF, so a rich
// object assigned to a reference field still encodes as {"href": ...}.
func encodeReference(v reflect.Value) (any, error) {
	referable, ok := v.Interface().(Referable)
	if !ok || referable == nil {
		return nil, nil
	}

	ref := referable.Ref()
	if ref == nil || ref.Href == "" {
		return nil, ErrMissingHref
	}

	return map[string]any{"href": ref.Href}, nil
}

func encodeList(descriptor *FieldDescriptor, v reflect.Value) (any, error) {
	if v.Type() == rawMessageType {
		return v.Interface(), nil
	}

	out := make([]any, 0, v.Len())

	for i := 0; i < v.Len(); i++ {
		element := v.Index(i)
		if elideValue(element) {
			continue
		}

		encoded, err := encodeField(descriptor.Elem, element)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}

		out = append(out, encoded)
	}

	return out, nil
}

// elideValue reports whether a field is absent and should be omitted
// from the wire form. Zero numbers and false booleans are meaningful
// and are kept; optional numerics use pointer fields.
func elideValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
		return v.IsNil()
	case reflect.String:
		return v.String() == ""
	case reflect.Struct:
		return v.IsZero()
	default:
		return false
	}
}
