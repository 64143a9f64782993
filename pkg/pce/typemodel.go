package pce

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"
)

// Kind classifies a field of a PCE object for the codec and validator.
type Kind int

const (
	// KindScalar is a primitive wire value: string, bool, number, or an
	// enum-like named type over one of those.
	KindScalar Kind = iota

	// KindObject is a nested typed object (struct or pointer to struct).
	KindObject

	// KindList is a slice; the element kind is carried by Elem.
	KindList

	// KindReference is a field declared as the Referable interface.
	// Values are flattened to their bare HREF on encode.
	KindReference

	// KindUnion is an interface field with registered member types,
	// decoded by trying members in declaration order.
	KindUnion
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindObject:
		return "object"
	case KindList:
		return "list"
	case KindReference:
		return "reference"
	case KindUnion:
		return "union"
	default:
		return "unknown"
	}
}

// FieldDescriptor describes one wire field of a PCE object type.
type FieldDescriptor struct {
	// Name is the JSON key.
	Name string

	// Index is the reflect field index path into the struct, through
	// embedded bases.
	Index []int

	// Kind classifies the field for the codec.
	Kind Kind

	// Type is the declared field type (element type for lists).
	Type reflect.Type

	// Elem describes the element of a KindList field.
	Elem *FieldDescriptor
}

// TypeModel is the static description of a PCE object type's fields,
// derived once per type and cached for the lifetime of the process.
type TypeModel struct {
	Type   reflect.Type
	Fields []FieldDescriptor

	byName     map[string]int
	extraIndex []int
}

// Field returns the descriptor for the given wire name.
func (m *TypeModel) Field(name string) (*FieldDescriptor, bool) {
	i, ok := m.byName[name]
	if !ok {
		return nil, false
	}

	return &m.Fields[i], true
}

// HasExtra reports whether the type carries an Extra passthrough map.
func (m *TypeModel) HasExtra() bool {
	return m.extraIndex != nil
}

var (
	models sync.Map // reflect.Type -> *TypeModel

	// unionMembers maps a union interface type to its ordered member
	// types. Populated by RegisterUnion before any client call.
	unionMembers sync.Map // reflect.Type -> []reflect.Type

	referableType  = reflect.TypeOf((*Referable)(nil)).Elem()
	extraType      = reflect.TypeOf(Extra(nil))
	rawMessageType = reflect.TypeOf(json.RawMessage(nil))
	referenceType  = reflect.TypeOf(Reference{})
)

// RegisterUnion declares the member types of a union interface, in the
// order the decoder must try them. The order is fixed: the decoder
// commits to the first structurally compatible member, and a raw JSON
// string commits to the Reference member without attempting object
// decode. Must be called before the interface is first decoded.
func RegisterUnion(iface any, members ...any) {
	ifaceType := reflect.TypeOf(iface)
	if ifaceType.Kind() == reflect.Pointer {
		ifaceType = ifaceType.Elem()
	}

	if ifaceType.Kind() != reflect.Interface {
		panic("pce: RegisterUnion requires an interface type, got " + ifaceType.String())
	}

	memberTypes := make([]reflect.Type, 0, len(members))
	for _, member := range members {
		memberType := reflect.TypeOf(member)
		if memberType.Kind() == reflect.Pointer {
			memberType = memberType.Elem()
		}

		memberTypes = append(memberTypes, memberType)
	}

	unionMembers.Store(ifaceType, memberTypes)
}

// UnionMembers returns the registered member types of a union interface.
func UnionMembers(ifaceType reflect.Type) ([]reflect.Type, bool) {
	v, ok := unionMembers.Load(ifaceType)
	if !ok {
		return nil, false
	}

	members, _ := v.([]reflect.Type)

	return members, ok
}

// ModelOf returns the TypeModel for a struct type, building and caching
// it on first use. The cache is process-wide and never invalidated.
func ModelOf(t reflect.Type) *TypeModel {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if cached, ok := models.Load(t); ok {
		model, _ := cached.(*TypeModel)

		return model
	}

	model := buildModel(t)
	actual, _ := models.LoadOrStore(t, model)
	stored, _ := actual.(*TypeModel)

	return stored
}

func buildModel(t reflect.Type) *TypeModel {
	model := &TypeModel{
		Type:   t,
		byName: make(map[string]int),
	}
	collectFields(model, t, nil)

	return model
}

func collectFields(model *TypeModel, t reflect.Type, prefix []int) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		index := append(append([]int{}, prefix...), i)

		// Embedded bases contribute their fields flattened.
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			collectFields(model, field.Type, index)

			continue
		}

		if field.Type == extraType {
			model.extraIndex = index

			continue
		}

		name := wireName(field)
		if name == "" {
			continue
		}

		model.Fields = append(model.Fields, FieldDescriptor{
			Name:  name,
			Index: index,
			Kind:  kindOf(field.Type),
			Type:  field.Type,
			Elem:  elemDescriptor(field.Type),
		})
		model.byName[name] = len(model.Fields) - 1
	}
}

func wireName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return ""
	}

	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		name = field.Name
	}

	return name
}

func kindOf(t reflect.Type) Kind {
	switch {
	case t == rawMessageType:
		return KindScalar
	case t.Kind() == reflect.Interface:
		if t == referableType {
			return KindReference
		}

		if _, ok := UnionMembers(t); ok {
			return KindUnion
		}

		return KindScalar
	case t.Kind() == reflect.Slice:
		return KindList
	case t.Kind() == reflect.Struct:
		return KindObject
	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
		return KindObject
	default:
		return KindScalar
	}
}

func elemDescriptor(t reflect.Type) *FieldDescriptor {
	if t.Kind() != reflect.Slice || t == rawMessageType {
		return nil
	}

	elem := t.Elem()

	return &FieldDescriptor{
		Kind: kindOf(elem),
		Type: elem,
		Elem: elemDescriptor(elem),
	}
}

// Validate structurally checks an object's field values against its
// TypeModel. It is a pure check, run once per object at construction
// time (decode or explicit call), not on every access. Absent values
// are always valid; union fields must hold a registered member type.
func Validate(obj any) error {
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}

		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return nil
	}

	model := ModelOf(v.Type())

	for i := range model.Fields {
		descriptor := &model.Fields[i]

		err := validateValue(model, descriptor, v.FieldByIndex(descriptor.Index))
		if err != nil {
			return err
		}
	}

	return nil
}

func validateValue(model *TypeModel, descriptor *FieldDescriptor, v reflect.Value) error {
	if isNilValue(v) {
		return nil
	}

	switch descriptor.Kind {
	case KindUnion:
		return validateUnion(model, descriptor, v)
	case KindObject:
		return Validate(v.Interface())
	case KindList:
		for i := 0; i < v.Len(); i++ {
			err := validateValue(model, descriptor.Elem, v.Index(i))
			if err != nil {
				return err
			}
		}

		return nil
	case KindReference, KindScalar:
		return nil
	default:
		return nil
	}
}

func validateUnion(model *TypeModel, descriptor *FieldDescriptor, v reflect.Value) error {
	members, ok := UnionMembers(descriptor.Type)
	if !ok {
		return nil
	}

	concrete := v.Elem().Type()
	if concrete.Kind() == reflect.Pointer {
		concrete = concrete.Elem()
	}

	for _, member := range members {
		if concrete == member {
			return Validate(v.Interface())
		}
	}

	return &ValidationError{
		Type:  model.Type.Name(),
		Field: descriptor.Name,
		Value: v.Interface(),
		Want:  "union " + descriptor.Type.String(),
	}
}

func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
		return v.IsNil()
	default:
		return false
	}
}
