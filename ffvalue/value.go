// Package ffvalue provides an abstraction of the SDK's general value type. Feature flag variations
// and user custom attributes support the standard JSON data types of null, boolean, number, string,
// array, and object; ffvalue.Value can contain any of these.
//
// Value is guaranteed to be immutable and to contain only JSON-compatible types as long as you do not
// use UnsafeValueCopy/UnsafeInnerValue, which exist only so that the evaluator can interoperate with
// code that still deals in interface{}.
package ffvalue

import (
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
)

// Value represents any of the data types supported by JSON, all of which can be used for a feature
// flag variation or a custom user attribute.
type Value struct {
	// Note that the zero value of ValueType is NullType, so the zero of Value is a null value.
	valueType ValueType
	// Used when the value is a boolean.
	boolValue bool
	// Used when the value is a number.
	numberValue float64
	// Used when the value is a string.
	stringValue string
	// Representation of the value as an interface{}. For numeric types, we always store this as a
	// float64 so struct equality works as expected.
	valueInstance interface{}
}

// ValueType indicates which JSON type is contained in a Value.
type ValueType int

const (
	// NullType describes a null value.
	NullType ValueType = iota
	// BoolType describes a boolean value.
	BoolType
	// NumberType describes a numeric value. JSON does not distinguish int and float, but you can
	// convert to either.
	NumberType
	// StringType describes a string value.
	StringType
	// ArrayType describes an array value.
	ArrayType
	// ObjectType describes an object (a.k.a. map).
	ObjectType
	// RawType describes a json.RawMessage value, accessible only via Raw().
	RawType
)

var (
	zeroAsInterface        interface{} = float64(0)
	emptyStringAsInterface interface{} = ""
)

// ArrayBuilder is a builder created by ArrayBuild(), for creating immutable arrays.
type ArrayBuilder interface {
	Add(value Value) ArrayBuilder
	Build() Value
}

type arrayBuilderImpl struct {
	copyOnWrite bool
	output      []interface{}
}

// ObjectBuilder is a builder created by ObjectBuild(), for creating immutable JSON objects.
type ObjectBuilder interface {
	Set(key string, value Value) ObjectBuilder
	Build() Value
}

type objectBuilderImpl struct {
	copyOnWrite bool
	output      map[string]interface{}
}

// String returns the name of the value type.
func (t ValueType) String() string {
	switch t {
	case NullType:
		return "null"
	case BoolType:
		return "bool"
	case NumberType:
		return "number"
	case StringType:
		return "string"
	case ArrayType:
		return "array"
	case ObjectType:
		return "object"
	case RawType:
		return "raw"
	default:
		return "unknown"
	}
}

func toSafeValue(value interface{}) interface{} {
	switch o := value.(type) {
	case []interface{}:
		return deepCopyArray(o)
	case map[string]interface{}:
		return deepCopyMap(o)
	default:
		return value
	}
}

func deepCopyArray(a []interface{}) []interface{} {
	ret := make([]interface{}, len(a))
	for i, v := range a {
		ret[i] = toSafeValue(v)
	}
	return ret
}

func deepCopyMap(m map[string]interface{}) map[string]interface{} {
	ret := make(map[string]interface{}, len(m))
	for k, v := range m {
		ret[k] = toSafeValue(v)
	}
	return ret
}

func fromValue(valueAsInterface interface{}, deepCopy bool) Value {
	if valueAsInterface == nil {
		return Null()
	}
	switch o := valueAsInterface.(type) {
	case Value:
		return o
	case bool:
		return Bool(o)
	case int8:
		return Float64(float64(o))
	case uint8:
		return Float64(float64(o))
	case int16:
		return Float64(float64(o))
	case uint16:
		return Float64(float64(o))
	case int:
		return Float64(float64(o))
	case uint:
		return Float64(float64(o))
	case int32:
		return Float64(float64(o))
	case uint32:
		return Float64(float64(o))
	case float32:
		return Float64(float64(o))
	case float64:
		return Value{valueType: NumberType, numberValue: o, valueInstance: valueAsInterface}
	case string:
		return Value{valueType: StringType, stringValue: o, valueInstance: valueAsInterface}
	case []interface{}:
		if deepCopy {
			return ArrayCopy(o)
		}
		return Value{valueType: ArrayType, valueInstance: valueAsInterface}
	case map[string]interface{}:
		if deepCopy {
			return ObjectCopy(o)
		}
		return Value{valueType: ObjectType, valueInstance: valueAsInterface}
	case json.RawMessage:
		return Value{valueType: RawType, valueInstance: valueAsInterface}
	default:
		return Null()
	}
}

// InnerValue converts the Value to its corresponding Go type as an interface{}. Slices and maps are
// deep-copied, preserving immutability of the Value.
func (v Value) InnerValue() interface{} {
	return toSafeValue(v.valueInstance)
}

// UnsafeInnerValue returns the actual Go value inside the Value without copying.
//
// Deprecated: application code should use InnerValue.
func (v Value) UnsafeInnerValue() interface{} {
	return v.valueInstance
}

// Null creates a null Value.
func Null() Value {
	return Value{valueType: NullType}
}

// Bool creates a boolean Value.
func Bool(value bool) Value {
	return Value{valueType: BoolType, boolValue: value, valueInstance: value}
}

// Int creates a numeric Value from an integer.
func Int(value int) Value {
	return Float64(float64(value))
}

// Float64 creates a numeric Value from a float64.
func Float64(value float64) Value {
	if value == 0 {
		return Value{valueType: NumberType, numberValue: 0, valueInstance: zeroAsInterface}
	}
	return Value{valueType: NumberType, numberValue: value, valueInstance: value}
}

// String creates a string Value.
func String(value string) Value {
	if value == "" {
		return Value{valueType: StringType, stringValue: "", valueInstance: emptyStringAsInterface}
	}
	return Value{valueType: StringType, stringValue: value, valueInstance: value}
}

// Raw creates an unparsed JSON Value.
func Raw(value json.RawMessage) Value {
	return Value{valueType: RawType, valueInstance: value}
}

// ValueCopy creates a Value from an arbitrary interface{} value of any type, deep-copying arrays
// and objects. Unsupported types become Null().
func ValueCopy(value interface{}) Value {
	return fromValue(value, true)
}

// UnsafeValueCopy creates a Value from a shallow copy of an arbitrary Go value.
//
// Deprecated: application code should use ValueCopy.
func UnsafeValueCopy(value interface{}) Value {
	return fromValue(value, false)
}

// ArrayCopy creates a Value by deep-copying an existing slice.
func ArrayCopy(a []interface{}) Value {
	return Value{valueType: ArrayType, valueInstance: deepCopyArray(a)}
}

// ArrayBuild creates a builder for constructing an immutable array Value.
func ArrayBuild(capacity int) ArrayBuilder {
	return &arrayBuilderImpl{output: make([]interface{}, 0, capacity)}
}

func (b *arrayBuilderImpl) Add(value Value) ArrayBuilder {
	if b.copyOnWrite {
		b.output = deepCopyArray(b.output)
		b.copyOnWrite = false
	}
	b.output = append(b.output, value.valueInstance)
	return b
}

func (b *arrayBuilderImpl) Build() Value {
	b.copyOnWrite = true
	return Value{valueType: ArrayType, valueInstance: b.output}
}

// ObjectCopy creates a Value by deep-copying an existing map.
func ObjectCopy(m map[string]interface{}) Value {
	return Value{valueType: ObjectType, valueInstance: deepCopyMap(m)}
}

// ObjectBuild creates a builder for constructing an immutable JSON object Value.
func ObjectBuild(capacity int) ObjectBuilder {
	return &objectBuilderImpl{output: make(map[string]interface{}, capacity)}
}

func (b *objectBuilderImpl) Set(name string, value Value) ObjectBuilder {
	if b.copyOnWrite {
		b.output = deepCopyMap(b.output)
		b.copyOnWrite = false
	}
	b.output[name] = value.valueInstance
	return b
}

func (b *objectBuilderImpl) Build() Value {
	b.copyOnWrite = true
	return Value{valueType: ObjectType, valueInstance: b.output}
}

// Type returns the ValueType of the Value.
func (v Value) Type() ValueType { return v.valueType }

// IsNull returns true if the Value is null.
func (v Value) IsNull() bool { return v.valueType == NullType }

// IsNumber returns true if the Value is numeric.
func (v Value) IsNumber() bool { return v.valueType == NumberType }

// IsInt returns true if the Value is numeric with no fractional component.
func (v Value) IsInt() bool {
	if v.valueType == NumberType {
		return v.numberValue == float64(int(v.numberValue))
	}
	return false
}

// Bool returns the Value as a boolean, or false if it is not a boolean.
func (v Value) Bool() bool {
	return v.valueType == BoolType && v.boolValue
}

// Int returns the Value as an int, truncated toward zero, or zero if it is not numeric.
func (v Value) Int() int {
	if v.valueType == NumberType {
		return int(v.numberValue)
	}
	return 0
}

// Float64 returns the Value as a float64, or zero if it is not numeric.
func (v Value) Float64() float64 {
	if v.valueType == NumberType {
		return v.numberValue
	}
	return 0
}

// String returns the Value as a string, or "" if it is not a string.
func (v Value) String() string {
	if v.valueType == StringType {
		return v.stringValue
	}
	return ""
}

// JSONString returns the JSON representation of the value.
func (v Value) JSONString() string {
	switch v.valueType {
	case NullType:
		return "null"
	case BoolType:
		if v.boolValue {
			return "true"
		}
		return "false"
	case NumberType:
		if v.IsInt() {
			return strconv.Itoa(int(v.numberValue))
		}
		return strconv.FormatFloat(v.numberValue, 'f', -1, 64)
	default:
		bytes, err := json.Marshal(v.valueInstance)
		if err != nil {
			return ""
		}
		return string(bytes)
	}
}

// Raw returns the value as a json.RawMessage.
func (v Value) Raw() json.RawMessage {
	switch v.valueType {
	case NullType:
		return nil
	case RawType:
		if o, ok := v.valueInstance.(json.RawMessage); ok {
			return o
		}
		return nil
	default:
		bytes, err := json.Marshal(v.valueInstance)
		if err != nil {
			return nil
		}
		return json.RawMessage(bytes)
	}
}

// Count returns the number of elements in an array or JSON object, or zero for any other type.
func (v Value) Count() int {
	switch o := v.valueInstance.(type) {
	case []interface{}:
		return len(o)
	case map[string]interface{}:
		return len(o)
	}
	return 0
}

// GetByIndex gets an element of an array by index, or Null() if out of range or not an array.
func (v Value) GetByIndex(index int) Value {
	ret, _ := v.TryGetByIndex(index)
	return ret
}

// TryGetByIndex gets an element of an array by index, with a second return value of true on success.
func (v Value) TryGetByIndex(index int) (Value, bool) {
	if v.valueType == ArrayType {
		if a, ok := v.valueInstance.([]interface{}); ok {
			if index >= 0 && index < len(a) {
				return fromValue(a[index], false), true
			}
		}
	}
	return Null(), false
}

// Keys returns the keys of a JSON object, or nil if the value is not an object.
func (v Value) Keys() []string {
	if v.valueType == ObjectType {
		if m, ok := v.valueInstance.(map[string]interface{}); ok {
			ret := make([]string, 0, len(m))
			for key := range m {
				ret = append(ret, key)
			}
			return ret
		}
	}
	return nil
}

// GetByKey gets a value from a JSON object by key, or Null() if not found or not an object.
func (v Value) GetByKey(name string) Value {
	ret, _ := v.TryGetByKey(name)
	return ret
}

// TryGetByKey gets a value from a JSON object by key, with a second return value of true on success.
func (v Value) TryGetByKey(name string) (Value, bool) {
	if v.valueType == ObjectType {
		if m, ok := v.valueInstance.(map[string]interface{}); ok {
			if innerValue, ok := m[name]; ok {
				return fromValue(innerValue, false), true
			}
		}
	}
	return Null(), false
}

// Equal does a deep-value comparison, treating equal-but-differently-typed numbers as equal.
func (v Value) Equal(other Value) bool {
	if v.valueType != other.valueType {
		return false
	}
	switch v.valueType {
	case NullType:
		return true
	case BoolType:
		return v.boolValue == other.boolValue
	case NumberType:
		return v.numberValue == other.numberValue
	case StringType:
		return v.stringValue == other.stringValue
	default:
		return reflect.DeepEqual(v.InnerValue(), other.InnerValue())
	}
}

// MarshalJSON converts the Value to its JSON representation.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.valueInstance)
}

// UnmarshalJSON parses a Value from JSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	// Go's JSON parser has no direct way to unmarshal a single arbitrary value that isn't enclosed
	// in an array or object, so we wrap it in one.
	wrappedData := make([]byte, 0, len(data)+2)
	wrappedData = append(wrappedData, '[')
	wrappedData = append(wrappedData, data...)
	wrappedData = append(wrappedData, ']')
	valueWrapper := make([]interface{}, 0, 1)
	if err := json.Unmarshal(wrappedData, &valueWrapper); err != nil {
		return err
	}
	if len(valueWrapper) != 1 {
		return errors.New("unexpected JSON parsing error")
	}
	*v = fromValue(valueWrapper[0], false)
	return nil
}
