package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Value is a decoded JSON value. It holds one of nil, string, json.Number,
// bool, []Value or *Object.
type Value any

// Object is a JSON object that keeps its keys in document order.
type Object struct {
	Keys   []string
	fields map[string]Value
}

func newObject() *Object {
	return &Object{fields: make(map[string]Value)}
}

// Lookup returns the value stored under key and whether the key is present.
func (o *Object) Lookup(key string) (Value, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.fields[key]
	return v, ok
}

// Get returns the value stored under key, or nil.
func (o *Object) Get(key string) Value {
	v, _ := o.Lookup(key)
	return v
}

// Len returns the number of distinct keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.Keys)
}

// set keeps the first position of a repeated key and the last value.
func (o *Object) set(key string, v Value) {
	if _, ok := o.fields[key]; !ok {
		o.Keys = append(o.Keys, key)
	}
	o.fields[key] = v
}

var errTrailingData = errors.New("trailing data after JSON value")

// Decode strictly parses s as a single JSON document.
func Decode(s string) (Value, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errTrailingData
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		obj := newObject()
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := kt.(string)
			if !ok {
				return nil, fmt.Errorf("object key is %T, not string", kt)
			}
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj.set(key, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := []Value{}
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	}
	return nil, fmt.Errorf("unexpected delimiter %q", delim)
}

// scalarText returns the string form of a primitive value. Composite values
// and nil report false.
func scalarText(v Value) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

// text returns the primitive form of props[key], or "" when absent or composite.
func text(props *Object, key string) string {
	s, _ := scalarText(props.Get(key))
	return s
}

// firstText returns the first non-empty primitive among keys.
func firstText(props *Object, keys ...string) string {
	for _, k := range keys {
		if s := text(props, k); s != "" {
			return s
		}
	}
	return ""
}

func array(v Value) []Value {
	arr, _ := v.([]Value)
	return arr
}

func object(v Value) *Object {
	obj, _ := v.(*Object)
	return obj
}
