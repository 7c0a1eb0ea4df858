// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package starlarkeval

import (
	"fmt"
	"reflect"
	"runtime"
	"sort"
	"strings"

	"carvel.dev/tempita/pkg/orderedmap"
	"carvel.dev/tempita/pkg/texttemplate"
	"github.com/k14s/starlark-go/starlark"
)

type GoValueToStarlarkValueConversion interface {
	AsStarlarkValue() starlark.Value
}

// GoValue converts plain Go data (and Go functions) into Starlark values.
type GoValue struct {
	val interface{}
}

func NewGoValue(val interface{}) GoValue {
	return GoValue{val}
}

func (e GoValue) AsStarlarkValue() (starlark.Value, error) {
	return e.asStarlarkValue(e.val)
}

func (e GoValue) asStarlarkValue(val interface{}) (starlark.Value, error) {
	if obj, ok := val.(GoValueToStarlarkValueConversion); ok {
		return obj.AsStarlarkValue(), nil
	}

	switch typedVal := val.(type) {
	case starlark.Value:
		return typedVal, nil

	case nil:
		return starlark.None, nil

	case bool:
		return starlark.Bool(typedVal), nil

	case string:
		return starlark.String(typedVal), nil

	case int:
		return starlark.MakeInt(typedVal), nil

	case int64:
		return starlark.MakeInt64(typedVal), nil

	case uint:
		return starlark.MakeUint(typedVal), nil

	case uint64:
		return starlark.MakeUint64(typedVal), nil

	case float64:
		return starlark.Float(typedVal), nil

	case texttemplate.EmptyValue:
		return Empty, nil

	case *texttemplate.TemplateObject:
		return NewStarlarkTemplateObject(typedVal), nil

	case *orderedmap.Map:
		return e.orderedMapAsStarlarkValue(typedVal)

	case map[string]interface{}:
		return e.orderedMapAsStarlarkValue(e.sortedStringMap(typedVal))

	case []interface{}:
		return e.listAsStarlarkValue(typedVal)

	default:
		return e.reflectAsStarlarkValue(reflect.ValueOf(val))
	}
}

func (e GoValue) sortedStringMap(val map[string]interface{}) *orderedmap.Map {
	var keys []string
	for k := range val {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := orderedmap.NewMap()
	for _, k := range keys {
		result.Set(k, val[k])
	}
	return result
}

func (e GoValue) orderedMapAsStarlarkValue(val *orderedmap.Map) (starlark.Value, error) {
	result := starlark.NewDict(val.Len())
	err := val.IterateErr(func(k, v interface{}) error {
		key, err := e.asStarlarkValue(k)
		if err != nil {
			return err
		}
		value, err := e.asStarlarkValue(v)
		if err != nil {
			return err
		}
		return result.SetKey(key, value)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e GoValue) listAsStarlarkValue(val []interface{}) (starlark.Value, error) {
	result := make([]starlark.Value, 0, len(val))
	for _, v := range val {
		item, err := e.asStarlarkValue(v)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return starlark.NewList(result), nil
}

func (e GoValue) reflectAsStarlarkValue(val reflect.Value) (starlark.Value, error) {
	switch val.Kind() {
	case reflect.Bool:
		return starlark.Bool(val.Bool()), nil

	case reflect.String:
		return starlark.String(val.String()), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return starlark.MakeInt64(val.Int()), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return starlark.MakeUint64(val.Uint()), nil

	case reflect.Float32, reflect.Float64:
		return starlark.Float(val.Float()), nil

	case reflect.Slice, reflect.Array:
		if val.Kind() == reflect.Slice && val.IsNil() {
			return starlark.NewList(nil), nil
		}
		items := make([]interface{}, val.Len())
		for i := range items {
			items[i] = val.Index(i).Interface()
		}
		return e.listAsStarlarkValue(items)

	case reflect.Map:
		result := orderedmap.NewMap()
		keys := val.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprintf("%v", keys[i].Interface()) < fmt.Sprintf("%v", keys[j].Interface())
		})
		for _, k := range keys {
			result.Set(k.Interface(), val.MapIndex(k).Interface())
		}
		return e.orderedMapAsStarlarkValue(result)

	case reflect.Func:
		if val.IsNil() {
			return starlark.None, nil
		}
		return e.funcAsStarlarkValue(val), nil

	case reflect.Ptr, reflect.Interface:
		if val.IsNil() {
			return starlark.None, nil
		}
		return e.asStarlarkValue(val.Elem().Interface())

	default:
		return nil, fmt.Errorf("unknown type %s for conversion to starlark value", val.Type())
	}
}

// funcAsStarlarkValue exposes a Go function as a builtin taking positional
// arguments. Functions may return a single value, an error, or a value
// and an error.
func (e GoValue) funcAsStarlarkValue(fn reflect.Value) starlark.Value {
	fnType := fn.Type()
	name := funcName(fn)

	return starlark.NewBuiltin(name, ErrWrapper(func(thread *starlark.Thread, f *starlark.Builtin,
		args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {

		if len(kwargs) > 0 {
			return starlark.None, fmt.Errorf("unexpected keyword arguments")
		}

		numIn := fnType.NumIn()
		if fnType.IsVariadic() {
			if args.Len() < numIn-1 {
				return starlark.None, fmt.Errorf("expected at least %d arguments, got %d", numIn-1, args.Len())
			}
		} else if args.Len() != numIn {
			return starlark.None, fmt.Errorf("expected %d arguments, got %d", numIn, args.Len())
		}

		in := make([]reflect.Value, args.Len())
		for i, arg := range args {
			var paramType reflect.Type
			if fnType.IsVariadic() && i >= numIn-1 {
				paramType = fnType.In(numIn - 1).Elem()
			} else {
				paramType = fnType.In(i)
			}

			goArg, err := NewStarlarkValue(arg).AsGoValue()
			if err != nil {
				return starlark.None, err
			}
			in[i], err = convertArg(goArg, paramType)
			if err != nil {
				return starlark.None, fmt.Errorf("argument %d: %s", i+1, err)
			}
		}

		return e.funcResults(fn.Call(in))
	}))
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func (e GoValue) funcResults(out []reflect.Value) (starlark.Value, error) {
	if len(out) > 0 && out[len(out)-1].Type() == errorType {
		if errVal := out[len(out)-1]; !errVal.IsNil() {
			return starlark.None, errVal.Interface().(error)
		}
		out = out[:len(out)-1]
	}

	switch len(out) {
	case 0:
		return starlark.None, nil
	case 1:
		return e.asStarlarkValue(out[0].Interface())
	default:
		items := make([]starlark.Value, len(out))
		for i, o := range out {
			item, err := e.asStarlarkValue(o.Interface())
			if err != nil {
				return starlark.None, err
			}
			items[i] = item
		}
		return starlark.Tuple(items), nil
	}
}

func convertArg(arg interface{}, paramType reflect.Type) (reflect.Value, error) {
	if arg == nil {
		switch paramType.Kind() {
		case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map, reflect.Func:
			return reflect.Zero(paramType), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot use None as %s", paramType)
	}

	val := reflect.ValueOf(arg)
	if val.Type().AssignableTo(paramType) {
		return val, nil
	}
	if isNumberKind(val.Kind()) && isNumberKind(paramType.Kind()) {
		return val.Convert(paramType), nil
	}
	if val.Kind() == reflect.String && paramType.Kind() == reflect.String {
		return val.Convert(paramType), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", arg, paramType)
}

func isNumberKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func funcName(fn reflect.Value) string {
	if rf := runtime.FuncForPC(fn.Pointer()); rf != nil {
		name := rf.Name()
		if i := strings.LastIndex(name, "."); i >= 0 {
			name = name[i+1:]
		}
		if len(name) > 0 && !strings.HasPrefix(name, "func") {
			return name
		}
	}
	return "function"
}
