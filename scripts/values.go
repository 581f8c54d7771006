package scripts

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/reusee/loda/bigs"
	"github.com/reusee/loda/lodalang"
	"github.com/reusee/starlarkutil"
	"go.starlark.net/starlark"
)

func toStarlarkValue(v any) starlark.Value {
	switch v := v.(type) {

	case nil:
		return starlark.None

	case starlark.Value:
		return v

	case bool:
		return starlark.Bool(v)

	case string:
		return starlark.String(v)

	case int:
		return starlark.MakeInt(v)
	case int64:
		return starlark.MakeInt64(v)
	case uint64:
		return starlark.MakeUint64(v)

	case bigs.Value:
		return starlark.MakeBigInt(v.Big())
	case *big.Int:
		return starlark.MakeBigInt(v)

	case *lodalang.Program:
		if v == nil {
			return starlark.None
		}
		return &Program{
			program: v,
		}

	case []bigs.Value:
		elems := make([]starlark.Value, len(v))
		for i, e := range v {
			elems[i] = starlark.MakeBigInt(e.Big())
		}
		return starlark.NewList(elems)

	case map[string]any:
		d := starlark.NewDict(len(v))
		for k, val := range v {
			d.SetKey(starlark.String(k), toStarlarkValue(val))
		}
		return d

	}

	value := reflect.ValueOf(v)
	switch value.Kind() {

	case reflect.Bool:
		return starlark.Bool(value.Bool())

	case reflect.String:
		return starlark.String(value.String())

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return starlark.MakeInt64(value.Int())

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return starlark.MakeUint64(value.Uint())

	case reflect.Slice, reflect.Array:
		l := value.Len()
		elems := make([]starlark.Value, l)
		for i := range l {
			elems[i] = toStarlarkValue(value.Index(i).Interface())
		}
		return starlark.NewList(elems)

	case reflect.Struct:
		n := value.NumField()
		d := starlark.NewDict(n)
		typ := value.Type()
		for i := range n {
			field := typ.Field(i)
			if !field.IsExported() {
				continue
			}
			d.SetKey(
				starlark.String(field.Name),
				toStarlarkValue(value.Field(i).Interface()),
			)
		}
		return d

	case reflect.Pointer, reflect.Interface:
		elem := value.Elem()
		if !elem.IsValid() {
			return starlark.None
		}
		return toStarlarkValue(elem.Interface())

	case reflect.Func:
		return starlarkutil.MakeFunc("", value.Interface())

	}

	panic(fmt.Errorf("unsupported type for starlark: %T", v))
}

// toValue converts a Starlark int to a Value.
func toValue(fnName string, v starlark.Value) (bigs.Value, error) {
	i, ok := v.(starlark.Int)
	if !ok {
		return bigs.Zero, fmt.Errorf("%s: want int, got %s", fnName, v.Type())
	}
	return bigs.FromBig(i.BigInt()), nil
}

func toValues(fnName string, v starlark.Value) ([]bigs.Value, error) {
	iterable, ok := v.(starlark.Iterable)
	if !ok {
		return nil, fmt.Errorf("%s: want iterable, got %s", fnName, v.Type())
	}
	iter := iterable.Iterate()
	defer iter.Done()
	var ret []bigs.Value
	var elem starlark.Value
	for iter.Next(&elem) {
		value, err := toValue(fnName, elem)
		if err != nil {
			return nil, err
		}
		ret = append(ret, value)
	}
	return ret, nil
}
