package configs

import (
	"errors"
	"reflect"

	"github.com/reusee/dscope"
)

// Configurable values are decoded from the config path they name.
type Configurable interface {
	ConfigPath() string
}

var configurableType = reflect.TypeFor[Configurable]()

// Fork redefines every Configurable type of the scope that has a value in the loader.
// Types without a config value keep their providers.
func Fork(scope dscope.Scope, loader Loader) (dscope.Scope, error) {
	var defs []any
	for t := range scope.AllTypes() {
		if t.Kind() == reflect.Interface || !t.Implements(configurableType) {
			continue
		}
		ptr := reflect.New(t)
		path := ptr.Elem().Interface().(Configurable).ConfigPath()
		if err := loader.AssignFirst(path, ptr.Interface()); err != nil {
			if errors.Is(err, ErrValueNotFound) {
				continue
			}
			return scope, err
		}
		// pointers define their element type
		defs = append(defs, ptr.Interface())
	}
	if len(defs) == 0 {
		return scope, nil
	}
	return scope.Fork(defs...), nil
}
