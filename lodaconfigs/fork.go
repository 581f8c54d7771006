package lodaconfigs

import (
	"github.com/reusee/dscope"
	"github.com/reusee/loda/configs"
)

// Fork applies config file values, then flags, over the module defaults.
func Fork(scope dscope.Scope) (dscope.Scope, error) {
	var loader configs.Loader
	scope.Call(func(l configs.Loader) {
		loader = l
	})
	scope, err := configs.Fork(scope, loader)
	if err != nil {
		return scope, err
	}

	var defs []any
	if v := *stepBudgetFlag; v != 0 {
		defs = append(defs, &v)
	}
	if v := *magnitudeLimitFlag; v != 0 {
		defs = append(defs, &v)
	}
	if v := *maxRegisterFlag; v != 0 {
		defs = append(defs, &v)
	}
	if v := *loopModeFlag; v != "" {
		defs = append(defs, &v)
	}
	if v := *programsDirFlag; v != "" {
		defs = append(defs, &v)
	}
	if v := *workersFlag; v != 0 {
		defs = append(defs, &v)
	}
	if v := *jobTimeoutFlag; v != 0 {
		defs = append(defs, &v)
	}
	if len(defs) > 0 {
		scope = scope.Fork(defs...)
	}
	return scope, nil
}
