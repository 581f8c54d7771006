package scripts

import (
	"github.com/reusee/loda/lodalang"
	"github.com/reusee/loda/lodavm"
	"go.starlark.net/starlark"
)

type builtinFunc = func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error)

// Builtins returns the engine functions for a session.
// Programs may be passed as program values or as assembly text.
func Builtins(session *lodavm.Session) starlark.StringDict {
	fns := map[string]builtinFunc{

		"parse": func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var text string
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "text", &text); err != nil {
				return nil, err
			}
			program, err := lodalang.Parse(b.Name(), text)
			if err != nil {
				return nil, err
			}
			return toStarlarkValue(program), nil
		},

		"load_program": func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var id int
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "id", &id); err != nil {
				return nil, err
			}
			program, err := session.Lookup(int64(id))
			if err != nil {
				return nil, err
			}
			return toStarlarkValue(program), nil
		},

		"evaluate": func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var p, n starlark.Value
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "program", &p, "n", &n); err != nil {
				return nil, err
			}
			program, err := toProgram(b.Name(), p)
			if err != nil {
				return nil, err
			}
			input, err := toValue(b.Name(), n)
			if err != nil {
				return nil, err
			}
			v, err := session.Evaluate(program, input)
			if err != nil {
				return nil, err
			}
			return toStarlarkValue(v), nil
		},

		"terms": func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var p starlark.Value
			var count int
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "program", &p, "count", &count); err != nil {
				return nil, err
			}
			program, err := toProgram(b.Name(), p)
			if err != nil {
				return nil, err
			}
			values, err := session.Terms(program, count)
			if err != nil {
				return nil, err
			}
			return toStarlarkValue(values), nil
		},

		"evaluate_id": func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var id int
			var n starlark.Value
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "id", &id, "n", &n); err != nil {
				return nil, err
			}
			input, err := toValue(b.Name(), n)
			if err != nil {
				return nil, err
			}
			v, err := session.EvaluateID(int64(id), input)
			if err != nil {
				return nil, err
			}
			return toStarlarkValue(v), nil
		},

		"deps": func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var id int
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "id", &id); err != nil {
				return nil, err
			}
			ids, err := session.TransitiveDependencies(int64(id))
			if err != nil {
				return nil, err
			}
			return toStarlarkValue(ids), nil
		},

		"direct_deps": func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var p starlark.Value
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "program", &p); err != nil {
				return nil, err
			}
			program, err := toProgram(b.Name(), p)
			if err != nil {
				return nil, err
			}
			return toStarlarkValue(session.DirectDependencies(program)), nil
		},

		"steps": func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var p starlark.Value
			var count int
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "program", &p, "count", &count); err != nil {
				return nil, err
			}
			program, err := toProgram(b.Name(), p)
			if err != nil {
				return nil, err
			}
			steps, err := session.StepCost(program, count)
			if err != nil {
				return nil, err
			}
			return toStarlarkValue(steps), nil
		},

		"faster": func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var p1, p2 starlark.Value
			var count int
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "installed", &p1, "candidate", &p2, "count", &count); err != nil {
				return nil, err
			}
			installed, err := toProgram(b.Name(), p1)
			if err != nil {
				return nil, err
			}
			candidate, err := toProgram(b.Name(), p2)
			if err != nil {
				return nil, err
			}
			ok, err := session.Faster(installed, candidate, count)
			if err != nil {
				return nil, err
			}
			return starlark.Bool(ok), nil
		},

		"verify": func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var p, expected starlark.Value
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "program", &p, "expected", &expected); err != nil {
				return nil, err
			}
			program, err := toProgram(b.Name(), p)
			if err != nil {
				return nil, err
			}
			values, err := toValues(b.Name(), expected)
			if err != nil {
				return nil, err
			}
			n, err := session.Verify(program, values)
			if err != nil {
				return nil, err
			}
			return starlark.MakeInt(n), nil
		},
	}

	ret := make(starlark.StringDict, len(fns)+1)
	for name, fn := range fns {
		ret[name] = starlark.NewBuiltin(name, fn)
	}
	ret["format"] = toStarlarkValue(formatText)
	return ret
}

func formatText(text string) (string, error) {
	program, err := lodalang.Parse("format", text)
	if err != nil {
		return "", err
	}
	return program.String(), nil
}
