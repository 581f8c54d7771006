package scripts

import (
	"fmt"

	"github.com/reusee/loda/lodalang"
	"go.starlark.net/starlark"
)

// Program exposes a parsed program to scripts.
type Program struct {
	program *lodalang.Program
}

var _ starlark.HasAttrs = new(Program)

func (p *Program) String() string {
	return p.program.String()
}

func (p *Program) Type() string {
	return "program"
}

func (p *Program) Freeze() {}

func (p *Program) Truth() starlark.Bool {
	return starlark.True
}

func (p *Program) Hash() (uint32, error) {
	return 0, fmt.Errorf("unhashable type: program")
}

func (p *Program) Attr(name string) (starlark.Value, error) {
	switch name {
	case "id":
		return starlark.MakeInt64(p.program.ID), nil
	case "name":
		return starlark.String(p.program.Name), nil
	case "offset":
		return starlark.MakeInt64(p.program.Offset), nil
	case "text":
		return starlark.String(p.program.String()), nil
	case "deps":
		return toStarlarkValue(p.program.DirectDependencies()), nil
	}
	return nil, nil
}

func (p *Program) AttrNames() []string {
	return []string{"deps", "id", "name", "offset", "text"}
}

func toProgram(fnName string, v starlark.Value) (*lodalang.Program, error) {
	switch v := v.(type) {
	case *Program:
		return v.program, nil
	case starlark.String:
		return lodalang.Parse(fnName, string(v))
	}
	return nil, fmt.Errorf("%s: want program, got %s", fnName, v.Type())
}
