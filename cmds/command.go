package cmds

import (
	"fmt"
	"reflect"
)

type Command struct {
	Func        reflect.Value
	Subs        map[string]*Command
	Description string
	Aliases     []string
	// hidden commands run but are left out of usage
	Hidden bool
}

func (c *Command) Desc(desc string) *Command {
	c.Description = desc
	return c
}

func (c *Command) Alias(names ...string) *Command {
	c.Aliases = append(c.Aliases, names...)
	return c
}

func (c *Command) Hide() *Command {
	c.Hidden = true
	return c
}

// Func wraps a function returning nothing or an error.
// Arguments are parsed from the words following the command name.
func Func(fn any) *Command {
	fnValue := reflect.ValueOf(fn)
	if fnValue.Kind() != reflect.Func {
		panic(fmt.Errorf("must be function, got %T", fn))
	}

	t := fnValue.Type()
	switch {
	case t.IsVariadic():
		panic(fmt.Errorf("variadic function not supported: %v", t))
	case t.NumOut() > 1:
		panic(fmt.Errorf("must return 0 or 1 value: %v", t))
	case t.NumOut() == 1 && t.Out(0) != errorType:
		panic(fmt.Errorf("must return error: %v", t))
	}

	return &Command{
		Func: fnValue,
	}
}

func Sub(subs map[string]*Command) *Command {
	return &Command{
		Subs: subs,
	}
}
