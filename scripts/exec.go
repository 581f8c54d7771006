package scripts

import (
	"context"
	"io"
	"os"

	"github.com/reusee/loda/lodavm"
	"github.com/reusee/loda/logs"
	"go.starlark.net/repl"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

// Exec runs a script against a session and returns its globals.
// print writes lines to out.
type Exec func(ctx context.Context, filename string, src any, out io.Writer) (starlark.StringDict, error)

func (Module) Exec(
	newSession lodavm.NewSession,
	logger logs.Logger,
) Exec {
	return func(ctx context.Context, filename string, src any, out io.Writer) (starlark.StringDict, error) {
		session := newSession()
		thread := newThread(filename, out)
		stop := context.AfterFunc(ctx, func() {
			thread.Cancel(context.Cause(ctx).Error())
		})
		defer stop()

		logger.DebugContext(ctx, "exec script", "file", filename)
		globals, err := starlark.ExecFileOptions(fileOptions, thread, filename, src, Builtins(session))
		if err != nil {
			return globals, logs.WrapSpan(ctx, err)
		}
		return globals, nil
	}
}

func newThread(name string, out io.Writer) *starlark.Thread {
	return &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, msg string) {
			io.WriteString(out, msg+"\n")
		},
	}
}

// Repl reads statements from standard input until EOF.
type Repl func(ctx context.Context)

func (Module) Repl(
	newSession lodavm.NewSession,
	logger logs.Logger,
) Repl {
	return func(ctx context.Context) {
		logger.InfoContext(ctx, "repl")
		defer func() {
			logger.InfoContext(ctx, "repl end")
		}()
		thread := newThread("repl", os.Stdout)
		repl.REPLOptions(fileOptions, thread, Builtins(newSession()))
	}
}
