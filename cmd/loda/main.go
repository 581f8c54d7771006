package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/reusee/dscope"
	"github.com/reusee/loda/batches"
	"github.com/reusee/loda/cmds"
	"github.com/reusee/loda/lodaconfigs"
	"github.com/reusee/loda/lodalang"
	"github.com/reusee/loda/lodavm"
	"github.com/reusee/loda/modes"
	"github.com/reusee/loda/scripts"
	"github.com/reusee/loda/storages"
	"github.com/reusee/loda/vars"
)

const defaultTerms = 10

var devFlag = cmds.Switch("-dev", "only read config files from the working directory")

// set by the command executed last
var action func(ctx context.Context, scope dscope.Scope) error

func setAction(fn func(ctx context.Context, scope dscope.Scope) error) {
	if action != nil {
		fmt.Fprintln(os.Stderr, "only one command may be given")
		os.Exit(2)
	}
	action = fn
}

func init() {
	cmds.Define("eval", cmds.Func(func(target string, count *int) {
		setAction(func(ctx context.Context, scope dscope.Scope) error {
			return withSession(scope, func(session *lodavm.Session) error {
				n, err := termCount(count)
				if err != nil {
					return err
				}
				program, err := loadProgram(session, target)
				if err != nil {
					return err
				}
				values, err := session.Terms(program, n)
				for i, v := range values {
					fmt.Printf("%d %s\n", program.Offset+int64(i), v)
				}
				return err
			})
		})
	}).Desc("print terms of a program file or id"))

	cmds.Define("steps", cmds.Func(func(target string, count *int) {
		setAction(func(ctx context.Context, scope dscope.Scope) error {
			return withSession(scope, func(session *lodavm.Session) error {
				n, err := termCount(count)
				if err != nil {
					return err
				}
				program, err := loadProgram(session, target)
				if err != nil {
					return err
				}
				steps, err := session.StepCost(program, n)
				if err != nil {
					return err
				}
				fmt.Println(steps)
				return nil
			})
		})
	}).Desc("print the step count of a program over its first terms"))

	cmds.Define("deps", cmds.Func(func(target string) {
		setAction(func(ctx context.Context, scope dscope.Scope) error {
			return withSession(scope, func(session *lodavm.Session) error {
				id, err := storages.ParseID(target)
				if err != nil {
					return err
				}
				ids, err := session.TransitiveDependencies(id)
				if err != nil {
					return err
				}
				for _, id := range ids {
					fmt.Printf("A%06d\n", id)
				}
				return nil
			})
		})
	}).Desc("print the transitive dependencies of a program id"))

	cmds.Define("faster", cmds.Func(func(installed string, candidate string, count *int) {
		setAction(func(ctx context.Context, scope dscope.Scope) error {
			return withSession(scope, func(session *lodavm.Session) error {
				n, err := termCount(count)
				if err != nil {
					return err
				}
				p1, err := loadProgram(session, installed)
				if err != nil {
					return err
				}
				p2, err := loadProgram(session, candidate)
				if err != nil {
					return err
				}
				faster, err := session.Faster(p1, p2, n)
				if err != nil {
					return err
				}
				fmt.Println(faster)
				return nil
			})
		})
	}).Desc("report whether the candidate program is faster than the installed one"))

	cmds.Define("check", cmds.Func(func(ids string, count *int) {
		setAction(func(ctx context.Context, scope dscope.Scope) error {
			n, err := termCount(count)
			if err != nil {
				return err
			}
			var jobs []batches.Job
			for _, s := range strings.Split(ids, ",") {
				id, err := storages.ParseID(strings.TrimSpace(s))
				if err != nil {
					return err
				}
				jobs = append(jobs, batches.Job{
					ID:    id,
					Count: n,
				})
			}
			var results []batches.Result
			scope.Call(func(
				runner *batches.Runner,
			) {
				results = runner.Run(ctx, jobs)
			})
			for _, result := range results {
				if result.Err != nil {
					fmt.Printf("%s error: %v\n", result.Job.Name(), result.Err)
					continue
				}
				fmt.Printf("%s ok %d steps\n", result.Job.Name(), result.Steps)
			}
			if n := batches.Failed(results); n > 0 {
				return fmt.Errorf("%d of %d programs failed", n, len(results))
			}
			return nil
		})
	}).Desc("evaluate comma-separated program ids concurrently"))

	cmds.Define("fmt", cmds.Func(func(path string) {
		setAction(func(ctx context.Context, scope dscope.Scope) error {
			program, err := parseFile(path)
			if err != nil {
				return err
			}
			return program.Format(os.Stdout)
		})
	}).Desc("print a program file in canonical form"))

	cmds.Define("script", cmds.Func(func(path string) {
		setAction(func(ctx context.Context, scope dscope.Scope) (err error) {
			scope.Call(func(
				exec scripts.Exec,
			) {
				_, err = exec(ctx, path, nil, os.Stdout)
			})
			return
		})
	}).Desc("run a starlark script"))

	cmds.Define("repl", cmds.Func(func() {
		setAction(func(ctx context.Context, scope dscope.Scope) error {
			scope.Call(func(
				repl scripts.Repl,
			) {
				repl(ctx)
			})
			return nil
		})
	}).Desc("start a starlark repl"))
}

func termCount(count *int) (int, error) {
	n := vars.FirstNonZero(vars.DerefOrZero(count), defaultTerms)
	if n < 0 {
		return 0, fmt.Errorf("invalid term count: %d", n)
	}
	return n, nil
}

func withSession(scope dscope.Scope, fn func(*lodavm.Session) error) (err error) {
	scope.Call(func(
		newSession lodavm.NewSession,
	) {
		err = fn(newSession())
	})
	return
}

func parseFile(path string) (*lodalang.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return lodalang.ParseReader(path, f)
}

// loadProgram reads a file when the target names one, otherwise loads the id from the store.
func loadProgram(session *lodavm.Session, target string) (*lodalang.Program, error) {
	program, err := parseFile(target)
	if err == nil {
		return program, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	id, err := storages.ParseID(target)
	if err != nil {
		return nil, fmt.Errorf("no such file or program id: %s", target)
	}
	return session.Lookup(id)
}

func main() {
	if err := cmds.Execute(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if action == nil {
		cmds.PrintUsage()
		os.Exit(2)
	}

	scope, err := lodaconfigs.Fork(dscope.New(
		new(Module),
		modes.For(*devFlag),
	))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := action(context.Background(), scope); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
