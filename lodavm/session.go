package lodavm

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/reusee/loda/bigs"
	"github.com/reusee/loda/caches"
	"github.com/reusee/loda/deps"
	"github.com/reusee/loda/lodalang"
	"github.com/reusee/loda/logs"
	"github.com/reusee/loda/storages"
)

// Session spans many evaluations over one snapshot of a program store.
// Parsed programs, call edges and call results are cached until the session is dropped.
// A Session is safe for concurrent use.
type Session struct {
	config Config
	store  storages.Store
	logger logs.Logger

	programs *caches.Cache[int64, loaded]
	outcomes *caches.Cache[callKey, outcome]
	resolver *deps.Resolver
}

type loaded struct {
	program *lodalang.Program
	err     error
}

type callKey struct {
	ID    int64
	Input string
}

func (c callKey) String() string {
	return fmt.Sprintf("%d:%s", c.ID, c.Input)
}

type outcome struct {
	value bigs.Value
	steps int64
	err   error
}

var _ Caller = new(Session)

var (
	ErrMismatch      = errors.New("sequence mismatch")
	ErrNegativeCount = errors.New("negative term count")
)

func checkCount(count int) error {
	if count < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeCount, count)
	}
	return nil
}

// OpenSession creates a session. A nil store resolves no program, a nil logger discards.
func OpenSession(config Config, store storages.Store, logger logs.Logger) *Session {
	if store == nil {
		store = storages.NewMap(nil)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Session{
		config:   config.normalized(),
		store:    store,
		logger:   logger,
		programs: caches.New[int64, loaded](),
		outcomes: caches.New[callKey, outcome](),
	}
	s.resolver = deps.NewResolver(s.edges)
	return s
}

func (s *Session) Config() Config {
	return s.config
}

// Program loads and parses a stored program once per session.
func (s *Session) Program(id int64) (*lodalang.Program, error) {
	l := s.programs.GetOrCompute(id, func() loaded {
		text, ok, err := s.store.Load(id)
		if err != nil {
			return loaded{
				err: fmt.Errorf("load A%06d: %w", id, err),
			}
		}
		if !ok {
			return loaded{
				err: fmt.Errorf("A%06d: %w", id, deps.ErrNotFound),
			}
		}
		program, err := lodalang.Parse(fmt.Sprintf("A%06d.asm", id), text)
		if err != nil {
			s.logger.Warn("parse program", "id", id, "error", err)
			return loaded{
				err: err,
			}
		}
		return loaded{
			program: program.WithID(id),
		}
	})
	return l.program, l.err
}

// Lookup is Program with failures reported as *EvalError.
func (s *Session) Lookup(id int64) (*lodalang.Program, error) {
	program, err := s.Program(id)
	if err != nil {
		return nil, s.graphError(id, bigs.Zero, err)
	}
	return program, nil
}

func (s *Session) edges(id int64) ([]int64, error) {
	program, err := s.Program(id)
	if err != nil {
		return nil, err
	}
	return program.DirectDependencies(), nil
}

func (s *Session) graphError(programID int64, input bigs.Value, err error) error {
	e := &EvalError{
		Kind:      UnresolvedDependency,
		ProgramID: programID,
		Input:     input,
		Err:       err,
	}
	var cycle *deps.CycleError
	var parseErr *lodalang.ParseError
	switch {
	case errors.As(err, &cycle):
		e.Kind = CyclicDependency
		e.Cycle = cycle.Path
	case errors.As(err, &parseErr):
		e.Kind = ParseFailure
	}
	return e
}

// validate checks every call edge of a program before it runs.
// Only closures are cached, so programs parsed per call leave no state behind.
func (s *Session) validate(program *lodalang.Program) error {
	for _, callee := range program.DirectDependencies() {
		if err := s.resolver.Check(program.ID, callee); err != nil {
			return err
		}
	}
	return nil
}

// Call evaluates a stored program through the evaluation cache.
func (s *Session) Call(callerID int64, calleeID int64, input bigs.Value) (bigs.Value, int64, error) {
	if err := s.resolver.Check(callerID, calleeID); err != nil {
		return bigs.Zero, 0, s.graphError(calleeID, input, err)
	}
	o := s.outcomes.GetOrCompute(callKey{
		ID:    calleeID,
		Input: input.String(),
	}, func() outcome {
		program, err := s.Program(calleeID)
		if err != nil {
			return outcome{
				err: s.graphError(calleeID, input, err),
			}
		}
		s.logger.Debug("evaluate", "id", calleeID, "input", input)
		res, err := Run(program, input, s.config, s)
		return outcome{
			value: res.Value,
			steps: res.Steps,
			err:   err,
		}
	})
	return o.value, o.steps, o.err
}

// Run evaluates a program for one input and reports the steps spent.
func (s *Session) Run(program *lodalang.Program, input bigs.Value) (Result, error) {
	if err := s.validate(program); err != nil {
		return Result{}, s.graphError(program.ID, input, err)
	}
	return Run(program, input, s.config, s)
}

func (s *Session) Evaluate(program *lodalang.Program, input bigs.Value) (bigs.Value, error) {
	res, err := s.Run(program, input)
	if err != nil {
		return bigs.Zero, err
	}
	return res.Value, nil
}

// EvaluateRange evaluates inputs start, start+1, ... and stops at the first error,
// returning the values computed before it.
func (s *Session) EvaluateRange(program *lodalang.Program, start int64, count int) ([]bigs.Value, error) {
	if err := checkCount(count); err != nil {
		return nil, err
	}
	values := make([]bigs.Value, 0, count)
	for i := range count {
		v, err := s.Evaluate(program, bigs.FromInt64(start+int64(i)))
		if err != nil {
			return values, err
		}
		values = append(values, v)
	}
	return values, nil
}

// Terms evaluates count terms starting at the program offset.
func (s *Session) Terms(program *lodalang.Program, count int) ([]bigs.Value, error) {
	return s.EvaluateRange(program, program.Offset, count)
}

func (s *Session) EvaluateID(id int64, input bigs.Value) (bigs.Value, error) {
	value, _, err := s.Call(0, id, input)
	return value, err
}

// StepCost sums the steps of count terms starting at the program offset.
func (s *Session) StepCost(program *lodalang.Program, count int) (int64, error) {
	if err := checkCount(count); err != nil {
		return 0, err
	}
	var total int64
	for i := range count {
		res, err := s.Run(program, bigs.FromInt64(program.Offset+int64(i)))
		if err != nil {
			return total, err
		}
		total += res.Steps
	}
	return total, nil
}

// Faster reports whether candidate needs strictly fewer steps than installed over count terms.
// Ties keep the installed program. A failing installed program loses to a working candidate.
func (s *Session) Faster(installed, candidate *lodalang.Program, count int) (bool, error) {
	candidateCost, err := s.StepCost(candidate, count)
	if err != nil {
		return false, err
	}
	installedCost, err := s.StepCost(installed, count)
	if err != nil {
		s.logger.Debug("installed program failed", "id", installed.ID, "error", err)
		return true, nil
	}
	return candidateCost < installedCost, nil
}

// Verify compares computed terms with a known sequence prefix and returns the number of matching terms.
func (s *Session) Verify(program *lodalang.Program, expected []bigs.Value) (int, error) {
	for i, want := range expected {
		got, err := s.Evaluate(program, bigs.FromInt64(program.Offset+int64(i)))
		if err != nil {
			return i, err
		}
		if !got.Equal(want) {
			return i, fmt.Errorf("%w at term %d: want %s, got %s", ErrMismatch, i, want, got)
		}
	}
	return len(expected), nil
}

func (s *Session) DirectDependencies(program *lodalang.Program) []int64 {
	return program.DirectDependencies()
}

// TransitiveDependencies returns *deps.CycleError or *deps.MissingError on failure.
func (s *Session) TransitiveDependencies(id int64) ([]int64, error) {
	return s.resolver.TransitiveDependencies(id)
}

func (s *Session) Stats() caches.Stats {
	return s.outcomes.Stats()
}
