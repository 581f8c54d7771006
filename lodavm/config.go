package lodavm

import "fmt"

type LoopMode uint8

const (
	// LoopStrict runs a loop while its counter fragment is positive and
	// requires every iteration to start strictly below the previous one.
	LoopStrict LoopMode = iota
	// LoopRollback runs every iteration speculatively and undoes the last one
	// when the counter fragment did not strictly decrease or went negative.
	LoopRollback
)

func (m LoopMode) String() string {
	switch m {
	case LoopStrict:
		return "strict"
	case LoopRollback:
		return "rollback"
	}
	return fmt.Sprintf("loop-mode(%d)", uint8(m))
}

func ParseLoopMode(s string) (LoopMode, error) {
	switch s {
	case "", "strict":
		return LoopStrict, nil
	case "rollback":
		return LoopRollback, nil
	}
	return 0, fmt.Errorf("unknown loop mode: %q", s)
}

const (
	DefaultStepBudget     = 10_000_000
	DefaultMagnitudeLimit = 1 << 20
	DefaultMaxRegister    = 1 << 16
)

// Config is passed explicitly to every session, nothing is read from globals.
type Config struct {
	StepBudget int64
	// MagnitudeLimit bounds the byte size of any intermediate value, 0 disables it
	MagnitudeLimit int
	MaxRegister    int64
	LoopMode       LoopMode
}

func DefaultConfig() Config {
	return Config{
		StepBudget:     DefaultStepBudget,
		MagnitudeLimit: DefaultMagnitudeLimit,
		MaxRegister:    DefaultMaxRegister,
		LoopMode:       LoopStrict,
	}
}

func (c Config) normalized() Config {
	if c.StepBudget <= 0 {
		c.StepBudget = DefaultStepBudget
	}
	if c.MaxRegister <= 0 {
		c.MaxRegister = DefaultMaxRegister
	}
	if c.MagnitudeLimit < 0 {
		c.MagnitudeLimit = 0
	}
	return c
}
