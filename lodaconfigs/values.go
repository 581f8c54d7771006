package lodaconfigs

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/reusee/loda/cmds"
	"github.com/reusee/loda/configs"
)

type StepBudget int64

var _ configs.Configurable = StepBudget(0)

func (StepBudget) ConfigPath() string {
	return "step_budget"
}

func (Module) StepBudget() StepBudget {
	return 10_000_000
}

var stepBudgetFlag = cmds.Var[StepBudget]("-step-budget", "maximum steps of one evaluation")

// MagnitudeLimit is in bytes, 0 disables the limit.
type MagnitudeLimit int

var _ configs.Configurable = MagnitudeLimit(0)

func (MagnitudeLimit) ConfigPath() string {
	return "magnitude_limit"
}

func (Module) MagnitudeLimit() MagnitudeLimit {
	return 1 << 20
}

var magnitudeLimitFlag = cmds.Var[MagnitudeLimit]("-magnitude-limit", "maximum register size in bytes")

type MaxRegister int64

var _ configs.Configurable = MaxRegister(0)

func (MaxRegister) ConfigPath() string {
	return "max_register"
}

func (Module) MaxRegister() MaxRegister {
	return 1 << 16
}

var maxRegisterFlag = cmds.Var[MaxRegister]("-max-register", "highest addressable register")

type LoopMode string

var _ configs.Configurable = LoopMode("")

func (LoopMode) ConfigPath() string {
	return "loop_mode"
}

func (Module) LoopMode() LoopMode {
	return "strict"
}

var loopModeFlag = cmds.Var[LoopMode]("-loop-mode", "loop semantics, strict or rollback")

// ProgramsDir is the root of the program repository, programs live under its oeis directory.
type ProgramsDir string

var _ configs.Configurable = ProgramsDir("")

func (ProgramsDir) ConfigPath() string {
	return "programs_dir"
}

func (Module) ProgramsDir() ProgramsDir {
	if dir := os.Getenv("LODA_PROGRAMS"); dir != "" {
		return ProgramsDir(dir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "programs"
	}
	return ProgramsDir(filepath.Join(home, "loda", "programs"))
}

var programsDirFlag = cmds.Var[ProgramsDir]("-programs", "program repository directory")

type Workers int

var _ configs.Configurable = Workers(0)

func (Workers) ConfigPath() string {
	return "workers"
}

func (Module) Workers() Workers {
	return Workers(runtime.NumCPU())
}

var workersFlag = cmds.Var[Workers]("-workers", "concurrent batch jobs")

// JobTimeout bounds the wall-clock time of one batch job, 0 means no deadline.
type JobTimeout time.Duration

var _ configs.Configurable = JobTimeout(0)

func (JobTimeout) ConfigPath() string {
	return "job_timeout"
}

func (j *JobTimeout) UnmarshalText(text []byte) error {
	d, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("job timeout: %w", err)
	}
	*j = JobTimeout(d)
	return nil
}

func (Module) JobTimeout() JobTimeout {
	return 0
}

var jobTimeoutFlag = cmds.Var[JobTimeout]("-job-timeout", "wall-clock limit of one batch job")
