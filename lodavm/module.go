package lodavm

import (
	"github.com/reusee/dscope"
	"github.com/reusee/loda/lodaconfigs"
	"github.com/reusee/loda/logs"
	"github.com/reusee/loda/storages"
)

type Module struct {
	dscope.Module
}

func (Module) Config(
	budget lodaconfigs.StepBudget,
	magnitude lodaconfigs.MagnitudeLimit,
	register lodaconfigs.MaxRegister,
	loopMode lodaconfigs.LoopMode,
) Config {
	mode, err := ParseLoopMode(string(loopMode))
	if err != nil {
		panic(err)
	}
	return Config{
		StepBudget:     int64(budget),
		MagnitudeLimit: int(magnitude),
		MaxRegister:    int64(register),
		LoopMode:       mode,
	}
}

// NewSession starts a session over the configured store.
// Every call sees a fresh cache.
type NewSession func() *Session

func (Module) NewSession(
	config Config,
	store storages.Store,
	logger logs.Logger,
) NewSession {
	return func() *Session {
		return OpenSession(config, store, logger)
	}
}
