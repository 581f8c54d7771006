package batches

import (
	"time"

	"github.com/reusee/dscope"
	"github.com/reusee/loda/lodaconfigs"
	"github.com/reusee/loda/lodavm"
	"github.com/reusee/loda/logs"
)

type Module struct {
	dscope.Module
}

func (Module) Runner(
	newSession lodavm.NewSession,
	workers lodaconfigs.Workers,
	timeout lodaconfigs.JobTimeout,
	logger logs.Logger,
	newSpan logs.NewSpan,
) *Runner {
	return &Runner{
		Session: newSession(),
		Workers: int(workers),
		Timeout: time.Duration(timeout),
		Logger:  logger,
		NewSpan: newSpan,
	}
}
