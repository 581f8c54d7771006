package storages

import (
	"github.com/reusee/dscope"
	"github.com/reusee/loda/lodaconfigs"
	"github.com/reusee/loda/logs"
)

type Module struct {
	dscope.Module
}

func (Module) Store(
	dir lodaconfigs.ProgramsDir,
	logger logs.Logger,
) Store {
	logger.Debug("program store", "dir", string(dir))
	return Dir{
		Root: string(dir),
	}
}
