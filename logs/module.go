package logs

import (
	"io"
	"os"

	"github.com/reusee/dscope"
)

type Module struct {
	dscope.Module
}

// Writer receives text records when not running under systemd.
type Writer io.Writer

func (Module) Writer() Writer {
	return os.Stderr
}
