package lodaconfigs

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/reusee/loda/configs"
	"github.com/reusee/loda/logs"
	"github.com/reusee/loda/modes"
)

//go:embed schema.cue
var schema string

var configFilenames = []string{
	"loda.cue",
	".loda.cue",
}

// ConfigsLoader finds config files, nearest first.
// Development mode only looks in the working directory.
func (Module) ConfigsLoader(
	logger logs.Logger,
	mode modes.Mode,
) configs.Loader {

	var dirs []string
	if workingDir, err := os.Getwd(); err == nil {
		dirs = append(dirs, workingDir)
	}
	if mode != modes.ModeDevelopment {
		if configDir, err := os.UserConfigDir(); err == nil {
			dirs = append(dirs, configDir)
		}
		dirs = append(dirs, "/etc")
	}

	paths := findConfigs(dirs)
	if len(paths) > 0 {
		logger.Info("config file",
			"paths", paths,
		)
	}

	return configs.NewLoader(paths, schema)
}

func findConfigs(dirs []string) (paths []string) {
	for _, dir := range dirs {
		for _, filename := range configFilenames {
			path := filepath.Join(dir, filename)
			if _, err := os.Stat(path); err == nil {
				paths = append(paths, path)
			}
		}
	}
	return
}
