package cmds

import "os"

// GlobalExecutor collects commands and flags defined by package init functions.
var GlobalExecutor = NewExecutor()

func Define(name string, command *Command) {
	GlobalExecutor.Define(name, command)
}

func Execute(args []string) error {
	return GlobalExecutor.Execute(args)
}

// Main executes process arguments.
func Main() error {
	return GlobalExecutor.Execute(os.Args[1:])
}

func PrintUsage() {
	GlobalExecutor.PrintUsage()
}
