package main

import (
	"os"

	"github.com/NextNodeSolutions/project-generator/cmd/project-generator/commands"
)

func main() {
	os.Exit(commands.Execute(commands.NewRootCmd()))
}
