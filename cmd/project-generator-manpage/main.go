package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/NextNodeSolutions/project-generator/cmd/project-generator/commands"
	"github.com/NextNodeSolutions/project-generator/internal/version"
)

func main() {
	rootCmd := commands.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "PROJECT-GENERATOR",
		Section: "1",
		Source:  "project-generator " + version.Version,
		Manual:  "project-generator manual",
	}

	err := doc.GenMan(rootCmd, header, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
