package main

import (
	"os"

	"github.com/josephlewis42/minish/cmd"
	"github.com/josephlewis42/minish/commands"
	"github.com/josephlewis42/minish/core/proc"
)

func main() {
	// Built-ins that run inside a pipeline or conditional re-execute this binary.
	if proc.IsReexec() {
		os.Exit(commands.RunReexec(os.Args[1:]))
	}

	cmd.Execute()
}
