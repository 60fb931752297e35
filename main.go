// main is the entrypoint for the sprintlens CLI.
package main

import (
	"github.com/tcandido/sprintlens/cmd"
	"github.com/tcandido/sprintlens/internal/contract"
)

func main() {
	err := cmd.Execute()
	cmd.Shutdown()
	if err != nil {
		contract.LogFatal("Command failed", err)
	}
}
