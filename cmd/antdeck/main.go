package main

import "github.com/signalsfoundry/antenna-workbench/cmd/antdeck/cmd"

func main() {
	cmd.Execute()
}
