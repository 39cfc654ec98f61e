package main

import "quantumflux/cmd/quantumflux/command"

func main() {
	command.Execute()
}
