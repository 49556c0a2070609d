package main

import "github.com/meshwatch/meshwatch/cmd/meshwatch/cmd"

func main() {
	cmd.Execute()
}
