package main

import "github.com/xvierd/flow-focus/cmd"

func main() {
	cmd.Execute()
}
