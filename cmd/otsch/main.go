package main

import "github.com/OpenTraceLab/OpenTraceSchem/cmd/otsch/cmd"

func main() {
	cmd.Execute()
}
