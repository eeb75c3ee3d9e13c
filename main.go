package main

import "github.com/timvw/muxboard/cmd"

func main() {
	cmd.Execute()
}
