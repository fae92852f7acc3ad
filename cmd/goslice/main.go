package main

import "github.com/philipparndt/goslice/cmd"

func main() {
	cmd.Execute()
}
