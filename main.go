package main

import "github.com/notargets/wallopt/cmd"

func main() {
	cmd.Execute()
}
