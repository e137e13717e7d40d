package main

import "github.com/papapumpkin/closeboard/cmd"

func main() {
	cmd.Execute()
}
