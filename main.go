package main

import "github.com/shadekit/matforge/cmd"

func main() {
	cmd.Execute()
}
