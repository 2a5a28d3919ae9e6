package main

import "github.com/lepinkainen/pokexcel/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
