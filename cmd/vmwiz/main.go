package main

import "github.com/wetrycode/vmwiz/cmd"

func main() {
	cmd.Execute()
}
