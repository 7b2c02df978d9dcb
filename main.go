package main

import "github.com/josephlewis42/vshell/cmd"

func main() {
	cmd.Execute()
}
