package main

import (
	"masta/cmd"
)

func main() {
	cmd.Execute()
}
