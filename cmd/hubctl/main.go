package main

import (
	"gamehub/internal/cli"
)

func main() {
	cli.Execute()
}
