package main

import (
	"testforge/internal/cli"
)

func main() {
	cli.Execute()
}
