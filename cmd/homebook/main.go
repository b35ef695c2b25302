package main

import (
	"os"

	"homebook/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
