package main

import (
	"context"
	"os"

	"attributioncli/internal/cli"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	return cli.Execute(context.Background(), args)
}
