package main

import (
	"os"

	"github.com/ariel-frischer/modkit/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
