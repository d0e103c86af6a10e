// Package main is the featdesign command.
package main

import (
	"os"

	"github.com/leapstack-labs/featdesign/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
