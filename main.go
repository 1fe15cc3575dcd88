// main holds the entry logic for the codetrawl CLI.
package main

import (
	"github.com/codetrawl/codetrawl/cmd"
	"github.com/codetrawl/codetrawl/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Command failed", err)
	}
}
