// finbot is a chat bot that solves financial-math problems step by step.
package main

import (
	"os"

	"github.com/rahul/finbot/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
