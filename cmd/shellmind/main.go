// Command shellmind drives an LLM through the Agent Loop to plan and
// execute shell commands on the user's behalf.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/shellmind-ai/shellmind/cmd/shellmind/commands"
)

func main() {
	_ = godotenv.Load()

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
