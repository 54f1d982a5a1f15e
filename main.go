// Package main is the entry point for the Passgate CLI application.
// It manages an OAuth2 password-grant session against a configurable
// authorization server.
package main

import (
	"passgate/cli/cmd"
)

// main is the entry point for the Passgate CLI application.
// It initializes and executes the command-line interface.
func main() {
	cmd.Execute()
}
