// Package main is the entry point for the gest CLI.
package main

import "gest.dev/pkg/gest/cmd"

func main() {
	cmd.Execute()
}
