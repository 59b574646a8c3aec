// Package main is the entry point for the LiteGPT gateway.
package main

import "litegpt/internal/cli"

func main() {
	cli.Execute()
}
