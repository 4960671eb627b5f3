package main

import "orl-assistant/internal/cli"

func main() {
	cli.Execute()
}
