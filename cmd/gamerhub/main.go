package main

import "github.com/mcoot/gamerhub/internal/cli"

func main() {
	cli.Execute()
}
