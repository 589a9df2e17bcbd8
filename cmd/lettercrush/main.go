package main

import "github.com/mcoot/lettercrush/internal/cli"

func main() {
	cli.Execute()
}
