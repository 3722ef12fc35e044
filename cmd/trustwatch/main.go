package main

import "github.com/ppiankov/trustwatch/internal/cli"

func main() {
	cli.Execute()
}
