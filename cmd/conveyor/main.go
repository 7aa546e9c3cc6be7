package main

import "github.com/vietddude/conveyor/internal/cli"

func main() {
	cli.Execute()
}
