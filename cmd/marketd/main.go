package main

import "github.com/pixelmesh/gomarketd/internal/cli"

func main() {
	cli.Execute()
}
