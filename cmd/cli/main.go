package main

import "github.com/tralvick/backloghub/cli"

func main() {
	cli.Execute()
}
