package main

import "idlepond/internal/cli"

func main() {
	cli.Execute()
}
