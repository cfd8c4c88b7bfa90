package main

import "github.com/kyawswar87/share-mal/internal/cli"

func main() {
	cli.Execute()
}
