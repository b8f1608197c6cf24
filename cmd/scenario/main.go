package main

import "github.com/ewingjm/scenario-builder/cmd/scenario/internal"

func main() {
	internal.Execute()
}
