package main

import (
	"kairosvote.io/kairos/cmd/kairos/cmd"
)

func main() {
	cmd.Execute()
}
