package main

import (
	"github.com/alvarorichard/Goansi/internal/cli"
	"github.com/alvarorichard/Goansi/internal/version"
)

func main() {
	if version.HasVersionArg() {
		version.ShowVersion()
		return
	}
	cli.Execute()
}
