package main

import (
	"os"

	despauthcmd "github.com/destine-eu/despauth/pkg/despauth/cmd"
)

func main() {
	root := despauthcmd.NewRootCommand(despauthcmd.DefaultConfig())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
