package main

import (
	"os"

	ytauthcmd "github.com/injaneity/ytauth/pkg/ytauth/cmd"
)

func run(args []string) int {
	root := ytauthcmd.NewRootCommand(ytauthcmd.DefaultConfig())
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:]))
}
