package main

import (
	"log"
	"os"

	roomcraftcli "github.com/roomcraft/roomcraft/cli"
	clilib "github.com/urfave/cli/v2"
)

func runApp(args []string) error {
	app := &clilib.App{
		Name:   "roomcraft",
		Usage:  "Serve the room planner page",
		Flags:  roomcraftcli.DefaultFlags,
		Action: roomcraftcli.DefaultAction,
		Commands: []*clilib.Command{
			roomcraftcli.InitCommand,
			roomcraftcli.DevCommand,
			roomcraftcli.ProdCommand,
			roomcraftcli.BuildCommand,
			roomcraftcli.CleanCommand,
			roomcraftcli.CheckCommand,
			roomcraftcli.InfoCommand,
		},
	}

	return app.Run(args)
}

func main() {
	if err := runApp(os.Args); err != nil {
		log.Fatal(err)
	}
}
