package cli

import (
	"fmt"

	"github.com/roomcraft/roomcraft"
	"github.com/roomcraft/roomcraft/core"

	"github.com/urfave/cli/v2"
)

func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to the config file",
			Value:   core.DefaultConfigPath,
			EnvVars: []string{"ROOMCRAFT_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "host",
			Usage:   "interface to listen on (default from config)",
			EnvVars: []string{"ROOMCRAFT_HOST"},
		},
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "port to listen on (default from config)",
			EnvVars: []string{"ROOMCRAFT_PORT"},
		},
	}
}

func runtimeConfig(c *cli.Context, env string) roomcraft.RuntimeConfig {
	return roomcraft.RuntimeConfig{
		Env:        env,
		Host:       c.String("host"),
		Port:       c.Int("port"),
		ConfigPath: c.String("config"),
	}
}

func serveDev(c *cli.Context) error {
	roomcraft.Start(runtimeConfig(c, "dev"))
	return nil
}

var DevCommand = &cli.Command{
	Name:   "dev",
	Usage:  "Start roomcraft in dev mode (template reload, live reload, request logs)",
	Flags:  serveFlags(),
	Action: serveDev,
}

var ProdCommand = &cli.Command{
	Name:  "prod",
	Usage: "Start roomcraft in production mode (minified output, built assets)",
	Flags: serveFlags(),
	Action: func(c *cli.Context) error {
		roomcraft.Start(runtimeConfig(c, "prod"))
		return nil
	},
}

// DefaultAction runs the dev server when no command is given.
var DefaultAction = func(c *cli.Context) error {
	if c.Args().Present() {
		return fmt.Errorf("unknown command %q", c.Args().First())
	}
	return serveDev(c)
}

// DefaultFlags are accepted by the root command for DefaultAction.
var DefaultFlags = serveFlags()
