package cli

import (
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/roomcraft/roomcraft/core"
	"github.com/urfave/cli/v2"
)

var CheckCommand = &cli.Command{
	Name:  "check",
	Usage: "Parse every template and render index.html once",
	Flags: []cli.Flag{configFlag()},
	Action: func(c *cli.Context) error {
		config := core.LoadConfig(c.String("config"))
		config.Debug = true

		files, err := core.TemplateFiles(config.TemplatesDir)
		if err != nil || len(files) == 0 {
			fmt.Printf("❌ no templates found in %s\n", config.TemplatesDir)
			return cli.Exit("no templates to check", 1)
		}

		var failed bool
		funcs := core.TemplateFuncs(config)

		for _, file := range files {
			name := filepath.Base(file)
			if _, err := template.New(name).Funcs(funcs).ParseFiles(file); err != nil {
				failed = true
				fmt.Printf("❌ %s → parse error: %v\n", name, err)
				continue
			}
			fmt.Printf("✅ %s\n", name)
		}

		if failed {
			return cli.Exit("some templates failed to parse", 1)
		}

		renderer := core.NewRenderer(config)
		if _, err := renderer.Render(core.IndexTemplate, core.Page{Debug: true, Path: "/", Version: core.Version}); err != nil {
			fmt.Printf("❌ / → %v\n", err)
			return cli.Exit("index page failed to render", 1)
		}
		fmt.Printf("✅ / → %s\n", core.IndexTemplate)

		fmt.Println("✅ All templates validated successfully.")
		return nil
	},
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "path to the config file",
		Value:   core.DefaultConfigPath,
		EnvVars: []string{"ROOMCRAFT_CONFIG"},
	}
}
