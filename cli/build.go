package cli

import (
	"fmt"
	"path/filepath"

	"github.com/roomcraft/roomcraft/core"
	"github.com/urfave/cli/v2"
)

var compileStaticAssets = core.CompileStaticAssets

var BuildCommand = &cli.Command{
	Name:  "build",
	Usage: "Minify and gzip static css and js into the output directory for prod",
	Flags: []cli.Flag{configFlag()},
	Action: func(c *cli.Context) error {
		config := core.LoadConfig(c.String("config"))

		fmt.Println("🔧 Building assets from:", config.StaticDir)
		count, err := compileStaticAssets(config)
		if err != nil {
			return fmt.Errorf("failed to build assets: %w", err)
		}

		fmt.Printf("✅ Built %d asset(s) into %s\n", count, filepath.Join(config.OutputDir, "static"))
		return nil
	},
}
