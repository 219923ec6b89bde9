package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roomcraft/roomcraft/core"
	"github.com/urfave/cli/v2"
)

// CleanCommand removes what build and prod rendering wrote to
// outputDir/static. Files it did not produce are left in place.
var CleanCommand = &cli.Command{
	Name:      "clean",
	Usage:     "Remove built css/js assets from outputDir/static",
	ArgsUsage: "[subdirectory of outputDir/static (optional)]",
	Flags:     []cli.Flag{configFlag()},
	Action: func(c *cli.Context) error {
		config := core.LoadConfig(c.String("config"))
		target := filepath.Join(config.OutputDir, "static")

		if c.Args().Present() {
			sub := strings.TrimPrefix(c.Args().First(), "/")
			if strings.Contains(sub, "..") {
				return fmt.Errorf("invalid path: %s", sub)
			}
			target = filepath.Join(target, filepath.FromSlash(sub))
		}

		info, err := os.Stat(target)
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Println("🧼 Nothing to clean:", target)
				return nil
			}
			return fmt.Errorf("failed to access path: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("not a directory: %s", target)
		}

		fmt.Println("🧹 Cleaning built assets in:", target)
		removed, err := core.CleanStaticAssets(target)
		if err != nil {
			return fmt.Errorf("failed to clean output: %w", err)
		}

		fmt.Printf("✅ Removed %d built asset(s).\n", removed)
		return nil
	},
}
