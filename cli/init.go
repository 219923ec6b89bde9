package cli

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
)

//go:embed all:_starter
var starterFS embed.FS

var InitCommand = &cli.Command{
	Name:      "init",
	Usage:     "Create a new roomcraft project from the default starter",
	ArgsUsage: "[directory (default: current)]",
	Action: func(c *cli.Context) error {
		targetDir, err := os.Getwd()
		if err != nil {
			return err
		}
		if c.Args().Len() > 0 {
			targetDir = c.Args().Get(0)
		}
		fmt.Println("🚀 Creating roomcraft project in:", targetDir)

		written, err := copyEmbeddedDir(starterFS, "_starter", targetDir)
		if err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		fmt.Printf("✅ Project created successfully (%d file(s) written).\n", written)
		fmt.Println("▶  Run: roomcraft dev")
		return nil
	},
}

// copyEmbeddedDir copies sourceDir into targetDir. Files that already exist
// are left alone.
func copyEmbeddedDir(source fs.FS, sourceDir string, targetDir string) (int, error) {
	written := 0
	err := fs.WalkDir(source, sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}

		if rel == "." {
			return nil
		}

		targetPath := filepath.Join(targetDir, rel)

		if d.IsDir() {
			return os.MkdirAll(targetPath, os.ModePerm)
		}

		if _, err := os.Stat(targetPath); err == nil {
			fmt.Println("⏭️  Skipping existing:", rel)
			return nil
		}

		data, err := fs.ReadFile(source, path)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(filepath.Dir(targetPath), os.ModePerm); err != nil {
			return err
		}

		if err := os.WriteFile(targetPath, data, 0644); err != nil {
			return err
		}
		written++
		return nil
	})
	return written, err
}
