package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roomcraft/roomcraft/core"
	"github.com/segmentio/encoding/json"
	"github.com/urfave/cli/v2"
)

type projectInfo struct {
	Version      string `json:"version"`
	TemplatesDir string `json:"templatesDir"`
	StaticDir    string `json:"staticDir"`
	OutputDir    string `json:"outputDir"`
	Address      string `json:"address"`
	Debug        bool   `json:"debug"`
	DebugHeaders bool   `json:"debugHeaders"`
	DebugLogs    bool   `json:"debugLogs"`
	Templates    int    `json:"templates"`
	IndexFound   bool   `json:"indexFound"`
	StaticFiles  int    `json:"staticFiles"`
	BuiltAssets  int    `json:"builtAssets"`
}

func collectInfo(config *core.Config) projectInfo {
	info := projectInfo{
		Version:      core.Version,
		TemplatesDir: config.TemplatesDir,
		StaticDir:    config.StaticDir,
		OutputDir:    config.OutputDir,
		Address:      fmt.Sprintf("%s:%d", config.Host, config.Port),
		Debug:        config.Debug,
		DebugHeaders: config.DebugHeaders,
		DebugLogs:    config.DebugLogs,
	}

	if files, err := core.TemplateFiles(config.TemplatesDir); err == nil {
		info.Templates = len(files)
	}
	if _, err := os.Stat(filepath.Join(config.TemplatesDir, core.IndexTemplate)); err == nil {
		info.IndexFound = true
	}

	info.StaticFiles = countFiles(config.StaticDir, func(string) bool { return true })
	info.BuiltAssets = countFiles(filepath.Join(config.OutputDir, "static"), func(path string) bool {
		return !strings.HasSuffix(path, ".gz")
	})

	return info
}

func countFiles(root string, keep func(string) bool) int {
	count := 0
	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() && keep(path) {
			count++
		}
		return nil
	})
	return count
}

var InfoCommand = &cli.Command{
	Name:  "info",
	Usage: "Print configuration and project summary",
	Flags: []cli.Flag{
		configFlag(),
		&cli.BoolFlag{Name: "json", Usage: "print the summary as JSON"},
	},
	Action: func(c *cli.Context) error {
		info := collectInfo(core.LoadConfig(c.String("config")))

		if c.Bool("json") {
			out, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		fmt.Println("🏷️  Version:", info.Version)
		fmt.Println("📁 Templates Directory:", info.TemplatesDir)
		fmt.Println("📁 Static Directory:", info.StaticDir)
		fmt.Println("📁 Output Directory:", info.OutputDir)
		fmt.Println("🌐 Address:", info.Address)
		fmt.Println("🔁 Debug Enabled:", info.Debug)
		fmt.Println("🔁 Debug Headers Enabled:", info.DebugHeaders)
		fmt.Println("🔁 Debug Logs Enabled:", info.DebugLogs)
		fmt.Println()
		fmt.Println("🗂️  Templates Found:", info.Templates)
		fmt.Println("🏠 Index Template Found:", info.IndexFound)
		fmt.Println("📦 Static Files:", info.StaticFiles)
		fmt.Println("💾 Built Assets:", info.BuiltAssets)

		return nil
	},
}
