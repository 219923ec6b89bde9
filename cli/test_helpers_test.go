package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/roomcraft/roomcraft/core"
	"github.com/urfave/cli/v2"
)

func captureOutput(f func()) string {
	orig := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = orig

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

func overrideLoadConfig(outputDir string, testFn func()) {
	orig := core.LoadConfig
	core.LoadConfig = func(_ string) *core.Config {
		cfg := core.DefaultConfig()
		cfg.OutputDir = outputDir
		return cfg
	}
	defer func() { core.LoadConfig = orig }()
	testFn()
}

// newTestApp keeps cli.Exit errors from terminating the test binary.
func newTestApp(commands ...*cli.Command) *cli.App {
	return &cli.App{
		Commands:       commands,
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// writeConfig writes a roomcraft.config.yml into dir whose paths are
// relative to dir and returns its path.
func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, core.DefaultConfigPath)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })
}
