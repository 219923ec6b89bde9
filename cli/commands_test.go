package cli

import (
	"testing"

	"github.com/roomcraft/roomcraft"
	"github.com/roomcraft/roomcraft/core"
	"github.com/urfave/cli/v2"
)

var recordedConfig *roomcraft.RuntimeConfig

func mockStart(t *testing.T) {
	original := roomcraft.Start
	roomcraft.Start = func(cfg roomcraft.RuntimeConfig) {
		recordedConfig = &cfg
	}
	t.Cleanup(func() {
		roomcraft.Start = original
		recordedConfig = nil
	})
}

func TestDevCommand_UsesDevConfig(t *testing.T) {
	mockStart(t)

	app := &cli.App{Commands: []*cli.Command{DevCommand}}
	if err := app.Run([]string{"roomcraft", "dev"}); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if recordedConfig == nil {
		t.Fatal("expected Start to be called, but it was not")
	}
	if recordedConfig.Env != "dev" || recordedConfig.Port != 0 || recordedConfig.ConfigPath != core.DefaultConfigPath {
		t.Errorf("unexpected dev config: %+v", recordedConfig)
	}
}

func TestProdCommand_UsesProdConfigAndFlags(t *testing.T) {
	mockStart(t)

	app := &cli.App{Commands: []*cli.Command{ProdCommand}}
	err := app.Run([]string{"roomcraft", "prod", "--port", "8080", "--host", "0.0.0.0", "--config", "site.yml"})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if recordedConfig == nil {
		t.Fatal("expected Start to be called, but it was not")
	}
	want := roomcraft.RuntimeConfig{Env: "prod", Host: "0.0.0.0", Port: 8080, ConfigPath: "site.yml"}
	if *recordedConfig != want {
		t.Errorf("unexpected prod config: %+v", recordedConfig)
	}
}

func TestDefaultAction_StartsDevServer(t *testing.T) {
	mockStart(t)

	app := &cli.App{Flags: DefaultFlags, Action: DefaultAction}
	if err := app.Run([]string{"roomcraft", "-p", "5050"}); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if recordedConfig == nil || recordedConfig.Env != "dev" || recordedConfig.Port != 5050 {
		t.Errorf("unexpected default config: %+v", recordedConfig)
	}
}

func TestDefaultAction_RejectsUnknownCommand(t *testing.T) {
	mockStart(t)

	app := &cli.App{Flags: DefaultFlags, Action: DefaultAction}
	err := app.Run([]string{"roomcraft", "serve-all"})
	if err == nil || err.Error() != `unknown command "serve-all"` {
		t.Fatalf("expected unknown command error, got: %v", err)
	}
	if recordedConfig != nil {
		t.Error("did not expect Start to be called")
	}
}
