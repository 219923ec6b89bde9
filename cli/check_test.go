package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckCommand_StarterDirectory(t *testing.T) {
	chdir(t, "_starter")

	var runErr error
	output := captureOutput(func() {
		runErr = newTestApp(CheckCommand).Run([]string{"roomcraft", "check"})
	})

	if runErr != nil {
		t.Fatalf("expected starter to validate, got: %v\n%s", runErr, output)
	}
	if !strings.Contains(output, "✅ index.html") {
		t.Errorf("expected success marker for index.html, got:\n%s", output)
	}
	if !strings.Contains(output, "✅ / → index.html") {
		t.Errorf("expected render success for /, got:\n%s", output)
	}
	if !strings.Contains(output, "All templates validated successfully.") {
		t.Errorf("expected final success message, got:\n%s", output)
	}
}

func TestCheckCommand_ParseError(t *testing.T) {
	dir := t.TempDir()
	templates := filepath.Join(dir, "templates")
	_ = os.MkdirAll(templates, 0755)
	_ = os.WriteFile(filepath.Join(templates, "index.html"), []byte(`<p>{{ if }}</p>`), 0644)
	_ = os.WriteFile(filepath.Join(templates, "footer.html"), []byte(`<footer>ok</footer>`), 0644)
	configPath := writeConfig(t, dir, "templatesDir: "+templates+"\n")

	var runErr error
	output := captureOutput(func() {
		runErr = newTestApp(CheckCommand).Run([]string{"roomcraft", "check", "--config", configPath})
	})

	if runErr == nil {
		t.Fatal("expected check to fail")
	}
	if !strings.Contains(output, "❌ index.html → parse error") {
		t.Errorf("expected parse error output, got:\n%s", output)
	}
	if !strings.Contains(output, "✅ footer.html") {
		t.Errorf("expected other templates to still be checked, got:\n%s", output)
	}
}

func TestCheckCommand_MissingIndex(t *testing.T) {
	dir := t.TempDir()
	templates := filepath.Join(dir, "templates")
	_ = os.MkdirAll(templates, 0755)
	_ = os.WriteFile(filepath.Join(templates, "footer.html"), []byte(`<footer>ok</footer>`), 0644)
	configPath := writeConfig(t, dir, "templatesDir: "+templates+"\n")

	var runErr error
	output := captureOutput(func() {
		runErr = newTestApp(CheckCommand).Run([]string{"roomcraft", "check", "-c", configPath})
	})

	if runErr == nil || !strings.Contains(runErr.Error(), "index page failed to render") {
		t.Fatalf("expected render failure, got: %v", runErr)
	}
	if !strings.Contains(output, "❌ / →") {
		t.Errorf("expected render failure output, got:\n%s", output)
	}
}

func TestCheckCommand_NoTemplates(t *testing.T) {
	dir := t.TempDir()
	configPath := writeConfig(t, dir, "templatesDir: "+filepath.Join(dir, "missing")+"\n")

	var runErr error
	output := captureOutput(func() {
		runErr = newTestApp(CheckCommand).Run([]string{"roomcraft", "check", "-c", configPath})
	})

	if runErr == nil {
		t.Fatal("expected error without templates")
	}
	if !strings.Contains(output, "no templates found") {
		t.Errorf("unexpected output:\n%s", output)
	}
}
