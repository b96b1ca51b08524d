package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "convoy", "config.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "", "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration to "+target)

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	requireContains(t, string(data), "[naming]")

	_, _, err = runCLI(t, []string{"config", "init", "--path", target}, "", "")
	if err == nil {
		t.Fatal("expected error when target exists")
	}
	requireContains(t, err.Error(), "already exists")

	_, _, err = runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, "", "")
	if err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigShowPrintsEffectiveConfig(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "show"}, "", env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "# config path: "+env.configPath)
	requireContains(t, out, "[paths]")
	requireContains(t, out, env.cfg.Paths.DataDir)
}

func TestConfigPathReportsMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")

	out, errOut, err := runCLI(t, []string{"config", "path", "--config", missing}, "", "")
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	requireContains(t, out, missing)
	requireContains(t, errOut, "does not exist")
}
