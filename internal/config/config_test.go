package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.toml")
	body := `
[server]
name = "Grotto-Test"

[game]
max_difficulty = 3.5
spawn_interval = "1s"
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Name != "Grotto-Test" {
		t.Errorf("Server.Name = %q, want override", cfg.Server.Name)
	}
	if cfg.Game.MaxDifficulty != 3.5 {
		t.Errorf("Game.MaxDifficulty = %v, want 3.5", cfg.Game.MaxDifficulty)
	}
	if cfg.Game.SpawnInterval != time.Second {
		t.Errorf("Game.SpawnInterval = %v, want 1s", cfg.Game.SpawnInterval)
	}
	// Untouched sections keep their defaults.
	if cfg.Network.TickRate != 50*time.Millisecond {
		t.Errorf("Network.TickRate = %v, want default 50ms", cfg.Network.TickRate)
	}
	if cfg.Game.MaxActiveBubbles != 24 {
		t.Errorf("Game.MaxActiveBubbles = %d, want default 24", cfg.Game.MaxActiveBubbles)
	}
	if cfg.Server.StartTime == 0 {
		t.Errorf("Server.StartTime not stamped at load")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("Load on a missing file did not error")
	}
}
