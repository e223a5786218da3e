// Package prefs persists the small set of user-sticky run preferences
// (working mode, agent mode type, confirmation requirement) across
// invocations, separate from the main layered Config.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Prefs mirrors the original tool's per-user JSON preferences file.
type Prefs struct {
	Mode           string `json:"mode"`
	AgentModeType  string `json:"agent_mode_type"`
	RequireConfirm bool   `json:"require_confirm"`
}

// Default returns the preferences assumed when no file exists yet.
func Default() Prefs {
	return Prefs{
		Mode:           "agent",
		AgentModeType:  "interactive",
		RequireConfirm: true,
	}
}

// Path returns the preferences file location under root (typically the
// working directory the CLI was invoked from).
func Path(root string) string {
	return filepath.Join(root, ".minishellagent_config.json")
}

// Load reads preferences from path, returning defaults if the file is
// absent or malformed. Load failures are not fatal by design: a corrupt
// preferences file should never block startup.
func Load(root string) Prefs {
	p := Default()
	data, err := os.ReadFile(Path(root))
	if err != nil {
		return p
	}
	_ = json.Unmarshal(data, &p)
	return p
}

// Save writes preferences back to disk, returning any marshal or write
// error to the caller.
func Save(root string, p Prefs) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(Path(root), data, 0o644)
}
