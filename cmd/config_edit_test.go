package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"carbonreport/config"
)

func TestResolveConfigEditPath(t *testing.T) {
	t.Run("uses explicit flag first", func(t *testing.T) {
		got, err := resolveConfigEditPath("./custom.yaml", "/tmp/active.yaml")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "./custom.yaml" {
			t.Fatalf("expected explicit config path, got %q", got)
		}
	})

	t.Run("uses active config when flag is empty", func(t *testing.T) {
		got, err := resolveConfigEditPath("", "/tmp/active.yaml")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "/tmp/active.yaml" {
			t.Fatalf("expected active config path, got %q", got)
		}
	})

	t.Run("falls back to home config path", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)

		got, err := resolveConfigEditPath("", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := filepath.Join(home, ".carbonreport.yaml")
		if got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	})
}

func TestEnsureConfigFileWithTemplate(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "myconfig.yaml")

	created, err := ensureConfigFileWithTemplate(configPath)
	if err != nil {
		t.Fatalf("unexpected error creating template config: %v", err)
	}
	if !created {
		t.Fatalf("expected file to be created")
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("unexpected error reading config file: %v", err)
	}
	if !strings.Contains(string(content), "# carbonreport configuration") {
		t.Fatalf("expected example config content, got:\n%s", string(content))
	}
	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("unexpected error stat config file: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected config file mode 0600, got %o", info.Mode().Perm())
	}

	created, err = ensureConfigFileWithTemplate(configPath)
	if err != nil {
		t.Fatalf("unexpected error on existing config file: %v", err)
	}
	if created {
		t.Fatalf("did not expect existing file to be recreated")
	}
}

func TestResolveEditorValue(t *testing.T) {
	tests := []struct {
		name   string
		visual string
		editor string
		want   string
	}{
		{name: "visual wins", visual: "code --wait", editor: "nano", want: "code --wait"},
		{name: "editor fallback", visual: "", editor: "nano", want: "nano"},
		{name: "default vi", visual: "", editor: "", want: "vi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveEditorValue(tt.visual, tt.editor)
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestBuildEditorCommand(t *testing.T) {
	t.Run("splits editor args and appends config path", func(t *testing.T) {
		cmd, err := buildEditorCommand("code --wait", "/tmp/cfg.yaml")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cmd.Path != "code" {
			t.Fatalf("expected command path %q, got %q", "code", cmd.Path)
		}
		if len(cmd.Args) != 3 {
			t.Fatalf("expected 3 args, got %d", len(cmd.Args))
		}
		if cmd.Args[1] != "--wait" || cmd.Args[2] != "/tmp/cfg.yaml" {
			t.Fatalf("unexpected command args: %#v", cmd.Args)
		}
	})

	t.Run("fails on empty editor", func(t *testing.T) {
		if _, err := buildEditorCommand("   ", "/tmp/cfg.yaml"); err == nil {
			t.Fatalf("expected error for empty editor")
		}
	})
}

func TestReviewEditedConfig(t *testing.T) {
	t.Parallel()

	dataDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dataDir, "2024"), 0o755); err != nil {
		t.Fatalf("create year folder: %v", err)
	}
	withMapping := []config.MappingPreset{{Name: "iberdrola", EnergyType: "electricity", Columns: map[string]string{"invoice": "A"}}}

	tests := []struct {
		name     string
		cfg      config.Config
		contains []string
		absent   []string
	}{
		{
			name: "ready for export",
			cfg: config.Config{
				Data:     config.DataConfig{Dir: dataDir},
				Report:   config.ReportConfig{Year: 2024, Language: "es"},
				Mappings: withMapping,
			},
			contains: []string{"Report year: 2024 (es)", "Saved mappings: 1"},
			absent:   []string{"Warning", "Hint"},
		},
		{
			name: "year folder missing",
			cfg: config.Config{
				Data:     config.DataConfig{Dir: dataDir},
				Report:   config.ReportConfig{Year: 2023, Language: "en"},
				Mappings: withMapping,
			},
			contains: []string{"Warning: no factor folder for 2023"},
		},
		{
			name: "data dir missing and no mappings",
			cfg: config.Config{
				Data:   config.DataConfig{Dir: filepath.Join(dataDir, "missing")},
				Report: config.ReportConfig{Year: 2024, Language: "es"},
			},
			contains: []string{"Warning: data directory", "config create", "Saved mappings: 0", "config mapping add"},
			absent:   []string{"no factor folder"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			text := strings.Join(reviewEditedConfig(&tc.cfg), "\n")
			for _, want := range tc.contains {
				if !strings.Contains(text, want) {
					t.Fatalf("expected %q in review, got:\n%s", want, text)
				}
			}
			for _, unwanted := range tc.absent {
				if strings.Contains(text, unwanted) {
					t.Fatalf("did not expect %q in review, got:\n%s", unwanted, text)
				}
			}
		})
	}
}
