package cli

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/pmitros/edxml-tools/internal/config"
	"github.com/pmitros/edxml-tools/pkg/edxml"
)

// clearEnv blanks every EDXML_* variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		envRoot, envAssets, envMapping, envExtract, envExtractPath,
		envDiscussion, envVideoInfo, envReport, envMetricsFile, envTimeout,
	} {
		t.Setenv(key, "")
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"problem", []string{"problem"}},
		{"problem, html ,,video", []string{"problem", "html", "video"}},
		{" , ", nil},
	}
	for _, tt := range tests {
		if got := splitList(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCoursePath(t *testing.T) {
	if got := coursePath("course/../course/"); got != "course" {
		t.Errorf("coursePath() = %q, want %q", got, "course")
	}
}

func TestResolveCleanConfig_Precedence(t *testing.T) {
	clearEnv(t)
	t.Setenv(envRoot, "env.xml")
	t.Setenv(envAssets, "env_html")
	t.Setenv(envExtract, "problem, html")

	projectCfg := &config.ProjectConfig{
		Root:                 "yaml.xml",
		Assets:               "yaml_html",
		Mapping:              "static/yaml_mapping.json",
		Extract:              config.ExtractConfig{Categories: []string{"video"}},
		DiscussionCategories: []string{"forum"},
		Timeout:              "30s",
	}
	flagged := edxml.CleanConfig{SourcePath: "course", RootDocument: "flag.xml"}

	cfg, err := resolveCleanConfig(flagged, projectCfg)
	if err != nil {
		t.Fatalf("resolveCleanConfig() error = %v", err)
	}

	if cfg.RootDocument != "flag.xml" {
		t.Errorf("RootDocument = %q, flag should win", cfg.RootDocument)
	}
	if cfg.AssetDirectory != "env_html" {
		t.Errorf("AssetDirectory = %q, environment should beat edxml.yaml", cfg.AssetDirectory)
	}
	if cfg.MappingPath != "static/yaml_mapping.json" {
		t.Errorf("MappingPath = %q, edxml.yaml should fill the gap", cfg.MappingPath)
	}
	if !reflect.DeepEqual(cfg.ExtractCategories, []string{"problem", "html"}) {
		t.Errorf("ExtractCategories = %v, want environment list", cfg.ExtractCategories)
	}
	if !reflect.DeepEqual(cfg.DiscussionCategories, []string{"forum"}) {
		t.Errorf("DiscussionCategories = %v, want edxml.yaml list", cfg.DiscussionCategories)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
}

func TestResolveCleanConfig_XPathBlocksCategories(t *testing.T) {
	clearEnv(t)
	t.Setenv(envExtract, "html")

	flagged := edxml.CleanConfig{SourcePath: "course", ExtractXPath: "//problem"}
	cfg, err := resolveCleanConfig(flagged, &config.ProjectConfig{
		Extract: config.ExtractConfig{Categories: []string{"video"}},
	})
	if err != nil {
		t.Fatalf("resolveCleanConfig() error = %v", err)
	}
	if len(cfg.ExtractCategories) != 0 {
		t.Errorf("ExtractCategories = %v, an explicit selector should leave them unset", cfg.ExtractCategories)
	}
	if cfg.ExtractXPath != "//problem" {
		t.Errorf("ExtractXPath = %q", cfg.ExtractXPath)
	}
}

func TestResolveCleanConfig_InvalidTimeout(t *testing.T) {
	t.Run("environment", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(envTimeout, "soon")
		_, err := resolveCleanConfig(edxml.CleanConfig{SourcePath: "course"}, nil)
		if !errors.Is(err, edxml.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("edxml.yaml", func(t *testing.T) {
		clearEnv(t)
		_, err := resolveCleanConfig(edxml.CleanConfig{SourcePath: "course"}, &config.ProjectConfig{Timeout: "later"})
		if !errors.Is(err, edxml.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("flag wins over bad environment", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(envTimeout, "soon")
		cfg, err := resolveCleanConfig(edxml.CleanConfig{SourcePath: "course", Timeout: time.Minute}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Timeout != time.Minute {
			t.Errorf("Timeout = %v, want 1m", cfg.Timeout)
		}
	})
}

func TestLoadProjectConfig(t *testing.T) {
	t.Run("missing file is not an error", func(t *testing.T) {
		cfg, err := loadProjectConfig(filepath.ToSlash(t.TempDir()))
		if err != nil {
			t.Fatalf("loadProjectConfig() error = %v", err)
		}
		if cfg != nil {
			t.Errorf("expected nil config, got %+v", cfg)
		}
	})

	t.Run("reads edxml.yaml", func(t *testing.T) {
		dir := t.TempDir()
		content := "root: main.xml\nfeed:\n  url_base: https://media.example.org/\n  format: mp4\n"
		if err := os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		cfg, err := loadProjectConfig(filepath.ToSlash(dir))
		if err != nil {
			t.Fatalf("loadProjectConfig() error = %v", err)
		}
		if cfg.Root != "main.xml" || cfg.Feed.Format != "mp4" || cfg.Feed.URLBase != "https://media.example.org/" {
			t.Errorf("unexpected config: %+v", cfg)
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte("root: [unclosed"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := loadProjectConfig(filepath.ToSlash(dir)); !errors.Is(err, edxml.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
