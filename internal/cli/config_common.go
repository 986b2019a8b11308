package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/pmitros/edxml-tools/internal/config"
	"github.com/pmitros/edxml-tools/pkg/edxml"
)

// Environment variables consulted when a flag is not given.
const (
	envRoot        = "EDXML_ROOT"
	envAssets      = "EDXML_ASSETS"
	envMapping     = "EDXML_MAPPING"
	envExtract     = "EDXML_EXTRACT"
	envExtractPath = "EDXML_EXTRACT_XPATH"
	envDiscussion  = "EDXML_DISCUSSION"
	envVideoInfo   = "EDXML_VIDEO_INFO"
	envReport      = "EDXML_REPORT"
	envMetricsFile = "EDXML_METRICS_FILE"
	envTimeout     = "EDXML_TIMEOUT"
)

// coursePath normalizes a course directory argument to forward slashes,
// which every path join below the CLI expects.
func coursePath(arg string) string {
	return filepath.ToSlash(filepath.Clean(arg))
}

// loadProjectConfig loads godotenv and the course's edxml.yaml.
// Returns nil config if edxml.yaml does not exist (not an error).
func loadProjectConfig(sourcePath string) (*config.ProjectConfig, error) {
	_ = godotenv.Load()

	projectCfg, err := config.Load(filepath.FromSlash(sourcePath))
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
	}
	return projectCfg, nil
}

// applyEnv fills the fields of cfg still unset after flags from EDXML_*
// variables.
func applyEnv(cfg *edxml.CleanConfig) error {
	setFromEnv(&cfg.RootDocument, envRoot)
	setFromEnv(&cfg.AssetDirectory, envAssets)
	setFromEnv(&cfg.MappingPath, envMapping)
	setFromEnv(&cfg.VideoInfoDir, envVideoInfo)
	setFromEnv(&cfg.ReportPath, envReport)
	setFromEnv(&cfg.MetricsFile, envMetricsFile)

	if len(cfg.ExtractCategories) == 0 && cfg.ExtractXPath == "" {
		cfg.ExtractCategories = splitList(os.Getenv(envExtract))
		cfg.ExtractXPath = os.Getenv(envExtractPath)
	}
	if len(cfg.DiscussionCategories) == 0 {
		cfg.DiscussionCategories = splitList(os.Getenv(envDiscussion))
	}

	if v := os.Getenv(envTimeout); cfg.Timeout == 0 && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", envTimeout, v, edxml.ErrInvalidConfig)
		}
		cfg.Timeout = d
	}
	return nil
}

// resolveCleanConfig layers flags over the environment over edxml.yaml.
// Remaining gaps are filled by CleanConfig.ApplyDefaults.
func resolveCleanConfig(flagged edxml.CleanConfig, projectCfg *config.ProjectConfig) (edxml.CleanConfig, error) {
	cfg := flagged
	if err := applyEnv(&cfg); err != nil {
		return edxml.CleanConfig{}, err
	}
	if projectCfg != nil {
		if err := projectCfg.ApplyTo(&cfg); err != nil {
			return edxml.CleanConfig{}, err
		}
	}
	return cfg, nil
}

func setFromEnv(dst *string, key string) {
	if *dst == "" {
		*dst = os.Getenv(key)
	}
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
