package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pmitros/edxml-tools/pkg/edxml"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

type ExtractConfig struct {
	Categories []string `yaml:"categories,omitempty"`
	XPath      string   `yaml:"xpath,omitempty"`
}

type FeedConfig struct {
	URLBase   string `yaml:"url_base,omitempty"`
	CourseURL string `yaml:"course_url,omitempty"`
	Format    string `yaml:"format,omitempty"`
	MediaDir  string `yaml:"media_dir,omitempty"`
	OutputDir string `yaml:"output_dir,omitempty"`
}

type ProjectConfig struct {
	Root                 string        `yaml:"root,omitempty"`
	Assets               string        `yaml:"assets,omitempty"`
	Mapping              string        `yaml:"mapping,omitempty"`
	Extract              ExtractConfig `yaml:"extract,omitempty"`
	DiscussionCategories []string      `yaml:"discussion_categories,omitempty"`
	VideoInfo            string        `yaml:"video_info,omitempty"`
	Report               string        `yaml:"report,omitempty"`
	MetricsFile          string        `yaml:"metrics_file,omitempty"`
	Timeout              string        `yaml:"timeout,omitempty"`
	Policies             []string      `yaml:"policies,omitempty"`
	Feed                 FeedConfig    `yaml:"feed,omitempty"`
}

const ConfigFileName = edxml.ConfigFileName

func Load(sourcePath string) (*ProjectConfig, error) {
	configPath := filepath.Join(sourcePath, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", configPath, edxml.ErrInvalidConfig, err)
	}
	return &cfg, nil
}

// ApplyTo fills the fields of cfg that are still unset. Values already in
// cfg came from flags or the environment and win.
func (p *ProjectConfig) ApplyTo(cfg *edxml.CleanConfig) error {
	setString(&cfg.RootDocument, p.Root)
	setString(&cfg.AssetDirectory, p.Assets)
	setString(&cfg.MappingPath, p.Mapping)
	setString(&cfg.VideoInfoDir, p.VideoInfo)
	setString(&cfg.ReportPath, p.Report)
	setString(&cfg.MetricsFile, p.MetricsFile)

	if len(cfg.ExtractCategories) == 0 && cfg.ExtractXPath == "" {
		cfg.ExtractCategories = append([]string(nil), p.Extract.Categories...)
		cfg.ExtractXPath = p.Extract.XPath
	}
	if len(cfg.DiscussionCategories) == 0 {
		cfg.DiscussionCategories = append([]string(nil), p.DiscussionCategories...)
	}

	if cfg.Timeout == 0 && p.Timeout != "" {
		d, err := time.ParseDuration(p.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q in %s: %w", p.Timeout, ConfigFileName, edxml.ErrInvalidConfig)
		}
		cfg.Timeout = d
	}
	return nil
}

func setString(dst *string, value string) {
	if *dst == "" {
		*dst = value
	}
}
