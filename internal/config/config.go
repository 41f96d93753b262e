// Package config defines the application configuration model and its loader.
// Settings merge from four sources, lowest to highest precedence: built-in
// defaults, configuration file, environment variables, command-line flags.
package config

import (
	"fmt"
	"strings"

	"github.com/MeKo-Tech/gomr/internal/pipeline"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

var validFormats = []string{"json", "yaml", "yml", "csv", "text", "txt"}

// Validate checks the configuration for invalid combinations.
func (c *Config) Validate() error {
	if !contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("invalid log_level %q (valid: %s)",
			c.LogLevel, strings.Join(validLogLevels, ", "))
	}
	if !contains(validFormats, strings.ToLower(c.Output.Format)) {
		return fmt.Errorf("invalid output format %q (valid: %s)",
			c.Output.Format, strings.Join(validFormats, ", "))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Server.MaxUploadMB < 1 {
		return fmt.Errorf("max_upload_mb must be at least 1, got %d", c.Server.MaxUploadMB)
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch workers must be at least 1, got %d", c.Batch.Workers)
	}
	return c.PipelineConfig().Validate()
}

// PipelineConfig converts the sheet section into a grading pipeline config.
func (c *Config) PipelineConfig() pipeline.Config {
	pc := pipeline.DefaultConfig()
	pc.NumQuestions = c.Sheet.NumQuestions
	pc.NumOptions = c.Sheet.NumOptions
	pc.MinPixelThreshold = c.Sheet.MinPixelThreshold
	pc.Edges.BlurSigma = c.Sheet.BlurSigma
	pc.Edges.LowThreshold = c.Sheet.EdgeLowThreshold
	pc.Edges.HighThreshold = c.Sheet.EdgeHighThreshold
	pc.Bubbles.MinSize = c.Sheet.BubbleMinSize
	pc.Bubbles.MinAspectRatio = c.Sheet.MinAspectRatio
	pc.Bubbles.MaxAspectRatio = c.Sheet.MaxAspectRatio
	return pc
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
