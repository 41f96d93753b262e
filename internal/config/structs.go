package config

// Config represents the complete configuration for the gomr grading
// application. It covers all commands (grade, batch, pdf, serve) and loads
// from configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Sheet grading configuration
	Sheet SheetConfig `mapstructure:"sheet" yaml:"sheet" json:"sheet"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Batch processing configuration
	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// SheetConfig contains grading pipeline settings.
type SheetConfig struct {
	NumQuestions      int     `mapstructure:"num_questions" yaml:"num_questions" json:"num_questions"`
	NumOptions        int     `mapstructure:"num_options" yaml:"num_options" json:"num_options"`
	MinPixelThreshold int     `mapstructure:"min_pixel_threshold" yaml:"min_pixel_threshold" json:"min_pixel_threshold"`
	BlurSigma         float64 `mapstructure:"blur_sigma" yaml:"blur_sigma" json:"blur_sigma"`
	EdgeLowThreshold  float64 `mapstructure:"edge_low_threshold" yaml:"edge_low_threshold" json:"edge_low_threshold"`
	EdgeHighThreshold float64 `mapstructure:"edge_high_threshold" yaml:"edge_high_threshold" json:"edge_high_threshold"`
	BubbleMinSize     int     `mapstructure:"bubble_min_size" yaml:"bubble_min_size" json:"bubble_min_size"`
	MinAspectRatio    float64 `mapstructure:"min_aspect_ratio" yaml:"min_aspect_ratio" json:"min_aspect_ratio"`
	MaxAspectRatio    float64 `mapstructure:"max_aspect_ratio" yaml:"max_aspect_ratio" json:"max_aspect_ratio"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	File   string `mapstructure:"file" yaml:"file" json:"file"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	APIKey          string `mapstructure:"api_key" yaml:"api_key" json:"api_key"`
	RateLimitPerMin int    `mapstructure:"rate_limit_per_min" yaml:"rate_limit_per_min" json:"rate_limit_per_min"`
	ResultTTLSec    int    `mapstructure:"result_ttl_sec" yaml:"result_ttl_sec" json:"result_ttl_sec"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	Workers         int    `mapstructure:"workers" yaml:"workers" json:"workers"`
	OutputDir       string `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`
	ContinueOnError bool   `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
	Recursive       bool   `mapstructure:"recursive" yaml:"recursive" json:"recursive"`
}

// DefaultConfig returns the configuration defaults used when no file,
// environment variable, or flag overrides a setting.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Sheet: SheetConfig{
			NumQuestions:      20,
			NumOptions:        4,
			MinPixelThreshold: 500,
			BlurSigma:         1.4,
			EdgeLowThreshold:  75,
			EdgeHighThreshold: 200,
			BubbleMinSize:     20,
			MinAspectRatio:    0.9,
			MaxAspectRatio:    1.1,
		},
		Output: OutputConfig{
			Format: "json",
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     10,
			TimeoutSec:      60,
			ShutdownTimeout: 10,
			RateLimitPerMin: 60,
			ResultTTLSec:    3600,
		},
		Batch: BatchConfig{
			Workers:         4,
			ContinueOnError: true,
		},
	}
}
