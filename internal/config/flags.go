package config

// Flags carries command-line overrides. Zero values leave the loaded
// configuration untouched.
type Flags struct {
	ConfigPath    string
	Debug         bool
	LogFile       string
	OutputDir     string
	TextureSize   int
	TextureFormat string
	Seed          uint64
	Workers       int
	DatabaseURL   string
}

// apply applies CLI flag overrides to the config.
func (f Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
	if f.OutputDir != "" {
		cfg.Output.Dir = f.OutputDir
	}
	if f.TextureSize > 0 {
		cfg.Generation.TextureSize = f.TextureSize
	}
	if f.TextureFormat != "" {
		cfg.Generation.TextureFormat = f.TextureFormat
	}
	if f.Seed != 0 {
		cfg.Generation.Seed = f.Seed
	}
	if f.Workers > 0 {
		cfg.Batch.Workers = f.Workers
	}
	if f.DatabaseURL != "" {
		cfg.Database.URL = f.DatabaseURL
	}
}
