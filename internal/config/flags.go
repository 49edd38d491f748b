package config

import "flag"

var (
	flagConfig       = flag.String("config", "", "Path to config file")
	flagDebug        = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile      = flag.String("log-file", "", "Write logs to this file as well")
	flagBaseURL      = flag.String("base-url", "", "Site root serving model lookup and assets")
	flagAssetVersion = flag.String("asset-version", "", "Asset cache-busting version")
	flagWidth        = flag.Int("width", 0, "Window width")
	flagHeight       = flag.Int("height", 0, "Window height")
	flagAddr         = flag.String("addr", "", "Dev server listen address")
	flagModels       = flag.String("models", "", "Dev server model directory")
	flagCompositor   = flag.String("compositor", "", "Upstream character texture URL")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagBaseURL != "" {
		cfg.Viewer.BaseURL = *flagBaseURL
	}
	if *flagAssetVersion != "" {
		cfg.Viewer.AssetVersion = *flagAssetVersion
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagAddr != "" {
		cfg.Server.Addr = *flagAddr
	}
	if *flagModels != "" {
		cfg.Server.ModelRoot = *flagModels
	}
	if *flagCompositor != "" {
		cfg.Server.CompositorURL = *flagCompositor
	}
}
