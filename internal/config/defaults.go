package config

const (
	defaultInputDir   = "inputs"
	defaultOutputDir  = "runs"
	defaultLogDir     = "~/.local/share/dpcretl/logs"
	defaultLogFormat  = "console"
	defaultLogLevel   = "info"
	defaultPlotWidth  = 1024
	defaultPlotHeight = 600
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InputDir:  defaultInputDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Plots: Plots{
			Enabled: true,
			Width:   defaultPlotWidth,
			Height:  defaultPlotHeight,
		},
		Validation: Validation{
			DecimalComma: true,
			FlagNegative: true,
		},
		Index: Index{
			Enabled: true,
		},
	}
}
