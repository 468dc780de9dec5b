package config

const (
	defaultStateDir           = "~/.local/share/winnow"
	defaultLogDir             = "~/.local/share/winnow/logs"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultPollInterval       = 5
	defaultErrorRetryInterval = 10
	defaultStaleTimeout       = 1800
	defaultReclaimInterval    = 300
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Worker: Worker{
			PollInterval:       defaultPollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			StaleTimeout:       defaultStaleTimeout,
			ReclaimInterval:    defaultReclaimInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
