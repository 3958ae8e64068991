package logger

// Config holds configuration for the logger.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `mapstructure:"level" default:"info"`
	// Format is the log encoding (json or console).
	Format string `mapstructure:"format" default:"console"`
	// Output is a zap sink (stderr or a file path). Never stdout, which carries command output.
	Output string `mapstructure:"output" default:"stderr"`
}
