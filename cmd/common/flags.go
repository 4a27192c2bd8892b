package common

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// CommonFlags contains flags that are shared across multiple commands
type CommonFlags struct {
	ConfigFile *string
	EnvFile    *string
	DataRoot   *string

	Verbose  *bool
	Silent   *bool
	NoEmojis *bool

	Version *bool
}

// RegisterCommonFlags registers the shared flags on fs
func RegisterCommonFlags(fs *flag.FlagSet) *CommonFlags {
	return &CommonFlags{
		ConfigFile: fs.String("config", "config.json", "Strategy config file (.json, .yaml or .yml)"),
		EnvFile:    fs.String("env", ".env", "Environment file path"),
		DataRoot:   fs.String("data-root", "data", "Data root directory for downloaded candles"),

		Verbose:  fs.Bool("verbose", false, "Enable verbose output"),
		Silent:   fs.Bool("silent", false, "Enable silent mode (minimal output)"),
		NoEmojis: fs.Bool("no-emojis", false, "Disable emoji output"),

		Version: fs.Bool("version", false, "Show version information"),
	}
}

// SetupLogger configures the default logger based on common flags
func SetupLogger(flags *CommonFlags) {
	logger := DefaultLogger
	logger.SetSilentMode(*flags.Silent)
	if *flags.Verbose {
		logger.Level = LogLevelDebug
	}
	if *flags.NoEmojis {
		logger.ShowEmojis = false
	}
}

// FlagValidator collects flag errors so they can be reported together
type FlagValidator struct {
	errors []string
}

// NewFlagValidator creates a new flag validator
func NewFlagValidator() *FlagValidator {
	return &FlagValidator{}
}

// ValidateInt validates an int flag value
func (v *FlagValidator) ValidateInt(name string, value, min, max int) *FlagValidator {
	if value < min || value > max {
		v.errors = append(v.errors, fmt.Sprintf("%s must be between %d and %d, got: %d", name, min, max, value))
	}
	return v
}

// ValidateChoice validates that a string is one of the allowed choices
func (v *FlagValidator) ValidateChoice(name, value string, choices []string) *FlagValidator {
	for _, choice := range choices {
		if value == choice {
			return v
		}
	}
	v.errors = append(v.errors, fmt.Sprintf("%s must be one of [%s], got: %s", name, strings.Join(choices, ", "), value))
	return v
}

// ValidateFile validates that a file exists
func (v *FlagValidator) ValidateFile(name, path string, required bool) *FlagValidator {
	if path == "" {
		if required {
			v.errors = append(v.errors, fmt.Sprintf("%s is required", name))
		}
		return v
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		v.errors = append(v.errors, fmt.Sprintf("%s file does not exist: %s", name, path))
	}
	return v
}

// AddError adds a custom validation error
func (v *FlagValidator) AddError(message string) *FlagValidator {
	v.errors = append(v.errors, message)
	return v
}

// HasErrors returns true if there are validation errors
func (v *FlagValidator) HasErrors() bool {
	return len(v.errors) > 0
}

// GetError returns a formatted error message with all validation errors
func (v *FlagValidator) GetError() error {
	switch len(v.errors) {
	case 0:
		return nil
	case 1:
		return fmt.Errorf("validation error: %s", v.errors[0])
	default:
		return fmt.Errorf("validation errors:\n  - %s", strings.Join(v.errors, "\n  - "))
	}
}

// UsageFormatter prints a description and examples ahead of the flag defaults
type UsageFormatter struct {
	AppName        string
	AppDescription string
	Examples       []UsageExample
}

// UsageExample represents a usage example
type UsageExample struct {
	Command     string
	Description string
}

// NewUsageFormatter creates a new usage formatter
func NewUsageFormatter(appName, description string) *UsageFormatter {
	return &UsageFormatter{AppName: appName, AppDescription: description}
}

// AddExample adds a usage example
func (u *UsageFormatter) AddExample(command, description string) *UsageFormatter {
	u.Examples = append(u.Examples, UsageExample{Command: command, Description: description})
	return u
}

// Install makes fs print the formatted usage
func (u *UsageFormatter) Install(fs *flag.FlagSet) {
	fs.Usage = func() {
		u.PrintUsage(fs.Output(), fs)
	}
}

// PrintUsage prints formatted usage information
func (u *UsageFormatter) PrintUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, "%s - %s\n\n", u.AppName, u.AppDescription)
	fmt.Fprintf(w, "USAGE:\n  %s [OPTIONS]\n\n", u.AppName)

	if len(u.Examples) > 0 {
		fmt.Fprintf(w, "EXAMPLES:\n")
		for _, example := range u.Examples {
			fmt.Fprintf(w, "  # %s\n  %s\n\n", example.Description, example.Command)
		}
	}

	fmt.Fprintf(w, "OPTIONS:\n")
	fs.SetOutput(w)
	fs.PrintDefaults()
}

// ParseFlags parses args, applies the common flags and handles -version.
// The bool is true when the program should exit without doing anything else.
func ParseFlags(fs *flag.FlagSet, args []string, appName string, flags *CommonFlags) (bool, error) {
	if err := fs.Parse(args); err != nil {
		return true, err
	}
	if *flags.Version {
		PrintVersion(DefaultLogger.Out, appName)
		return true, nil
	}
	SetupLogger(flags)
	return false, nil
}
