package models

// FlagConfig holds the global flags parsed before a command runs.
type FlagConfig struct {
	Verbosity  int
	ConfigPath string
	NoColor    bool
}

var DefaultFlagConfig = FlagConfig{
	Verbosity:  0,
	ConfigPath: "",
	NoColor:    false,
}
