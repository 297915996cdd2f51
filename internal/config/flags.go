package config

import "github.com/spf13/pflag"

const (
	flagConfig   = "config"
	flagPort     = "port"
	flagReadOnly = "read-only"
)

// RegisterFlags adds the server flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(flagConfig, "", "path to a YAML config file (default $"+PathEnv+")")
	fs.Int(flagPort, DefaultPort, "listen port (overrides PORT)")
	fs.Bool(flagReadOnly, false, "disable tools that create or change content (overrides MCP_READ_ONLY)")
}

// ConfigPath returns the --config value.
func ConfigPath(fs *pflag.FlagSet) string {
	path, _ := fs.GetString(flagConfig)
	return path
}

// ApplyFlags overrides c with the flags set explicitly on the command line.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	if fs.Changed(flagPort) {
		port, err := fs.GetInt(flagPort)
		if err != nil {
			return err
		}
		c.Port = port
	}
	if fs.Changed(flagReadOnly) {
		readOnly, err := fs.GetBool(flagReadOnly)
		if err != nil {
			return err
		}
		c.ReadOnly = readOnly
	}
	return nil
}
