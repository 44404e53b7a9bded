package meta

// CLIName is the binary name. It also names the config directory and the
// environment variable prefix.
const CLIName = "gridctl"

// EnvPrefix is the upper-cased prefix of every environment override.
const EnvPrefix = "GRIDCTL"
