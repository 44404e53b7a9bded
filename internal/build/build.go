package build

// Info describes the running binary. Values are injected with -ldflags.
type Info struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
}

// Empty type to represent the _type_ Info. Genesis is to support a key in a Context
type Key struct{}

// InfoKey is a global instance of the Key type
var InfoKey = Key{}

// Populated at link time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Current returns the link-time build info.
func Current() *Info {
	return &Info{Version: Version, Commit: Commit, Date: Date}
}
