package verbs

import (
	"context"

	"github.com/spf13/cobra"
)

const (
	View    = VerbValue("view")
	Browse  = VerbValue("browse")
	Columns = VerbValue("columns")
	Version = VerbValue("version")
	Help    = VerbValue("help")
)

// Empty type to represent the _type_ Verb. Genesis is to support a key in a Context
type VerbKey struct{}

// Verb is a global instance of the VerbKey type
var Verb = VerbKey{}

// Will represent a specific Verb (view, browse, columns, etc)
type VerbValue string

func (v VerbValue) String() string {
	return string(v)
}

// SetVerb is a PersistentPreRun hook that records verb on the command context.
func SetVerb(verb VerbValue) func(*cobra.Command, []string) {
	return func(c *cobra.Command, _ []string) {
		ctx := c.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		c.SetContext(context.WithValue(ctx, Verb, verb))
	}
}
