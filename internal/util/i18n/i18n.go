// Package i18n looks up translated command text. Messages are keyed by a
// dotted id; the English default is passed at the call site and used
// whenever no translation is registered for the user's language.
package i18n

import (
	"os"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

var (
	builder = catalog.NewBuilder(catalog.Fallback(language.English))

	printer = sync.OnceValue(func() *message.Printer {
		return message.NewPrinter(UserLanguage(os.Getenv), message.Catalog(builder))
	})
)

// Register adds the translation of key for tag.
func Register(tag language.Tag, key, msg string) error {
	return builder.SetString(tag, key, msg)
}

// T translates a key to a string. The first parameter identifies
// a message to translate. The second parameter is the default
// string to return if the key is not found.
func T(key string, defaultValue string) string {
	return lookup(printer(), key, defaultValue)
}

func lookup(p *message.Printer, key, defaultValue string) string {
	if key == "" {
		return defaultValue
	}
	if s := p.Sprintf(key); s != key {
		return s
	}
	return defaultValue
}

// UserLanguage reads the POSIX locale variables in priority order. A value
// such as "de_DE.UTF-8" maps to de-DE; anything unparsable yields English.
func UserLanguage(getenv func(string) string) language.Tag {
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := getenv(name)
		if v == "" {
			continue
		}
		v, _, _ = strings.Cut(v, ".")
		v, _, _ = strings.Cut(v, "@")
		if v == "C" || v == "POSIX" {
			return language.English
		}
		tag, err := language.Parse(strings.ReplaceAll(v, "_", "-"))
		if err != nil {
			return language.English
		}
		return tag
	}
	return language.English
}
