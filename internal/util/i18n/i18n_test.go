package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func TestLookup(t *testing.T) {
	require.NoError(t, Register(language.German, "test.greeting", "Hallo"))

	de := message.NewPrinter(language.German, message.Catalog(builder))
	assert.Equal(t, "Hallo", lookup(de, "test.greeting", "Hello"))
	assert.Equal(t, "Fallback", lookup(de, "test.missing", "Fallback"))
	assert.Equal(t, "Empty key", lookup(de, "", "Empty key"))

	fr := message.NewPrinter(language.French, message.Catalog(builder))
	assert.Equal(t, "Hello", lookup(fr, "test.greeting", "Hello"))
}

func TestUserLanguage(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want language.Tag
	}{
		{name: "unset", env: map[string]string{}, want: language.English},
		{name: "lang", env: map[string]string{"LANG": "de_DE.UTF-8"}, want: language.MustParse("de-DE")},
		{name: "lc_all wins", env: map[string]string{"LC_ALL": "fr_FR", "LANG": "de_DE"}, want: language.MustParse("fr-FR")},
		{name: "posix", env: map[string]string{"LANG": "C.UTF-8"}, want: language.English},
		{name: "garbage", env: map[string]string{"LANG": "???"}, want: language.English},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UserLanguage(func(k string) string { return tt.env[k] })
			assert.Equal(t, tt.want, got)
		})
	}
}
