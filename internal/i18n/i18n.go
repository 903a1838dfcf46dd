// Package i18n picks the message printer for command output.
package i18n

import (
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLang is the fallback language.
var DefaultLang = language.English

// SupportedLangs are the languages command output may be formatted for.
var SupportedLangs = []language.Tag{
	language.English,
	language.German,
}

var matcher = language.NewMatcher(SupportedLangs)

// MatchLanguage returns the best supported match for a locale or an
// Accept-Language style list.
func MatchLanguage(lang string) language.Tag {
	tags, _, _ := language.ParseAcceptLanguage(lang)
	tag, _, _ := matcher.Match(tags...)
	return tag
}

// NewCLIPrinter returns a printer for the locale in LC_ALL or LANG.
func NewCLIPrinter() *message.Printer {
	return message.NewPrinter(localeTag(os.Getenv("LC_ALL"), os.Getenv("LANG")))
}

func localeTag(lcAll, lang string) language.Tag {
	locale := lcAll
	if locale == "" {
		locale = lang
	}
	// en_US.UTF-8 -> en_US
	if i := strings.IndexByte(locale, '.'); i != -1 {
		locale = locale[:i]
	}
	if locale == "" || locale == "C" || locale == "POSIX" {
		return DefaultLang
	}

	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return MatchLanguage(locale)
	}
	tag, _, _ = matcher.Match(tag)
	return tag
}
