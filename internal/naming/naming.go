// Package naming converts token and section names between the identifier
// conventions of the export targets.
package naming

import (
	"strings"
	"unicode"
)

// Words splits a name into lower-case words. Dots, dashes, underscores,
// slashes and spaces separate words, as does a lower-to-upper case change:
//
//	"fontSize"      -> ["font", "size"]
//	"color.primary" -> ["color", "primary"]
//	"radius-2xl"    -> ["radius", "2xl"]
func Words(name string) []string {
	var (
		words []string
		cur   []rune
		prev  rune
	)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}

	for _, r := range name {
		switch {
		case r == '-' || r == '_' || r == '.' || r == '/' || unicode.IsSpace(r):
			flush()
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush()
			cur = append(cur, r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			cur = append(cur, r)
		default:
			// punctuation such as "(" or "%" never reaches an identifier
			flush()
		}
		prev = r
	}
	flush()
	return words
}

// Kebab joins words with dashes: "font-size".
func Kebab(parts ...string) string {
	return strings.Join(collect(parts), "-")
}

// Snake joins words with underscores: "font_size".
func Snake(parts ...string) string {
	return strings.Join(collect(parts), "_")
}

// Camel joins words in camelCase: "fontSize".
func Camel(parts ...string) string {
	words := collect(parts)
	for i := 1; i < len(words); i++ {
		words[i] = capitalize(words[i])
	}
	return strings.Join(words, "")
}

// Pascal joins words in PascalCase: "FontSize".
func Pascal(parts ...string) string {
	words := collect(parts)
	for i := range words {
		words[i] = capitalize(words[i])
	}
	return strings.Join(words, "")
}

// Identifier makes name usable as a source identifier by prefixing it when it
// starts with a digit or is empty.
func Identifier(prefix, name string) string {
	if name == "" {
		return prefix
	}
	if r := []rune(name)[0]; unicode.IsDigit(r) {
		return prefix + name
	}
	return name
}

// Title turns a name into display words: "borderRadius" -> "Border Radius".
func Title(name string) string {
	words := Words(name)
	for i := range words {
		words[i] = capitalize(words[i])
	}
	return strings.Join(words, " ")
}

func collect(parts []string) []string {
	var words []string
	for _, p := range parts {
		words = append(words, Words(p)...)
	}
	return words
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	runes := []rune(word)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
