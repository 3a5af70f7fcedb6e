// Package slug turns post titles into URL-safe identifiers.
package slug

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

var cyrillicToLatin = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d",
	'е': "e", 'ё': "yo", 'ж': "zh", 'з': "z", 'и': "i",
	'й': "y", 'к': "k", 'л': "l", 'м': "m", 'н': "n",
	'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t",
	'у': "u", 'ф': "f", 'х': "x", 'ц': "c", 'ч': "ch",
	'ш': "sh", 'щ': "shch", 'ъ': "", 'ы': "y", 'ь': "",
	'э': "e", 'ю': "yu", 'я': "ya",
}

// Taken reports whether a slug is already used by a stored post.
type Taken func(ctx context.Context, candidate string) (bool, error)

// Transliterate replaces lower-case Cyrillic letters with their Latin
// spelling. Anything else is left untouched.
func Transliterate(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if latin, ok := cyrillicToLatin[r]; ok {
			b.WriteString(latin)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Base builds the slug candidate for title without any uniqueness suffix.
func Base(title string) string {
	s := Transliterate(strings.ToLower(title))
	s = strings.Join(strings.Fields(s), "-")

	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return -1
	}, s)
}

// Unique returns Base(title), suffixed with "-<uuid>" when the base is
// already taken. A title with nothing usable in it yields a bare uuid.
func Unique(ctx context.Context, title string, taken Taken) (string, error) {
	candidate := Base(title)
	if strings.Trim(candidate, "-") == "" {
		return token(), nil
	}

	exists, err := taken(ctx, candidate)
	if err != nil {
		return "", err
	}
	if exists {
		return WithSuffix(candidate), nil
	}
	return candidate, nil
}

// WithSuffix appends a fresh random token to candidate.
func WithSuffix(candidate string) string {
	return candidate + "-" + token()
}

func token() string {
	return uuid.NewString()
}
