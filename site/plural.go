package site

import "fmt"

// FoundMessage reports the number of search results with the Russian noun
// form for n: 1, 21, 101 take the singular; 2-4, 22-24 the paucal; the rest,
// including 11-14, the plural.
func FoundMessage(n int) string {
	switch pluralForm(n) {
	case formOne:
		return fmt.Sprintf("Найден %d пост!", n)
	case formFew:
		return fmt.Sprintf("Найдено %d поста!", n)
	default:
		return fmt.Sprintf("Найдено %d постов!", n)
	}
}

type plural int

const (
	formOne plural = iota
	formFew
	formMany
)

func pluralForm(n int) plural {
	if n < 0 {
		n = -n
	}
	mod10, mod100 := n%10, n%100
	switch {
	case mod10 == 1 && mod100 != 11:
		return formOne
	case mod10 >= 2 && mod10 <= 4 && (mod100 < 12 || mod100 > 14):
		return formFew
	default:
		return formMany
	}
}
