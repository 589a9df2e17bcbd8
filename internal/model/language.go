package model

// Language selects the letter tables and the word list for a session
type Language string

const (
	LanguageEnglish Language = "en"
	LanguagePolish  Language = "pl"
)

// LetterWeight is a letter with its relative draw frequency
type LetterWeight struct {
	Letter rune
	Weight float64
}

// LetterTable holds the per-language data used to draw and score letters
type LetterTable struct {
	Weights  []LetterWeight // ordered, so weighted draws are reproducible
	Values   map[rune]int
	Fallback rune // most frequent letter, used when a weighted draw falls through
}

// TotalWeight returns the sum of all letter weights
func (t LetterTable) TotalWeight() float64 {
	total := 0.0
	for _, w := range t.Weights {
		total += w.Weight
	}
	return total
}

// Value returns the point value for a letter, 1 for unknown letters
func (t LetterTable) Value(letter rune) int {
	if v, ok := t.Values[letter]; ok {
		return v
	}
	return 1
}

var letterTables = map[Language]LetterTable{
	LanguageEnglish: {
		Weights: []LetterWeight{
			{'A', 8.2}, {'B', 1.5}, {'C', 2.8}, {'D', 4.3}, {'E', 12.7}, {'F', 2.2},
			{'G', 2.0}, {'H', 6.1}, {'I', 7.0}, {'J', 0.15}, {'K', 0.77}, {'L', 4.0},
			{'M', 2.4}, {'N', 6.7}, {'O', 7.5}, {'P', 1.9}, {'Q', 0.095}, {'R', 6.0},
			{'S', 6.3}, {'T', 9.1}, {'U', 2.8}, {'V', 0.98}, {'W', 2.4}, {'X', 0.15},
			{'Y', 2.0}, {'Z', 0.074},
		},
		Values: map[rune]int{
			'A': 1, 'B': 3, 'C': 3, 'D': 2, 'E': 1, 'F': 4, 'G': 2, 'H': 4, 'I': 1,
			'J': 8, 'K': 5, 'L': 1, 'M': 3, 'N': 1, 'O': 1, 'P': 3, 'Q': 10, 'R': 1,
			'S': 1, 'T': 1, 'U': 1, 'V': 4, 'W': 4, 'X': 8, 'Y': 4, 'Z': 10,
		},
		Fallback: 'E',
	},
	// Polish boards use the ASCII letters only; diacritics are folded out of
	// the word lists before loading.
	LanguagePolish: {
		Weights: []LetterWeight{
			{'A', 8.9}, {'B', 1.5}, {'C', 3.9}, {'D', 3.3}, {'E', 7.7}, {'F', 0.3},
			{'G', 1.4}, {'H', 1.1}, {'I', 8.2}, {'J', 2.3}, {'K', 3.5}, {'L', 2.1},
			{'M', 2.8}, {'N', 5.5}, {'O', 7.8}, {'P', 3.1}, {'R', 4.7}, {'S', 4.3},
			{'T', 4.0}, {'U', 2.5}, {'W', 4.7}, {'Y', 3.8}, {'Z', 5.6},
		},
		Values: map[rune]int{
			'A': 1, 'B': 3, 'C': 2, 'D': 2, 'E': 1, 'F': 5, 'G': 3, 'H': 3, 'I': 1,
			'J': 3, 'K': 2, 'L': 2, 'M': 2, 'N': 1, 'O': 1, 'P': 2, 'R': 1, 'S': 1,
			'T': 2, 'U': 3, 'W': 1, 'Y': 2, 'Z': 1,
		},
		Fallback: 'A',
	},
}

// Languages lists the supported languages
func Languages() []Language {
	return []Language{LanguageEnglish, LanguagePolish}
}

// ParseLanguage validates a language code
func ParseLanguage(code string) (Language, error) {
	lang := Language(code)
	if _, ok := letterTables[lang]; !ok {
		return "", ErrUnsupportedLanguage
	}
	return lang, nil
}

// Letters returns the table for a language, falling back to English
func (l Language) Letters() LetterTable {
	if t, ok := letterTables[l]; ok {
		return t
	}
	return letterTables[LanguageEnglish]
}
