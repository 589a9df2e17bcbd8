// Package wordlist provides the default word list for each language and
// reads replacement lists from disk.
package wordlist

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/mcoot/lettercrush/internal/model"
)

//go:embed en.txt pl.txt
var files embed.FS

// polishFold maps Polish diacritics onto the board alphabet
var polishFold = strings.NewReplacer(
	"Ą", "A", "Ć", "C", "Ę", "E", "Ł", "L", "Ń", "N",
	"Ó", "O", "Ś", "S", "Ź", "Z", "Ż", "Z",
)

// Embedded returns the built-in words for a language
func Embedded(language model.Language) ([]string, error) {
	if _, err := model.ParseLanguage(string(language)); err != nil {
		return nil, err
	}
	f, err := files.Open(string(language) + ".txt")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, language)
}

// FromDir reads <dir>/<language>.txt
func FromDir(dir string, language model.Language) ([]string, error) {
	f, err := os.Open(filepath.Join(dir, string(language)+".txt"))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, language)
}

// Load prefers a list in dir and falls back to the embedded one when dir is
// empty or has no file for the language
func Load(dir string, language model.Language) ([]string, error) {
	if dir != "" {
		words, err := FromDir(dir, language)
		if err == nil {
			return words, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read %s word list: %w", language, err)
		}
	}
	return Embedded(language)
}

// Read parses one word per line, skipping blanks and # comments. Words are
// normalized to the language's board alphabet; words containing letters
// the board can never show are dropped.
func Read(r io.Reader, language model.Language) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if word, ok := Normalize(language, line); ok {
			out = append(out, word)
		}
	}
	return out, sc.Err()
}

// Normalize uppercases a word and folds it onto the language's letters
func Normalize(language model.Language, word string) (string, bool) {
	word = strings.ToUpper(strings.TrimSpace(word))
	if language == model.LanguagePolish {
		word = polishFold.Replace(word)
	}
	if word == "" {
		return "", false
	}
	table := language.Letters()
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return "", false
		}
		if _, ok := table.Values[r]; !ok {
			return "", false
		}
	}
	return word, true
}
