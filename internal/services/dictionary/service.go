package dictionary

import (
	"bufio"
	"context"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/mcoot/lettercrush/internal/model"
)

// MinWordLength is the shortest word the dictionary accepts
const MinWordLength = 3

// DefaultPrefixResults caps WordsWithPrefix when max is not positive
const DefaultPrefixResults = 10

// WordStore is where dictionary word lists are cached per language
type WordStore interface {
	GetDictionaryWords(ctx context.Context, language model.Language) ([]string, error)
	SaveDictionaryWords(ctx context.Context, language model.Language, words []string) error
}

type node struct {
	children map[rune]*node
	terminal bool
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

// Service validates words and prefixes against a prefix tree
type Service struct {
	store    WordStore
	language model.Language

	mu     sync.RWMutex
	root   *node
	words  []string // distinct words in load order
	loaded bool
}

// New creates a new dictionary Service for a language
func New(store WordStore, language model.Language) *Service {
	return &Service{
		store:    store,
		language: language,
		root:     newNode(),
	}
}

// Language returns the language of the loaded word list
func (s *Service) Language() model.Language {
	return s.language
}

// LoadFromStorage loads dictionary words from storage
func (s *Service) LoadFromStorage(ctx context.Context) error {
	words, err := s.store.GetDictionaryWords(ctx, s.language)
	if err != nil {
		return err
	}
	if len(words) == 0 {
		return model.ErrDictionaryNotLoaded
	}
	return s.LoadWords(words)
}

// LoadFromFile loads dictionary words from a file (one word per line)
// and caches them in storage
func (s *Service) LoadFromFile(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return s.LoadFromReader(ctx, file)
}

// LoadFromReader loads dictionary words from a reader (one word per line)
// and caches them in storage
func (s *Service) LoadFromReader(ctx context.Context, r io.Reader) error {
	words, err := ReadWords(r)
	if err != nil {
		return err
	}

	// Save to storage for future use
	if err := s.store.SaveDictionaryWords(ctx, s.language, words); err != nil {
		return err
	}

	return s.LoadWords(words)
}

// ReadWords reads one word per line, skipping blanks and '#' comments
func ReadWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		words = append(words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

// LoadWords resets the tree and inserts every word of at least
// MinWordLength letters. Shorter entries are dropped.
func (s *Service) LoadWords(words []string) error {
	root := newNode()
	distinct := make([]string, 0, len(words))
	for _, word := range words {
		word = strings.ToUpper(strings.TrimSpace(word))
		if utf8.RuneCountInString(word) < MinWordLength {
			continue
		}
		if insert(root, word) {
			distinct = append(distinct, word)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = root
	s.words = distinct
	s.loaded = true
	return nil
}

// insert adds a word, returning true if it was not already present
func insert(root *node, word string) bool {
	n := root
	for _, r := range word {
		child, ok := n.children[r]
		if !ok {
			child = newNode()
			n.children[r] = child
		}
		n = child
	}
	if n.terminal {
		return false
	}
	n.terminal = true
	return true
}

// find walks the tree along key and returns the node reached, or nil
func (s *Service) find(key string) *node {
	n := s.root
	for _, r := range key {
		n = n.children[r]
		if n == nil {
			return nil
		}
	}
	return n
}

// IsValidWord checks if a word exists in the dictionary, ignoring case
func (s *Service) IsValidWord(word string) bool {
	if utf8.RuneCountInString(word) < MinWordLength {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := s.find(strings.ToUpper(word))
	return n != nil && n.terminal
}

// HasPrefix returns true if at least one word starts with prefix.
// The empty prefix matches whenever any word is loaded.
func (s *Service) HasPrefix(prefix string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.words) == 0 {
		return false
	}
	return s.find(strings.ToUpper(prefix)) != nil
}

// WordsWithPrefix returns up to max words starting with prefix, in
// alphabetical order
func (s *Service) WordsWithPrefix(prefix string, max int) []string {
	if max <= 0 {
		max = DefaultPrefixResults
	}
	prefix = strings.ToUpper(prefix)

	s.mu.RLock()
	defer s.mu.RUnlock()

	start := s.find(prefix)
	if start == nil {
		return nil
	}

	var results []string
	var walk func(n *node, acc []rune)
	walk = func(n *node, acc []rune) {
		if len(results) >= max {
			return
		}
		if n.terminal {
			results = append(results, string(acc))
		}
		keys := make([]rune, 0, len(n.children))
		for r := range n.children {
			keys = append(keys, r)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		for _, r := range keys {
			walk(n.children[r], append(acc, r))
		}
	}
	walk(start, []rune(prefix))
	return results
}

// IsLoaded returns whether the dictionary has been loaded
func (s *Service) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// WordCount returns the number of distinct words in the dictionary
func (s *Service) WordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.words)
}

// Words returns a copy of the loaded words in load order
func (s *Service) Words() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.words))
	copy(out, s.words)
	return out
}

// FindAllValidWords finds all valid words in a line of letters.
// Returns every valid substring of at least MinWordLength letters.
func (s *Service) FindAllValidWords(letters []rune) []ValidWord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []ValidWord
	n := len(letters)

	for start := 0; start < n; start++ {
		cur := s.root
		for end := start; end < n; end++ {
			cur = cur.children[letters[end]]
			if cur == nil {
				break
			}
			if cur.terminal && end+1-start >= MinWordLength {
				results = append(results, ValidWord{
					Word:  string(letters[start : end+1]),
					Start: start,
					End:   end + 1,
				})
			}
		}
	}

	return results
}

// ValidWord represents a valid word found in a sequence of letters
type ValidWord struct {
	Word  string
	Start int // Inclusive
	End   int // Exclusive
}

// Interface check
type ServiceInterface interface {
	IsValidWord(word string) bool
	HasPrefix(prefix string) bool
	WordsWithPrefix(prefix string, max int) []string
	IsLoaded() bool
	WordCount() int
	Words() []string
	FindAllValidWords(letters []rune) []ValidWord
	LoadFromStorage(ctx context.Context) error
	LoadFromFile(ctx context.Context, path string) error
	LoadWords(words []string) error
}

var _ ServiceInterface = (*Service)(nil)
