package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/lettercrush/internal/api/apierr"
	"github.com/mcoot/lettercrush/internal/api/response"
	"github.com/mcoot/lettercrush/internal/model"
	"github.com/mcoot/lettercrush/internal/services/dictionary"
	"github.com/mcoot/lettercrush/internal/wordlist"
)

// DictionaryHandler handles dictionary lookups
type DictionaryHandler struct {
	dictionaries map[model.Language]*dictionary.Service
}

// NewDictionaryHandler creates a new dictionary handler
func NewDictionaryHandler(dictionaries map[model.Language]*dictionary.Service) *DictionaryHandler {
	return &DictionaryHandler{dictionaries: dictionaries}
}

// Check handles GET /api/v1/dictionary/{lang}/check/{word}
func (h *DictionaryHandler) Check(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	lang, err := model.ParseLanguage(strings.ToLower(vars["lang"]))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	dict, ok := h.dictionaries[lang]
	if !ok || !dict.IsLoaded() {
		apierr.WriteError(w, model.ErrDictionaryNotLoaded)
		return
	}

	resp := response.DictionaryCheckResponse{
		Language:    string(lang),
		Word:        strings.ToUpper(vars["word"]),
		Completions: []string{},
	}
	// Words with letters outside the language's table can never be valid
	if word, ok := wordlist.Normalize(lang, vars["word"]); ok {
		resp.Word = word
		resp.Valid = dict.IsValidWord(word)
		resp.IsPrefix = dict.HasPrefix(word)
		if resp.IsPrefix {
			resp.Completions = dict.WordsWithPrefix(word, dictionary.DefaultPrefixResults)
		}
	}
	response.OK(w, resp)
}
