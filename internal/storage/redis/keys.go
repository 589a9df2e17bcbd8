package redis

import (
	"fmt"
	"strconv"

	"github.com/mcoot/lettercrush/internal/model"
)

// highScoresKey returns the sorted set ranking high score ids
func highScoresKey(prefix string) string {
	return fmt.Sprintf("%s:highscores", prefix)
}

// highScoreKey returns the Redis key for one high score record
func highScoreKey(prefix string, id int64) string {
	return fmt.Sprintf("%s:highscore:%d", prefix, id)
}

// highScoreSeqKey returns the counter used to allocate high score ids
func highScoreSeqKey(prefix string) string {
	return fmt.Sprintf("%s:seq:highscore", prefix)
}

// dictionaryKey returns the Redis key for a language's word list
func dictionaryKey(prefix string, language model.Language) string {
	return fmt.Sprintf("%s:dictionary:%s", prefix, language)
}

// scoreMember encodes an id so that equal scores rank in save order
func scoreMember(id int64) string {
	return fmt.Sprintf("%020d", id)
}

func parseScoreMember(member string) (int64, error) {
	return strconv.ParseInt(member, 10, 64)
}
