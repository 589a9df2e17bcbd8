package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/lettercrush/internal/model"
	"github.com/mcoot/lettercrush/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
//
// High scores live in a sorted set of ids, ranked by negated score so an
// ascending range returns the best first and ties fall back to id order.
// Each id points at a JSON record.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultConfig().KeyPrefix
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// High score operations

func (s *Storage) SaveHighScore(ctx context.Context, score *model.HighScore) error {
	id, err := s.client.Incr(ctx, highScoreSeqKey(s.cfg.KeyPrefix)).Result()
	if err != nil {
		return fmt.Errorf("allocate high score id: %w", err)
	}

	stored := *score
	stored.ID = id
	data, err := json.Marshal(&stored)
	if err != nil {
		return err
	}

	// Use pipeline for atomic record + ranking update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, highScoreKey(s.cfg.KeyPrefix, id), data, 0)
	pipe.ZAdd(ctx, highScoresKey(s.cfg.KeyPrefix), redis.Z{
		Score:  -float64(stored.Score),
		Member: scoreMember(id),
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	score.ID = id

	return s.trimHighScores(ctx)
}

// trimHighScores drops everything ranked below the retained table
func (s *Storage) trimHighScores(ctx context.Context) error {
	key := highScoresKey(s.cfg.KeyPrefix)
	overflow, err := s.client.ZRange(ctx, key, model.MaxHighScores, -1).Result()
	if err != nil {
		return err
	}
	if len(overflow) == 0 {
		return nil
	}

	pipe := s.client.TxPipeline()
	for _, member := range overflow {
		id, err := parseScoreMember(member)
		if err != nil {
			continue
		}
		pipe.Del(ctx, highScoreKey(s.cfg.KeyPrefix, id))
	}
	pipe.ZRemRangeByRank(ctx, key, model.MaxHighScores, -1)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) TopHighScores(ctx context.Context, limit int) ([]*model.HighScore, error) {
	limit = storage.ClampLimit(limit)
	members, err := s.client.ZRange(ctx, highScoresKey(s.cfg.KeyPrefix), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return []*model.HighScore{}, nil
	}

	keys := make([]string, 0, len(members))
	for _, member := range members {
		id, err := parseScoreMember(member)
		if err != nil {
			return nil, fmt.Errorf("corrupt high score member %q: %w", member, err)
		}
		keys = append(keys, highScoreKey(s.cfg.KeyPrefix, id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	scores := make([]*model.HighScore, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Record removed between the two reads
			continue
		}
		var hs model.HighScore
		if err := json.Unmarshal([]byte(raw), &hs); err != nil {
			return nil, err
		}
		scores = append(scores, &hs)
	}
	return scores, nil
}

// Dictionary operations

func (s *Storage) GetDictionaryWords(ctx context.Context, language model.Language) ([]string, error) {
	words, err := s.client.LRange(ctx, dictionaryKey(s.cfg.KeyPrefix, language), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, model.ErrDictionaryNotLoaded
	}
	return words, nil
}

func (s *Storage) SaveDictionaryWords(ctx context.Context, language model.Language, words []string) error {
	key := dictionaryKey(s.cfg.KeyPrefix, language)

	// Delete existing list and add new words atomically
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)

	if len(words) > 0 {
		members := make([]interface{}, len(words))
		for i, w := range words {
			members[i] = w
		}
		pipe.RPush(ctx, key, members...)
		if s.cfg.DictionaryTTL > 0 {
			pipe.Expire(ctx, key, s.cfg.DictionaryTTL)
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}
