package factory

import (
	"time"

	"github.com/mcoot/lettercrush/internal/dependencies/mocks"
	"github.com/mcoot/lettercrush/internal/dependencies/random"
	"github.com/mcoot/lettercrush/internal/dependencies/scheduler"
	"github.com/mcoot/lettercrush/internal/model"
	"github.com/mcoot/lettercrush/internal/services/dictionary"
	"github.com/mcoot/lettercrush/internal/services/session"
	"github.com/mcoot/lettercrush/internal/storage/memory"
	"github.com/mcoot/lettercrush/internal/testutil"
	"github.com/mcoot/lettercrush/internal/wordlist"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Memory     *memory.Storage

	// Schedulers holds each session's scheduler in creation order
	Schedulers []*mocks.ManualScheduler
}

// NewTestApp creates an App with in-memory storage, mocked time and ids,
// and virtual-time schedulers. English uses the small test word list;
// Polish uses the embedded list. Boards are seeded per session, so the
// same sequence of calls always deals the same boards.
func NewTestApp() *TestApp {
	store := memory.New()
	t := &TestApp{
		MockClock:  mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)),
		MockRandom: mocks.NewMockRandom(),
		Memory:     store,
	}

	en := dictionary.New(store, model.LanguageEnglish)
	_ = en.LoadWords(testutil.Words())
	pl := dictionary.New(store, model.LanguagePolish)
	if words, err := wordlist.Embedded(model.LanguagePolish); err == nil {
		_ = pl.LoadWords(words)
	}
	dicts := map[model.Language]*dictionary.Service{
		model.LanguageEnglish: en,
		model.LanguagePolish:  pl,
	}

	seed := uint64(0)
	t.App = newWithDependencies(store, dicts, session.DefaultConfig(), session.Dependencies{
		Clock: t.MockClock,
		IDs:   t.MockRandom,
		BoardRandom: func() random.Random {
			seed++
			return random.NewSeeded(seed)
		},
		NewScheduler: func() scheduler.Runner {
			sched := mocks.NewManualScheduler(nil)
			t.Schedulers = append(t.Schedulers, sched)
			return sched
		},
	}, testutil.NopLogger())
	return t
}

// LastScheduler returns the scheduler of the most recently created session
func (t *TestApp) LastScheduler() *mocks.ManualScheduler {
	if len(t.Schedulers) == 0 {
		return nil
	}
	return t.Schedulers[len(t.Schedulers)-1]
}
