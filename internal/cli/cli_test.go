package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/lettercrush/internal/api/apierr"
	"github.com/mcoot/lettercrush/internal/api/response"
	"github.com/mcoot/lettercrush/internal/factory"
	"github.com/mcoot/lettercrush/internal/model"
	"github.com/mcoot/lettercrush/internal/services/scoring"
)

// run executes the CLI with args and returns what it wrote to stdout
func run(args ...string) (string, error) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func decodeOutput[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in      string
		want    model.Position
		wantErr bool
	}{
		{"0,0", model.Position{Row: 0, Col: 0}, false},
		{"2,5", model.Position{Row: 2, Col: 5}, false},
		{" 1 , 3 ", model.Position{Row: 1, Col: 3}, false},
		{"13", model.Position{}, true},
		{"a,1", model.Position{}, true},
		{"1,b", model.Position{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePosition(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnknownOutputFormat(t *testing.T) {
	_, err := run("-o", "yaml", "score", "cat")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestScoreCommand(t *testing.T) {
	out, err := run("-o", "json", "score", "cat", "--combo", "2")
	require.NoError(t, err)

	report := decodeOutput[ScoreReport](t, out)
	want := scoring.New(scoring.DefaultConfig(), model.LanguageEnglish).ScoreWord("CAT", 2)
	assert.Equal(t, "CAT", report.Word)
	assert.Equal(t, 2, report.Combo)
	assert.Equal(t, want.Total, report.Total)
	assert.Equal(t, 1.5, report.ComboMultiplier)
	assert.Equal(t, scoring.FormatScore(want.Total), report.Formatted)
}

func TestScoreCommandText(t *testing.T) {
	out, err := run("-o", "text", "score", "cactus")
	require.NoError(t, err)
	assert.Contains(t, out, "CACTUS (en, combo 1)")
	assert.Contains(t, out, "Length bonus: +300")
	assert.Contains(t, out, "Total: ")
}

func TestScoreCommandRejectsBadInput(t *testing.T) {
	_, err := run("score", "cat", "--combo", "0")
	assert.ErrorContains(t, err, "combo")

	_, err = run("score", "c4t")
	assert.Error(t, err)

	_, err = run("score", "cat", "--lang", "xx")
	assert.ErrorIs(t, err, model.ErrUnsupportedLanguage)
}

func TestBoardSolve(t *testing.T) {
	out, err := run("-o", "json", "board", "solve", "cats", "odxe", "gqrt", "nfyz")
	require.NoError(t, err)

	report := decodeOutput[BoardReport](t, out)
	assert.Equal(t, 4, report.Size)
	assert.Equal(t, []string{"CATS", "ODXE", "GQRT", "NFYZ"}, report.Rows)
	assert.Contains(t, report.Words, "CATS")
	require.NotEmpty(t, report.Lines)
	assert.Equal(t, "CATS", report.Lines[0].Word)
	require.NotNil(t, report.Hint)
}

func TestBoardSolveRejectsRaggedRows(t *testing.T) {
	_, err := run("board", "solve", "cats", "dog")
	assert.ErrorIs(t, err, model.ErrInvalidGrid)
}

func TestBoardGenerateIsReproducible(t *testing.T) {
	args := []string{"-o", "json", "board", "generate", "--seed", "42", "--min-words", "2"}

	first, err := run(args...)
	require.NoError(t, err)
	second, err := run(args...)
	require.NoError(t, err)

	a := decodeOutput[BoardReport](t, first)
	b := decodeOutput[BoardReport](t, second)
	assert.Equal(t, a.Rows, b.Rows)
	assert.Len(t, a.Rows, 6)
	assert.GreaterOrEqual(t, len(a.Lines), 2)
}

func TestBoardGenerateText(t *testing.T) {
	out, err := run("-o", "text", "board", "generate", "--seed", "7", "--size", "5", "--lang", "pl")
	require.NoError(t, err)
	assert.Contains(t, out, "Board 5x5 (pl)")
	assert.Contains(t, out, "Straight-line words:")
}

// ServerSuite runs the API commands against a test server
type ServerSuite struct {
	suite.Suite
	app    *factory.TestApp
	server *httptest.Server
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) SetupTest() {
	s.app = factory.NewTestApp()
	s.server = httptest.NewServer(s.app.Router())
}

func (s *ServerSuite) TearDownTest() {
	s.server.Close()
	s.Require().NoError(s.app.Close())
}

func (s *ServerSuite) run(args ...string) (string, error) {
	return run(append([]string{"--server", s.server.URL}, args...)...)
}

func (s *ServerSuite) newSession(id string) response.Session {
	s.app.MockRandom.QueueString(id)
	out, err := s.run("-o", "json", "session", "new")
	s.Require().NoError(err)
	return decodeOutput[response.Session](s.T(), out)
}

func (s *ServerSuite) TestHealth() {
	s.newSession("one")

	out, err := s.run("-o", "json", "health")
	s.Require().NoError(err)
	health := decodeOutput[response.HealthResponse](s.T(), out)
	s.Equal("ok", health.Status)
	s.Equal(1, health.Sessions)

	out, err = s.run("health")
	s.Require().NoError(err)
	s.Contains(out, "Active sessions: 1")
}

func (s *ServerSuite) TestNewAndShow() {
	created := s.newSession("cli01")
	s.Equal("cli01", created.ID)
	s.Equal("idle", created.Phase)
	s.Len(created.Grid.Rows(), 6)

	out, err := s.run("session", "show", "cli01")
	s.Require().NoError(err)
	s.Contains(out, "Session: cli01 (en)")
	s.Contains(out, "Strikes: 0/3")
	s.Contains(out, "Time remaining: 2:00")
}

func (s *ServerSuite) TestShowUnknownSession() {
	_, err := s.run("session", "show", "nope")
	s.True(IsCode(err, apierr.CodeSessionNotFound), "got %v", err)
}

func (s *ServerSuite) TestSelectAndClear() {
	s.newSession("sel")

	out, err := s.run("-o", "json", "session", "select", "sel", "0,0", "0,1")
	s.Require().NoError(err)
	sess := decodeOutput[response.Session](s.T(), out)
	s.Len(sess.Selection, 2)

	out, err = s.run("-o", "json", "session", "clear", "sel")
	s.Require().NoError(err)
	sess = decodeOutput[response.Session](s.T(), out)
	s.Empty(sess.Selection)
}

func (s *ServerSuite) TestHintThenSubmit() {
	s.newSession("play")

	out, err := s.run("-o", "json", "session", "hint", "play")
	s.Require().NoError(err)
	hint := decodeOutput[response.HintResponse](s.T(), out)
	s.Require().True(hint.Found)
	s.Require().NotNil(hint.Match)

	args := []string{"-o", "json", "session", "submit", "play", hint.Match.Word}
	for _, p := range hint.Match.Positions {
		args = append(args, fmt.Sprintf("%d,%d", p.Row, p.Col))
	}
	out, err = s.run(args...)
	s.Require().NoError(err)
	result := decodeOutput[response.SubmitResponse](s.T(), out)
	s.Equal([]string{hint.Match.Word}, result.Delta.Words)

	// Input is locked until the cascade finishes
	_, err = s.run("session", "submit", "play", hint.Match.Word)
	s.True(IsCode(err, apierr.CodePhaseBusy), "got %v", err)

	s.app.LastScheduler().Advance(2 * time.Second)
	out, err = s.run("-o", "json", "session", "show", "play")
	s.Require().NoError(err)
	s.Equal(1, decodeOutput[response.Session](s.T(), out).State.Moves)
}

func (s *ServerSuite) TestSubmitErrors() {
	s.newSession("err")

	_, err := s.run("session", "submit", "err", "AB")
	s.True(IsCode(err, apierr.CodeWordTooShort), "got %v", err)

	_, err = s.run("session", "submit", "err", "CAT", "0,0", "x,1")
	s.ErrorContains(err, "invalid row")

	_, err = s.run("session", "swap", "err", "0,0", "2,2")
	s.True(IsCode(err, apierr.CodeNotAdjacent), "got %v", err)
}

func (s *ServerSuite) TestPauseResume() {
	s.newSession("pz")

	out, err := s.run("-o", "json", "session", "pause", "pz")
	s.Require().NoError(err)
	s.Equal("paused", decodeOutput[response.Session](s.T(), out).Phase)

	_, err = s.run("session", "pause", "pz")
	s.True(IsCode(err, apierr.CodeGamePaused), "got %v", err)

	out, err = s.run("-o", "json", "session", "resume", "pz")
	s.Require().NoError(err)
	s.Equal("idle", decodeOutput[response.Session](s.T(), out).Phase)
}

func (s *ServerSuite) TestEnd() {
	s.newSession("bye")

	out, err := s.run("session", "end", "bye")
	s.Require().NoError(err)
	s.Contains(out, "Session ended")

	_, err = s.run("session", "show", "bye")
	s.True(IsCode(err, apierr.CodeSessionNotFound), "got %v", err)
}

func (s *ServerSuite) TestCheck() {
	out, err := s.run("-o", "json", "check", "cat")
	s.Require().NoError(err)
	check := decodeOutput[response.DictionaryCheckResponse](s.T(), out)
	s.True(check.Valid)
	s.Contains(check.Completions, "CATS")

	out, err = s.run("check", "zzz")
	s.Require().NoError(err)
	s.Contains(out, "ZZZ (en): not a word")
}

func (s *ServerSuite) TestHighScores() {
	out, err := s.run("highscores")
	s.Require().NoError(err)
	s.Contains(out, "No high scores yet")

	s.Require().NoError(s.app.Memory.SaveHighScore(s.T().Context(), &model.HighScore{
		SessionID:   "done",
		Score:       1500,
		Moves:       3,
		WordsFound:  4,
		LongestWord: "STONE",
		Reason:      model.GameOverTimeout,
		Language:    model.LanguageEnglish,
	}))

	out, err = s.run("highscores", "--limit", "5")
	s.Require().NoError(err)
	s.Contains(out, "1.5K")
	s.Contains(out, "longest=STONE")
}

func (s *ServerSuite) TestEventsStreamEndsWithSession() {
	s.newSession("ev")

	done := make(chan struct{})
	var out string
	var streamErr error
	go func() {
		defer close(done)
		out, streamErr = s.run("events", "ev")
	}()

	s.Require().Eventually(func() bool {
		hub := s.app.HubManager.GetHub("ev")
		return hub != nil && hub.ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	s.Require().NoError(s.app.Sessions.Remove("ev"))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		s.FailNow("events command did not return")
	}
	s.Require().NoError(streamErr)
	s.Contains(out, "Connected to session ev")
	s.Contains(out, "session_ended")
}
