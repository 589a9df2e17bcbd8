package e2e_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/lettercrush/internal/api"
	"github.com/mcoot/lettercrush/internal/api/response"
	"github.com/mcoot/lettercrush/internal/config"
	"github.com/mcoot/lettercrush/internal/factory"
	"github.com/mcoot/lettercrush/internal/model"
	"github.com/mcoot/lettercrush/internal/services/game"
	"github.com/mcoot/lettercrush/internal/services/scoring"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "lettercrush-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/lettercrush")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	cmd.Env = append(os.Environ(), "DICTIONARY_DIR=")
	output, err := cmd.Output()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// Real clock and scheduler with short cascade delays
	gameCfg := game.DefaultConfig()
	gameCfg.MatchDelay = 10 * time.Millisecond
	gameCfg.ClearDelay = 10 * time.Millisecond
	gameCfg.CascadeDelay = 10 * time.Millisecond
	cfg := &config.Config{
		StorageType:        config.StorageMemory,
		GridSize:           6,
		DefaultLanguage:    model.LanguageEnglish,
		SessionIdleTimeout: time.Hour,
		Game:               gameCfg,
		Scoring:            scoring.DefaultConfig(),
	}

	app, err := factory.New(context.Background(), cfg, logger)
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := api.NewServer(app.Router(), api.DefaultServerConfig(), logger)
	go func() {
		if err := server.Serve(listener); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + listener.Addr().String()
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		addr: serverURL,
		shutdown: func() {
			_ = app.Close()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

func decode[T any](t *testing.T, output string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(output), &v), "output: %s", output)
	return v
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	resp := decode[response.HealthResponse](t, output)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.Sessions)
}

func TestCLI_PlaySession(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Start a session
	output, err := cli.run("session", "new", "--min-words", "3")
	require.NoError(t, err, "output: %s", output)
	sess := decode[response.Session](t, output)
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, "idle", sess.Phase)
	assert.Equal(t, 120, sess.Remaining)

	// Ask for the best word and play it
	output, err = cli.run("session", "hint", sess.ID)
	require.NoError(t, err, "output: %s", output)
	hint := decode[response.HintResponse](t, output)
	require.True(t, hint.Found)

	args := []string{"session", "submit", sess.ID, hint.Match.Word}
	for _, p := range hint.Match.Positions {
		args = append(args, fmt.Sprintf("%d,%d", p.Row, p.Col))
	}
	output, err = cli.run(args...)
	require.NoError(t, err, "output: %s", output)
	submitted := decode[response.SubmitResponse](t, output)
	assert.Equal(t, []string{hint.Match.Word}, submitted.Delta.Words)

	// The cascade settles on the real scheduler
	require.Eventually(t, func() bool {
		output, err := cli.run("session", "show", sess.ID)
		if err != nil {
			return false
		}
		var s response.Session
		if err := json.Unmarshal([]byte(output), &s); err != nil {
			return false
		}
		return s.Phase == "idle" && s.State.Moves == 1
	}, 5*time.Second, 50*time.Millisecond)

	// Pause and resume
	output, err = cli.run("session", "pause", sess.ID)
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, "paused", decode[response.Session](t, output).Phase)

	output, err = cli.run("session", "resume", sess.ID)
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, "idle", decode[response.Session](t, output).Phase)

	// End it
	output, err = cli.run("session", "end", sess.ID)
	require.NoError(t, err, "output: %s", output)

	_, err = cli.run("session", "show", sess.ID)
	assert.Error(t, err)
}

func TestCLI_InvalidWordCostsStrike(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("session", "new")
	require.NoError(t, err, "output: %s", output)
	sess := decode[response.Session](t, output)

	// Find a straight three-tile path that spells no word
	rows := sess.Grid.Rows()
	var path []string
	for r := 0; r < len(rows) && path == nil; r++ {
		for c := 0; c+2 < len(rows); c++ {
			word := rows[r][c : c+3]
			check, err := cli.run("check", word)
			require.NoError(t, err, "output: %s", check)
			if !decode[response.DictionaryCheckResponse](t, check).Valid {
				path = []string{fmt.Sprintf("%d,%d", r, c), fmt.Sprintf("%d,%d", r, c+1), fmt.Sprintf("%d,%d", r, c+2)}
				break
			}
		}
	}
	require.NotNil(t, path, "every row triple is a word")

	_, err = cli.run(append([]string{"session", "submit", sess.ID}, path...)...)
	require.Error(t, err)

	output, err = cli.run("session", "show", sess.ID)
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, 1, decode[response.Session](t, output).Strikes)
}

func TestCLI_OfflineCommands(t *testing.T) {
	cli := newCLIRunner(t, "http://127.0.0.1:1")

	output, err := cli.run("score", "stone", "--combo", "3")
	require.NoError(t, err, "output: %s", output)
	var score struct {
		Word  string `json:"word"`
		Total int    `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &score))
	want := scoring.New(scoring.DefaultConfig(), model.LanguageEnglish).ScoreWord("STONE", 3)
	assert.Equal(t, "STONE", score.Word)
	assert.Equal(t, want.Total, score.Total)

	output, err = cli.run("board", "generate", "--seed", "3")
	require.NoError(t, err, "output: %s", output)
	var board struct {
		Rows []string `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &board))
	assert.Len(t, board.Rows, 6)

	// API commands fail cleanly without a server
	_, err = cli.run("health")
	assert.Error(t, err)
}
