package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/lettercrush/internal/api/apierr"
	"github.com/mcoot/lettercrush/internal/api/handler"
	"github.com/mcoot/lettercrush/internal/factory"
	"github.com/mcoot/lettercrush/internal/model"
	"github.com/mcoot/lettercrush/internal/services/session"
)

// vanishingSessions removes a session right after the first existence
// check, as a concurrent DELETE would
type vanishingSessions struct {
	session.ManagerInterface
	checks int
}

func (v *vanishingSessions) Exists(id model.SessionID) bool {
	v.checks++
	exists := v.ManagerInterface.Exists(id)
	if v.checks == 1 && exists {
		_ = v.ManagerInterface.Remove(id)
	}
	return exists
}

func TestEventsForSessionRemovedWhileConnecting(t *testing.T) {
	app := factory.NewTestApp()
	t.Cleanup(func() { _ = app.Close() })

	app.MockRandom.QueueString("gone")
	_, err := app.Sessions.Create(context.Background(), session.Options{})
	require.NoError(t, err)

	sessions := &vanishingSessions{ManagerInterface: app.Sessions}
	h := handler.NewSessionHandler(sessions, app.HubManager)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/gone/events", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "gone"})
	rr := httptest.NewRecorder()
	h.Events(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code, rr.Body.String())
	var body apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, apierr.CodeSessionNotFound, body.Error.Code)

	assert.Equal(t, 2, sessions.checks)
	assert.Nil(t, app.HubManager.GetHub("gone"))
	assert.Zero(t, app.HubManager.CleanupEmptyHubs())
}
