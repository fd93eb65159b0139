package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFeatureFlags(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	cfg.FeatureFlags = "quiet_mode=on,ranked_timeline=off"
	s, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	app := newTestApp(0)
	app.Get("/api/flags", s.GetFeatureFlags)

	resp := doReq(t, app, "GET", "/api/flags")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Raw       map[string]string `json:"raw"`
		Evaluated map[string]bool   `json:"evaluated"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "on", body.Raw["quiet_mode"])
	assert.True(t, body.Evaluated["quiet_mode"])
	assert.False(t, body.Evaluated["ranked_timeline"])
}
