package rest_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/kasuganosora/middleearth/config"
	"github.com/kasuganosora/middleearth/ranking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmin_RequiresKey(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodGet, "/api/admin/scheduler", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.do(http.MethodGet, "/api/admin/scheduler", nil, "", "X-Admin-Key", "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.do(http.MethodGet, "/api/admin/scheduler", nil, "", "X-Admin-Key", adminKey)
	require.Equal(t, http.StatusOK, w.Code)
	var tasks []struct {
		Name string `json:"name"`
	}
	decodeData(t, w, &tasks)
	require.Len(t, tasks, 1)
	assert.Equal(t, ranking.RefreshTask, tasks[0].Name)
}

func TestAdmin_DisabledWithoutKey(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Server.AdminKey = "" })
	w := h.do(http.MethodPost, "/api/admin/catalog/seed", nil, "", "X-Admin-Key", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAdmin_IPWhitelist(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Server.AdminIPs = []string{"10.9.9.9"} })
	w := h.do(http.MethodGet, "/api/admin/scheduler", nil, "", "X-Admin-Key", adminKey)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdmin_SeedCatalogIsIdempotent(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/api/admin/catalog/seed", nil, "", "X-Admin-Key", adminKey)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var data struct {
		Inserted struct {
			Races   int64 `json:"races"`
			Classes int64 `json:"classes"`
		} `json:"inserted"`
		Races   int64 `json:"races"`
		Classes int64 `json:"classes"`
	}
	decodeData(t, w, &data)
	assert.Zero(t, data.Inserted.Races, "harness already seeded")
	assert.Zero(t, data.Inserted.Classes)
	assert.Equal(t, int64(9), data.Races)
	assert.Equal(t, int64(11), data.Classes)
}

func TestAdmin_RefreshRanking(t *testing.T) {
	h := newHarness(t)
	tok := h.signUp(t, "faramir")
	ch := h.createCharacter(t, tok, "Faramir")
	require.NoError(t, h.ranking.Untrack(context.Background(), ch.ID))

	w := h.do(http.MethodPost, "/api/admin/ranking/refresh", nil, "", "X-Admin-Key", adminKey)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = h.do(http.MethodGet, "/api/leaderboard", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var entries []ranking.Entry
	decodeData(t, w, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, ch.ID, entries[0].CharacterID)
}
