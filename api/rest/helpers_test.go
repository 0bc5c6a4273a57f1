package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/middleearth/api/rest"
	"github.com/kasuganosora/middleearth/character"
	"github.com/kasuganosora/middleearth/config"
	"github.com/kasuganosora/middleearth/identity"
	"github.com/kasuganosora/middleearth/ranking"
	"github.com/kasuganosora/middleearth/scheduler"
	"github.com/kasuganosora/middleearth/session"
	"github.com/kasuganosora/middleearth/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	adminKey     = "admin-secret"
	testPassword = "Mithril-Coat-42"
)

type harness struct {
	r       *gin.Engine
	db      *gorm.DB
	ranking *ranking.Service
}

// envelope is the decoded response body.
type envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  map[string]any  `json:"errors"`
}

func newHarness(t *testing.T, tweak ...func(*config.Config)) *harness {
	t.Helper()
	db, cat := testutil.SetupSeededDB(t)
	c := testutil.SetupTestCache(t)

	cfg := &config.Config{
		Server: config.ServerConfig{AdminKey: adminKey},
		Security: config.SecurityConfig{
			JWTSecret:  "test-secret",
			JWTTTLH:    time.Hour,
			BcryptCost: bcrypt.MinCost,
			Password:   config.DefaultPasswordPolicy(),
		},
		Game: config.DefaultGame(),
	}
	for _, f := range tweak {
		f(cfg)
	}
	logger := zap.NewNop()

	store := session.NewStore(c, cfg.Security)
	rank := ranking.NewService(db, c, cfg.Game, logger)
	ids, err := identity.NewService(identity.Config{DB: db, Sessions: store, Security: cfg.Security, Board: rank, Logger: logger})
	require.NoError(t, err)
	chars, err := character.NewService(character.Config{
		DB: db, Cache: c, Catalog: cat, Rules: cfg.Game, Board: rank, Logger: logger,
	})
	require.NoError(t, err)

	sched := scheduler.New(logger, 0)
	t.Cleanup(sched.Stop)
	sched.AddTicker(ranking.RefreshTask, time.Hour, func(ctx context.Context) error {
		_, err := rank.Refresh(ctx)
		return err
	})

	r := rest.NewRouter(rest.Deps{
		Config: cfg, DB: db, Sessions: store, Catalog: cat,
		Identity: ids, Characters: chars, Ranking: rank, Scheduler: sched, Logger: logger,
	})
	return &harness{r: r, db: db, ranking: rank}
}

func (h *harness) do(method, path string, body any, token string, headers ...string) *httptest.ResponseRecorder {
	var b []byte
	if body != nil {
		b, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) envelope {
	t.Helper()
	env := decode(t, w)
	require.NoError(t, json.Unmarshal(env.Data, out), string(env.Data))
	return env
}

// signUp registers username and returns its token.
func (h *harness) signUp(t *testing.T, username string) string {
	t.Helper()
	w := h.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username":         username,
		"email":            username + "@shire.me",
		"password":         testPassword,
		"confirm_password": testPassword,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var data struct {
		Token string `json:"token"`
	}
	decodeData(t, w, &data)
	require.NotEmpty(t, data.Token)
	return data.Token
}

func characterBody(name, race, class string) map[string]any {
	return map[string]any{
		"name": name, "race_id": race, "class_id": class,
		"strength": 10, "dexterity": 16, "constitution": 12,
		"intelligence": 13, "wisdom": 11, "charisma": 10,
		"age": 120, "height_cm": 180, "weight_kg": 70,
		"eye_color": "grey", "hair_color": "silver", "skin_tone": "fair",
		"origin_region": "Lothlorien", "motivation": "Guard the wood",
		"background_story": "Long watch on the borders.",
	}
}

type characterView struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Level      int    `json:"level"`
	Experience int64  `json:"experience"`
	Dexterity  int    `json:"dexterity"`
	MaxHealth  int    `json:"max_health"`
	MaxMana    int    `json:"max_mana"`
	Alignment  string `json:"alignment"`
}

func (h *harness) createCharacter(t *testing.T, token, name string) characterView {
	t.Helper()
	w := h.do(http.MethodPost, "/api/characters", characterBody(name, "elf", "archer"), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var ch characterView
	decodeData(t, w, &ch)
	return ch
}
