// Package apitest drives the wired HTTP engine in handler and router tests.
package apitest

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	auditapp "github.com/Faiz-abdurrachman/SIDESA/internal/application/audit"
	householdapp "github.com/Faiz-abdurrachman/SIDESA/internal/application/household"
	populationapp "github.com/Faiz-abdurrachman/SIDESA/internal/application/population"
	regionapp "github.com/Faiz-abdurrachman/SIDESA/internal/application/region"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/identity"
	"github.com/Faiz-abdurrachman/SIDESA/internal/infrastructure/auth"
	"github.com/Faiz-abdurrachman/SIDESA/internal/infrastructure/cache"
	"github.com/Faiz-abdurrachman/SIDESA/internal/infrastructure/config"
	"github.com/Faiz-abdurrachman/SIDESA/internal/infrastructure/persistence"
	"github.com/Faiz-abdurrachman/SIDESA/internal/interfaces/http/dto"
	"github.com/Faiz-abdurrachman/SIDESA/internal/interfaces/http/handler"
	"github.com/Faiz-abdurrachman/SIDESA/internal/interfaces/http/middleware"
	"github.com/Faiz-abdurrachman/SIDESA/internal/interfaces/http/router"
	"github.com/Faiz-abdurrachman/SIDESA/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// API is a fully wired engine over an in-memory SQLite registry
type API struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Tokens *auth.TokenService
	t      *testing.T
}

// Envelope is the decoded response body; Data is left raw for the caller
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

// NewAPI builds the production router over a fresh SQLite database
func NewAPI(t *testing.T) *API {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewSQLiteDB(t)
	scope := persistence.NewGormTransactionScope(db)
	residents := persistence.NewGormResidentRepository(db)
	cards := persistence.NewGormCardRepository(db)

	tokens := auth.NewTokenService(config.JWTConfig{
		Secret:                "test-secret-at-least-32-characters-long",
		Issuer:                "sidesa-test",
		AccessTokenExpiration: time.Hour,
	})
	store := cache.NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	engine, err := router.NewEngine(router.EngineConfig{
		Tokens:         tokens,
		Idempotency:    store,
		IdempotencyTTL: time.Minute,
		ServiceName:    "sidesa-test",
		CORS:           middleware.DefaultCORSConfig(),
		MaxBodySize:    1 << 20,
	}, router.Handlers{
		Resident:   handler.NewResidentHandler(populationapp.NewResidentService(residents, cards, scope, nil, nil)),
		FamilyCard: handler.NewFamilyCardHandler(householdapp.NewCardService(cards, residents, scope, nil, nil)),
		Region: handler.NewRegionHandler(regionapp.NewService(
			persistence.NewGormRWRepository(db), persistence.NewGormRTRepository(db), scope, nil, nil)),
		Audit:  handler.NewAuditHandler(auditapp.NewService(persistence.NewGormAuditRepository(db))),
		System: handler.NewSystemHandler(map[string]handler.Pinger{"database": &persistence.Database{DB: db}}),
	})
	require.NoError(t, err)

	return &API{Engine: engine, DB: db, Tokens: tokens, t: t}
}

// Token issues a bearer token for actor
func (a *API) Token(actor identity.Actor) string {
	a.t.Helper()
	token, _, err := a.Tokens.Issue(actor)
	require.NoError(a.t, err)
	return token
}

// Do sends a JSON request as actor; a zero actor sends no Authorization
// header. Extra headers are given as name/value pairs.
func (a *API) Do(method, path string, actor identity.Actor, body any, headers ...string) *httptest.ResponseRecorder {
	a.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if actor.Role != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token(actor))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	a.Engine.ServeHTTP(w, req)
	return w
}

// Decode parses a response envelope and, when dst is non-nil, its data
func Decode(t *testing.T, w *httptest.ResponseRecorder, dst any) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if dst != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, dst))
	}
	return env
}

// RequireStatus fails with the body when the response code differs
func RequireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, w.Body.String())
}
