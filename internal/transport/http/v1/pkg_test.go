package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/contentstudio-dev/gateway/internal/executor"
	"github.com/contentstudio-dev/gateway/internal/ratelimit"
	"github.com/contentstudio-dev/gateway/internal/repository"
	"github.com/contentstudio-dev/gateway/internal/service"
	"github.com/contentstudio-dev/gateway/internal/stream"
	"github.com/contentstudio-dev/gateway/policy"
)

func newTestHandler(t *testing.T) (*Handler, store.Store) {
	t.Helper()

	registry, err := policy.LoadRegistry("")
	require.NoError(t, err)

	engine, err := policy.NewEngine(context.Background(), registry)
	require.NoError(t, err)

	db, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	local := executor.NewLocal()
	sandbox := executor.NewSandbox(8, local)
	remote := executor.NewRemote("", 5*time.Second)
	dispatcher := executor.NewDispatcher(local, sandbox, remote)

	hub := stream.NewHub()
	svc := service.New(db, registry, engine, ratelimit.New(), dispatcher, hub)
	return NewHandler(svc, hub), db
}

// executeTool drives ExecuteTool through an echo context and returns the
// recorder for assertions.
func executeTool(t *testing.T, e *echo.Echo, h *Handler, toolID, role string) *httptest.ResponseRecorder {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"role": role})
	req := httptest.NewRequest(http.MethodPost, "/v1/tools/"+toolID+"/execute", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/tools/:tool_id/execute")
	c.SetParamNames("tool_id")
	c.SetParamValues(toolID)

	require.NoError(t, h.ExecuteTool(c))
	return rec
}
