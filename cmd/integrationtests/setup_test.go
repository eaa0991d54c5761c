package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	auction "auction-engine/internal/auctionService"
	model "auction-engine/internal/models"
	"auction-engine/internal/notifier"
	"auction-engine/internal/registry"
	"auction-engine/internal/repository"
	"auction-engine/internal/scheduler"
	"auction-engine/internal/server"

	"github.com/gin-gonic/gin"
)

// TestEnv bundles the fully wired stack for integration testing.
type TestEnv struct {
	Repo   *repository.MemoryRepo
	Events *notifier.Notifier
	Closer *scheduler.CloseScheduler
	Router *gin.Engine
}

// SetupTestEnv wires repo, registry, notifier, scheduler, service and router
// with the given bidding window, and seeds the given ledger accounts.
func SetupTestEnv(t *testing.T, window time.Duration, users ...model.User) *TestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepo()
	lanes := registry.New()
	events := notifier.New()

	closer := scheduler.New(repo, repo, repo, lanes)
	t.Cleanup(closer.Stop)

	svc := auction.NewAuctionService(repo, repo, repo, lanes, events, closer, window)

	for _, user := range users {
		repo.AddUser(user)
	}

	return &TestEnv{
		Repo:   repo,
		Events: events,
		Closer: closer,
		Router: server.SetupRouter(svc, events),
	}
}

// ExecuteRequestAndParse executes an HTTP request on the env's router and
// parses the JSON response envelope.
func (env *TestEnv) ExecuteRequestAndParse(t *testing.T, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	env.Router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}
	return resp, w
}

// Data extracts the data object from a JSON response envelope.
func Data(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	data, ok := resp["data"].(map[string]any)
	if !ok {
		t.Fatalf("response has no data object: %v", resp)
	}
	return data
}
