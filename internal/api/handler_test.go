package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clientrepo "github.com/onboardflow/onboardflow/internal/client/repositoryimpl"
	"github.com/onboardflow/onboardflow/internal/engine"
	"github.com/onboardflow/onboardflow/internal/eventbus"
	"github.com/onboardflow/onboardflow/internal/member"
	memberrepo "github.com/onboardflow/onboardflow/internal/member/repositoryimpl"
	"github.com/onboardflow/onboardflow/internal/persist"
	projectrepo "github.com/onboardflow/onboardflow/internal/project/repositoryimpl"
	pushsubrepo "github.com/onboardflow/onboardflow/internal/pushsubscription/repositoryimpl"
	settingsrepo "github.com/onboardflow/onboardflow/internal/settings/repositoryimpl"
	taskrepo "github.com/onboardflow/onboardflow/internal/task/repositoryimpl"
	"github.com/onboardflow/onboardflow/pkg/storage"
)

func newTestServer(t *testing.T) (*httptest.Server, *engine.Engine) {
	t.Helper()

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	bus := eventbus.New()
	syncer := persist.NewRepositorySyncer(
		clientrepo.NewYAMLRepository(store),
		projectrepo.NewYAMLRepository(store),
		taskrepo.NewYAMLRepository(store),
		memberrepo.NewYAMLRepository(store),
		settingsrepo.NewYAMLRepository(store),
	)
	dispatcher := persist.NewDispatcher(syncer)
	ctx, cancel := context.WithCancel(context.Background())
	dispatcher.Start(ctx)
	t.Cleanup(func() {
		cancel()
		dispatcher.Wait()
	})

	eng := engine.New(syncer, dispatcher, bus)
	h := NewHandler(eng, bus, pushsubrepo.NewYAMLRepository(store), "test-vapid-public-key")

	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return srv, eng
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) (code, message string) {
	t.Helper()
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Code, body.Message
}

func TestCreateClientAndFetchState(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/clients", map[string]any{
		"businessName": "Warung A",
		"requirements": []string{"Greeting flow"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Waiting for data", created.Status)

	resp = doJSON(t, http.MethodGet, srv.URL+"/state", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var state engine.State
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	require.Len(t, state.Clients, 1)
	assert.Equal(t, "Warung A", state.Clients[0].BusinessName)
	require.Len(t, state.Tasks, 1)
	assert.Equal(t, "Waiting for Data", state.Tasks[0].Title)
}

func TestCreateClientRejectsInvalidBody(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/clients", bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	code, _ := decodeError(t, resp)
	assert.Equal(t, "invalid_argument", code)
}

func TestCreateClientRequiresBusinessName(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/clients", map[string]any{"name": "no business"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	code, message := decodeError(t, resp)
	assert.Equal(t, "invalid_argument", code)
	assert.Equal(t, "business name is required", message)
}

func TestToggleTimerRequiresMemberHeader(t *testing.T) {
	srv, eng := newTestServer(t)

	_, err := eng.AddClient(engine.NewClientInput{BusinessName: "Warung A"})
	require.NoError(t, err)
	taskID := eng.Snapshot().Tasks[0].ID

	resp := doJSON(t, http.MethodPost, srv.URL+"/tasks/"+taskID+"/timer", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestToggleTimerWithMemberHeader(t *testing.T) {
	srv, eng := newTestServer(t)

	m, err := eng.AddTeamMember("Sari", "sari@example.com", "pw", member.RoleSupport)
	require.NoError(t, err)
	_, err = eng.AddClient(engine.NewClientInput{BusinessName: "Warung A"})
	require.NoError(t, err)
	taskID := eng.Snapshot().Tasks[0].ID

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/tasks/"+taskID+"/timer", nil)
	require.NoError(t, err)
	req.Header.Set("X-Member-Id", m.ID)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated struct {
		ActiveUserIDs []string `json:"activeUserIds"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	assert.Equal(t, []string{m.ID}, updated.ActiveUserIDs)
}

func TestProgressEndpointDrivesTransition(t *testing.T) {
	srv, eng := newTestServer(t)

	c, err := eng.AddClient(engine.NewClientInput{BusinessName: "Warung A"})
	require.NoError(t, err)
	taskID := eng.Snapshot().Tasks[0].ID

	resp := doJSON(t, http.MethodPost, srv.URL+"/tasks/"+taskID+"/progress", map[string]any{
		"note":                 "all data in",
		"completionPercentage": 100,
		"newRequirements":      []string{"Payment QR"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got, ok := eng.Client(c.ID)
	require.True(t, ok)
	assert.Equal(t, "Onboarding", string(got.Status))
	assert.Contains(t, got.Requirements, "Payment QR")
}

func TestUnknownTaskIs404(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/tasks/nope/complete", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	code, _ := decodeError(t, resp)
	assert.Equal(t, "not_found", code)
}

func TestUnknownRouteIs404JSON(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPushSubscriptionLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	endpoint := "https://push.example.com/sub/abc"
	body := map[string]any{
		"endpoint": endpoint,
		"keys":     map[string]string{"p256dh": "pk", "auth": "ak"},
	}

	resp := doJSON(t, http.MethodPost, srv.URL+"/push/subscriptions", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotEmpty(t, created.ID)

	// Same endpoint again returns the stored record.
	resp = doJSON(t, http.MethodPost, srv.URL+"/push/subscriptions", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var again struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&again))
	assert.Equal(t, created.ID, again.ID)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/push/subscriptions", map[string]string{"endpoint": endpoint})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/push/subscriptions", map[string]string{"endpoint": endpoint})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestVapidPublicKeyEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/push/vapid-public-key", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		PublicKey string `json:"publicKey"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "test-vapid-public-key", body.PublicKey)
}

func TestSettingsEndpointValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPut, srv.URL+"/settings/workflow-deadlines", map[string]any{
		"taskTitle": "Waiting for Data",
		"days":      0,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	code, message := decodeError(t, resp)
	assert.Equal(t, "invalid_argument", code)
	assert.Equal(t, "deadline days must be a positive number", message)
}
