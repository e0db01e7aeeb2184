package route

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casevault/pkg/auth"
	"casevault/pkg/config"
	"casevault/pkg/llm"
	interfaces "casevault/server/repository/interface"
	"casevault/server/repository/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Fake repositories embed their interface so only the methods a test
// exercises need an implementation. Calling anything else panics, which
// is exactly what a test wants.

type fakeUserRepo struct {
	interfaces.UserRepo
	byUUID map[string]*model.User
	keys   []model.UserApiKey
}

func (f *fakeUserRepo) GetUserByUUID(ctx context.Context, uuid string) (*model.User, error) {
	return f.byUUID[uuid], nil
}

func (f *fakeUserRepo) CreateUserAPIKey(ctx context.Context, key model.UserApiKey) (model.UserApiKey, error) {
	key.ID = uint(len(f.keys) + 1)
	f.keys = append(f.keys, key)
	return key, nil
}

type fakeFileRepo struct {
	interfaces.FileRepo
	files     map[uint]*model.File
	summaries map[uint]model.FileSummary
}

func (f *fakeFileRepo) GetFile(ctx context.Context, fileID uint) (*model.File, error) {
	return f.files[fileID], nil
}

func (f *fakeFileRepo) CreateFileSummary(ctx context.Context, summary model.FileSummary) (model.FileSummary, error) {
	summary.ID = uint(len(f.summaries) + 1)
	f.summaries[summary.ID] = summary
	return summary, nil
}

func (f *fakeFileRepo) UpdateFileSummary(ctx context.Context, summary model.FileSummary) (model.FileSummary, error) {
	f.summaries[summary.ID] = summary
	return summary, nil
}

type fakeWorkflowRepo struct {
	interfaces.WorkflowRepo
	workflows map[uint]*model.Workflow
}

func (f *fakeWorkflowRepo) GetWorkflow(ctx context.Context, workflowID uint) (*model.Workflow, error) {
	return f.workflows[workflowID], nil
}

type fakeStore struct {
	users     *fakeUserRepo
	files     *fakeFileRepo
	workflows *fakeWorkflowRepo
}

func (f *fakeStore) UserRepo() interfaces.UserRepo         { return f.users }
func (f *fakeStore) FileRepo() interfaces.FileRepo         { return f.files }
func (f *fakeStore) FolderRepo() interfaces.FolderRepo     { return nil }
func (f *fakeStore) WorkflowRepo() interfaces.WorkflowRepo { return f.workflows }

type stubProvider struct {
	name string
	text string
	err  error
}

func (p *stubProvider) Name() string { return p.name }
func (p *stubProvider) Generate(ctx context.Context, prompt string) (string, error) {
	return p.text, p.err
}

func newTestServer(t *testing.T, store *fakeStore, registry *llm.Registry) (*Server, *auth.TokenMinter) {
	t.Helper()
	if registry == nil {
		registry = llm.NewRegistry()
	}
	cfg := config.Config{
		DataTypes:     []string{"text/csv", "text/json"},
		CloudProvider: "gcp",
	}
	cfg.Auth.APIKeyExpDays = 7
	minter := auth.NewTokenMinter("test-secret")
	return NewServer(cfg, store, registry, minter), minter
}

func bearerFor(t *testing.T, minter *auth.TokenMinter, userUUID string) string {
	t.Helper()
	token, _, _, err := minter.MintAPIKey(userUUID, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestGetSystemConfig(t *testing.T) {
	registry := llm.NewRegistry()
	require.NoError(t, registry.Register(&stubProvider{name: "ollama"}))
	server, _ := newTestServer(t, &fakeStore{}, registry)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/system/", nil)
	server.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp SystemConfigResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"ollama"}, resp.ActiveLLMs)
	assert.Equal(t, []string{"text/csv", "text/json"}, resp.DataTypes)
	assert.Equal(t, "gcp", resp.ActiveCloud)
}

func TestGetSystemConfigNoProviders(t *testing.T) {
	server, _ := newTestServer(t, &fakeStore{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/system/", nil)
	server.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	// An empty provider list serializes as [], never null.
	assert.Contains(t, w.Body.String(), `"active_llms":[]`)
}

func TestAPIRequiresBearerToken(t *testing.T) {
	server, _ := newTestServer(t, &fakeStore{}, nil)
	router := server.Router()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/workflows/1", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/workflows/1", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetWorkflowNotFound(t *testing.T) {
	store := &fakeStore{workflows: &fakeWorkflowRepo{workflows: map[uint]*model.Workflow{}}}
	server, minter := newTestServer(t, store, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/workflows/99", nil)
	req.Header.Set("Authorization", bearerFor(t, minter, "some-user"))
	server.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateUserRequiresAdmin(t *testing.T) {
	analyst := &model.User{UUID: "analyst-uuid", Username: "analyst", IsActive: true}
	store := &fakeStore{users: &fakeUserRepo{byUUID: map[string]*model.User{"analyst-uuid": analyst}}}
	server, minter := newTestServer(t, store, nil)

	body := strings.NewReader(`{"username": "newbie"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", body)
	req.Header.Set("Authorization", bearerFor(t, minter, "analyst-uuid"))
	server.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateUserAPIKey(t *testing.T) {
	analyst := &model.User{UUID: "analyst-uuid", Username: "analyst", IsActive: true}
	analyst.ID = 7
	users := &fakeUserRepo{byUUID: map[string]*model.User{"analyst-uuid": analyst}}
	server, minter := newTestServer(t, &fakeStore{users: users}, nil)

	body := strings.NewReader(`{"display_name": "ci key"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/me/apikeys", body)
	req.Header.Set("Authorization", bearerFor(t, minter, "analyst-uuid"))
	server.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp CreateUserAPIKeyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "ci key", resp.Key.DisplayName)
	assert.Equal(t, uint(7), resp.Key.UserID)

	// The minted token is itself accepted by the middleware.
	claims, err := minter.VerifyAPIKey(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "analyst-uuid", claims.UserUUID)
	assert.Equal(t, resp.Key.TokenJTI, claims.ID)
}

func TestCreateFileSummary(t *testing.T) {
	evidence := &model.File{UUID: "file-uuid"}
	evidence.ID = 3
	files := &fakeFileRepo{
		files:     map[uint]*model.File{3: evidence},
		summaries: map[uint]model.FileSummary{},
	}
	registry := llm.NewRegistry()
	require.NoError(t, registry.Register(&stubProvider{name: "ollama", text: "A CSV of login events."}))
	server, minter := newTestServer(t, &fakeStore{files: files}, registry)

	body := strings.NewReader(`{"provider": "Ollama", "model": "gemma2", "prompt": "Summarize this file"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/files/3/summaries", body)
	req.Header.Set("Authorization", bearerFor(t, minter, "someone"))
	server.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp model.FileSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "complete", resp.StatusShort)
	assert.Equal(t, "A CSV of login events.", resp.Summary)
	assert.Equal(t, "ollama", resp.LLMModelProvider)
	assert.Equal(t, uint(3), resp.FileID)
}

func TestCreateFileSummaryUnknownProvider(t *testing.T) {
	evidence := &model.File{UUID: "file-uuid"}
	evidence.ID = 3
	files := &fakeFileRepo{
		files:     map[uint]*model.File{3: evidence},
		summaries: map[uint]model.FileSummary{},
	}
	server, minter := newTestServer(t, &fakeStore{files: files}, nil)

	body := strings.NewReader(`{"provider": "vertex", "prompt": "Summarize"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/files/3/summaries", body)
	req.Header.Set("Authorization", bearerFor(t, minter, "someone"))
	server.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
