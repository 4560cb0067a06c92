package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicecast-server-go/internal/app/services"
	"voicecast-server-go/internal/domain/batch"
	"voicecast-server-go/internal/domain/conversation"
	"voicecast-server-go/internal/domain/script"
	"voicecast-server-go/internal/domain/tts"
	"voicecast-server-go/internal/domain/voice"
	"voicecast-server-go/internal/platform/storage"
	platformtesting "voicecast-server-go/internal/platform/testing"
)

const sampleExport = `[1/15/2024, 10:30:45] Alice: morning all
[1/15/2024, 10:31:02] Bob: got the new job, thanks everyone
[1/15/2024, 10:32:10] Carol: sorry I was offline yesterday`

type stubProvider struct{}

func (stubProvider) Synthesize(_ context.Context, text string, _ voice.Configuration) ([]byte, error) {
	return []byte("audio:" + text), nil
}

func (stubProvider) Voices(_ context.Context) ([]tts.Voice, error) {
	return []tts.Voice{{ID: "v1", Name: "Rachel"}}, nil
}
func (stubProvider) Close() error { return nil }

type stubGenerator struct{}

func (stubGenerator) Generate(_ context.Context, _ conversation.Conversation) (*script.Result, error) {
	return &script.Result{
		Summary: "a short recap",
		Lines: []batch.ScriptLine{
			{Speaker: "Bob", Text: "I got the job!", LineNumber: 1},
		},
	}, nil
}

func newTestRouter(t *testing.T) *Router {
	t.Helper()

	cfg := platformtesting.SetupTestConfig(t)
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	registry := voice.NewRegistry(cfg.Speakers.NarratorVoice, cfg.Speakers.Voices)
	svc := services.NewVoiceCastService(cfg, nil, registry, stubProvider{}, stubGenerator{},
		storage.NewSessionRepository(db),
		storage.NewProfileRepository(db),
		storage.NewGenerationRepository(db),
	)

	router, err := Build(Options{Config: cfg})
	require.NoError(t, err)

	NewWebAPI(svc, cfg, nil).RegisterRoutes(router.API)
	return router
}

func doJSON(t *testing.T, router *Router, method, path string, body interface{}) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.Engine.ServeHTTP(rec, req)

	var envelope APIResponse
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	}
	return rec, envelope
}

func importSession(t *testing.T, router *Router) string {
	t.Helper()

	rec, envelope := doJSON(t, router, http.MethodPost, "/api/sessions", map[string]string{
		"main_user":    "Alice",
		"group_name":   "Friends",
		"conversation": sampleExport,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	session := envelope.Data.(map[string]interface{})
	return session["session_id"].(string)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	rec, envelope := doJSON(t, router, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, envelope.Success)
}

func TestImportEndpoint(t *testing.T) {
	router := newTestRouter(t)

	sessionID := importSession(t, router)
	assert.NotEmpty(t, sessionID)
}

func TestImportEndpoint_MissingMainUser(t *testing.T) {
	router := newTestRouter(t)

	rec, envelope := doJSON(t, router, http.MethodPost, "/api/sessions", map[string]string{
		"conversation": sampleExport,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, envelope.Success)
}

func TestGenerateEndpoint(t *testing.T) {
	router := newTestRouter(t)
	sessionID := importSession(t, router)

	rec, envelope := doJSON(t, router, http.MethodPost, "/api/sessions/"+sessionID+"/generate", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	outcome := envelope.Data.(map[string]interface{})
	assert.Equal(t, "a short recap", outcome["summary"])
	assert.NotNil(t, outcome["artifact"])

	rec, envelope = doJSON(t, router, http.MethodGet, "/api/sessions/"+sessionID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	payload := envelope.Data.(map[string]interface{})
	assert.Len(t, payload["results"], 1)
}

func TestResultsEndpoint_UnknownSession(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodGet, "/api/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetSpeakerVoiceEndpoint(t *testing.T) {
	router := newTestRouter(t)
	sessionID := importSession(t, router)

	rec, _ := doJSON(t, router, http.MethodPut,
		"/api/sessions/"+sessionID+"/speakers/Bob/voice",
		map[string]string{"voice_id": "pinned"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, router, http.MethodPut,
		"/api/sessions/"+sessionID+"/speakers/Bob/voice",
		map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVoicesEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec, envelope := doJSON(t, router, http.MethodGet, "/api/voices", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	voices := envelope.Data.([]interface{})
	require.Len(t, voices, 1)
}

func TestServeAudio_RejectsHiddenFiles(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodGet, "/api/audio/.hidden", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
