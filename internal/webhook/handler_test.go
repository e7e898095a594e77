package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JakobStaudinger/cinnabar/internal/domain"
	"github.com/JakobStaudinger/cinnabar/internal/shared/secret"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func signedRequest(t *testing.T, secretValue, event, body string) *http.Request {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secretValue))
	mac.Write([]byte(body))
	signature := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("x-hub-signature-256", signature)
	req.Header.Set("x-github-event", event)
	return req
}

func newTestEngine(onTrigger TriggerHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	handler := NewHandler(secret.New("topsecret"), onTrigger, zap.NewNop())
	engine.POST("/webhook", handler.HandleWebhook)
	return engine
}

func TestHandleWebhookDispatchesOnValidPushEvent(t *testing.T) {
	var dispatched *domain.Trigger
	engine := newTestEngine(func(t domain.Trigger) { dispatched = &t })

	body := `{"ref":"refs/heads/main","head_commit":{"id":"abc"},"repository":{"name":"r","owner":{"login":"o"}},"installation":{"id":1}}`
	req := signedRequest(t, "topsecret", "push", body)
	rec := httptest.NewRecorder()

	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, dispatched)
	assert.Equal(t, "main", dispatched.Event.Push.Branch.Name)
}

func TestHandleWebhookReturnsNoContentForUnactionableEvent(t *testing.T) {
	called := false
	engine := newTestEngine(func(t domain.Trigger) { called = true })

	req := signedRequest(t, "topsecret", "star", `{}`)
	rec := httptest.NewRecorder()

	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, called)
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	called := false
	engine := newTestEngine(func(t domain.Trigger) { called = true })

	req := signedRequest(t, "wrongsecret", "push", `{}`)
	rec := httptest.NewRecorder()

	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, called)
}

func TestHandleWebhookRejectsMissingSignatureHeader(t *testing.T) {
	engine := newTestEngine(func(t domain.Trigger) {})

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{}`))
	req.Header.Set("x-github-event", "push")
	rec := httptest.NewRecorder()

	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Missing header x-hub-signature-256")
}
