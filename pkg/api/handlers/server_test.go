package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gatehouse/gatehouse/pkg/datastore"
	"github.com/gatehouse/gatehouse/pkg/models"
	"github.com/gatehouse/gatehouse/pkg/storage"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ds, err := datastore.New(t.Context(), storage.NewMemoryStorage(), zap.NewNop())
	require.NoError(t, err)

	return NewServer(ds, zap.NewNop()).Router()
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestTargetLifecycle(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/targets", gin.H{
		"name":    "Laserdome",
		"typestr": "Game",
		"actions": []string{"Play"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Target
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "laserdome", created.Name)
	assert.Equal(t, "game", created.Typestr)
	assert.True(t, created.Actions.Has("play"))

	// Duplicate registration is a conflict.
	w = doJSON(t, router, http.MethodPost, "/api/v1/targets", gin.H{
		"name":    "laserdome",
		"typestr": "game",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/v1/targets", gin.H{
		"name":        "laserdome",
		"typestr":     "game",
		"add_actions": []string{"watch"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.Target
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.True(t, updated.Actions.Has("watch"))

	w = doJSON(t, router, http.MethodGet, "/api/v1/targets?type=game", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listed []models.Target
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/targets/game/laserdome", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/targets/game/laserdome", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddTargetMissingFields(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/targets", gin.H{"name": "orphan"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestMalformedBodyRejected(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/actors", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestActorLifecycle(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/actors", gin.H{
		"name":       "kaitlyn",
		"typestr":    "user",
		"attributes": map[string][]string{"org": {"eng"}},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/v1/actors", gin.H{
		"name":              "kaitlyn",
		"typestr":           "user",
		"remove_attributes": map[string][]string{"org": {"eng"}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.Actor
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.NotContains(t, updated.Attributes, "org")

	w = doJSON(t, router, http.MethodGet, "/api/v1/actors?name=kaitlyn", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listed []models.Actor
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "kaitlyn", listed[0].Name)
}

func TestGroupNeedsExistingRoles(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/groups", gin.H{
		"name":  "admins",
		"roles": []string{"missing-role"},
	})
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
}

func TestGroupRoleLifecycle(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/roles", gin.H{
		"name": "operator",
		"desc": "runs the show",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/groups", gin.H{
		"name":    "ops",
		"members": []gin.H{{"name": "kaitlyn", "typestr": "user"}},
		"roles":   []string{"operator"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// The role now carries the group back-reference.
	w = doJSON(t, router, http.MethodGet, "/api/v1/roles?name=operator", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var roles []models.Role
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &roles))
	require.Len(t, roles, 1)
	assert.True(t, roles[0].Groups.Has("ops"))

	w = doJSON(t, router, http.MethodGet, "/api/v1/groups?member_name=kaitlyn&member_type=user", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var groups []models.Group
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &groups))
	require.Len(t, groups, 1)
	assert.Equal(t, "ops", groups[0].Name)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/groups/ops", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/roles/operator", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPolicyLifecycleAndCheck(t *testing.T) {
	router := newTestRouter(t)

	// No policies loaded yet, so everything is denied.
	w := doJSON(t, router, http.MethodPost, "/api/v1/check", gin.H{
		"actor":  gin.H{"name": "kaitlyn", "typestr": "user"},
		"target": gin.H{"name": "bree", "typestr": "db", "action": "query"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "DENY")

	w = doJSON(t, router, http.MethodPost, "/api/v1/policies", gin.H{
		"name": "allow-db-query",
		"target_check": gin.H{
			"typestr": gin.H{"op": "one_of", "values": []string{"db"}},
			"action":  gin.H{"op": "one_of", "values": []string{"query"}},
		},
		"decision": "ALLOW",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/check", gin.H{
		"actor":  gin.H{"name": "kaitlyn", "typestr": "user"},
		"target": gin.H{"name": "bree", "typestr": "db", "action": "query"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ALLOW")

	// A structurally bad rule is rejected up front.
	w = doJSON(t, router, http.MethodPost, "/api/v1/policies", gin.H{
		"name":     "bad-rule",
		"decision": "MAYBE",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/v1/policies", gin.H{
		"name":     "allow-db-query",
		"decision": "DENY",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/policies/allow-db-query", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/policies/allow-db-query", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPoliciesMatchingFilterNotImplemented(t *testing.T) {
	router := newTestRouter(t)

	matching := url.QueryEscape(`{"actor":{"name":"kaitlyn","typestr":"user"},"target":{"name":"bree","typestr":"db"}}`)
	w := doJSON(t, router, http.MethodGet, "/api/v1/policies?matching="+matching, nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/policies?matching="+url.QueryEscape("{not json"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckMissingActorRejected(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/check", gin.H{
		"target": gin.H{"name": "bree", "typestr": "db"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCorrelationIDReturned(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)

	assert.NotEmpty(t, w.Header().Get("X-Correlation-ID"))
}
