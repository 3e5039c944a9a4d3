package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hub2mqtt/internal/core/flow"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newLinkTestServer() http.Handler {
	client := &flow.TestCloudClient{Username: "alice", Password: "secret"}
	manager := flow.NewManager(flow.NewAccountFlow(client), zap.NewNop())
	s := &Server{flows: manager}
	return s.RegisterRoutes()
}

func TestLinkFlowOverHTTP(t *testing.T) {

	assert := assert.New(t)

	handler := newLinkTestServer()

	// start flow
	req := httptest.NewRequest(http.MethodPost, "/link", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(http.StatusOK, rec.Code)

	var started struct {
		Type string        `json:"type"`
		Form flow.ShowForm `json:"form"`
	}
	assert.NoError(json.Unmarshal(rec.Body.Bytes(), &started))
	assert.Equal("form", started.Type)
	assert.NotEmpty(started.Form.FlowID)

	// submit credentials
	body := `{"username":"alice","password":"secret"}`
	req = httptest.NewRequest(http.MethodPost, "/link/"+started.Form.FlowID, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(http.StatusCreated, rec.Code)
	assert.Contains(rec.Body.String(), "create_entry")
}

func TestLinkFlowUnknownID(t *testing.T) {

	assert := assert.New(t)

	handler := newLinkTestServer()

	req := httptest.NewRequest(http.MethodPost, "/link/doesnotexist", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(http.StatusNotFound, rec.Code)
}
