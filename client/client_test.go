package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/todobackend/ws-contract-tests/config"
	"github.com/todobackend/ws-contract-tests/servicedef"
)

var jsonHeaders = http.Header{"Content-Type": {"application/json"}}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	cfg := &config.Config{
		RestBaseURL:           server.URL,
		AuthHeader:            "Bearer test-auth",
		RequestTimeoutSeconds: 5,
	}
	return New(cfg, nil), server
}

func requireRequest(t *testing.T, requests <-chan httphelpers.HTTPRequestInfo) httphelpers.HTTPRequestInfo {
	select {
	case r := <-requests:
		return r
	default:
		require.Fail(t, "no request was received")
		return httphelpers.HTTPRequestInfo{}
	}
}

func TestListParsesTodosAndSendsPaginationParams(t *testing.T) {
	expected := []servicedef.Todo{
		{ID: 1, Text: "first", Completed: false},
		{ID: 2, Text: "second", Completed: true},
	}
	handler, requests := httphelpers.RecordingHandler(httphelpers.HandlerWithJSONResponse(expected, nil))
	c, _ := newTestClient(t, handler)

	todos, err := c.List(ldvalue.NewOptionalInt(3), ldvalue.NewOptionalInt(10))
	require.NoError(t, err)
	assert.Equal(t, expected, todos)

	r := requireRequest(t, requests)
	assert.Equal(t, "GET", r.Request.Method)
	assert.Equal(t, "/todos", r.Request.URL.Path)
	assert.Equal(t, "3", r.Request.URL.Query().Get("offset"))
	assert.Equal(t, "10", r.Request.URL.Query().Get("limit"))
}

func TestListOmitsUndefinedPaginationParams(t *testing.T) {
	handler, requests := httphelpers.RecordingHandler(httphelpers.HandlerWithJSONResponse([]servicedef.Todo{}, nil))
	c, _ := newTestClient(t, handler)

	todos, err := c.List(ldvalue.OptionalInt{}, ldvalue.OptionalInt{})
	require.NoError(t, err)
	assert.Empty(t, todos)

	r := requireRequest(t, requests)
	assert.False(t, r.Request.URL.Query().Has("offset"))
	assert.False(t, r.Request.URL.Query().Has("limit"))
}

func TestCreateSendsBodyAndParsesCreatedRecord(t *testing.T) {
	created := servicedef.Todo{ID: 9, Text: "abc", Completed: false}
	body, _ := json.Marshal(created)
	handler, requests := httphelpers.RecordingHandler(
		httphelpers.HandlerWithResponse(http.StatusCreated, jsonHeaders, body))
	c, _ := newTestClient(t, handler)

	todo, err := c.Create("abc", false)
	require.NoError(t, err)
	assert.Equal(t, created, todo)

	r := requireRequest(t, requests)
	assert.Equal(t, "POST", r.Request.Method)
	var sent servicedef.TodoRequest
	require.NoError(t, json.Unmarshal(r.Body, &sent))
	assert.Equal(t, "abc", sent.Text)
	require.NotNil(t, sent.Completed)
	assert.False(t, *sent.Completed)
}

func TestCreateReportsUnexpectedStatus(t *testing.T) {
	c, _ := newTestClient(t, httphelpers.HandlerWithStatus(http.StatusBadRequest))

	_, err := c.Create("", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestUpdateUsesTodoResourcePath(t *testing.T) {
	updated := servicedef.Todo{ID: 4, Text: "xyz", Completed: true}
	handler, requests := httphelpers.RecordingHandler(httphelpers.HandlerWithJSONResponse(updated, nil))
	c, _ := newTestClient(t, handler)

	todo, err := c.Update(4, "xyz", true)
	require.NoError(t, err)
	assert.Equal(t, updated, todo)

	r := requireRequest(t, requests)
	assert.Equal(t, "PUT", r.Request.Method)
	assert.Equal(t, "/todos/4", r.Request.URL.Path)
}

func TestDeleteSendsAuthorizationHeader(t *testing.T) {
	handler, requests := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(http.StatusNoContent))
	c, _ := newTestClient(t, handler)

	require.NoError(t, c.Delete(7))

	r := requireRequest(t, requests)
	assert.Equal(t, "DELETE", r.Request.Method)
	assert.Equal(t, "/todos/7", r.Request.URL.Path)
	assert.Equal(t, "Bearer test-auth", r.Request.Header.Get("Authorization"))
}

func TestDeleteRawCanOmitAuthorizationHeader(t *testing.T) {
	handler, requests := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(http.StatusUnauthorized))
	c, _ := newTestClient(t, handler)

	resp, err := c.DeleteRaw(7, false)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode())

	r := requireRequest(t, requests)
	assert.Empty(t, r.Request.Header.Get("Authorization"))
}

func TestDeleteReportsUnexpectedStatus(t *testing.T) {
	c, _ := newTestClient(t, httphelpers.HandlerWithStatus(http.StatusNotFound))

	err := c.Delete(12345)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
