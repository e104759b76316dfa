package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jonwraymond/discogstools/auth"
	"github.com/jonwraymond/discogstools/catalog"
	"github.com/jonwraymond/discogstools/discogs"
	mock_discogs "github.com/jonwraymond/discogstools/discogs/mocks"
	"github.com/jonwraymond/discogstools/health"
	"github.com/jonwraymond/discogstools/tools"
)

var nevermind = discogs.ReleaseSummary{
	ID:      123456,
	Title:   "Nevermind",
	Artists: []string{"Nirvana"},
	Year:    1991,
	Formats: []string{"CD", "Album"},
	Labels:  []string{"DGC"},
}

func newTestServer(t *testing.T, deps Deps) (*Server, *mock_discogs.MockClient) {
	t.Helper()
	client := mock_discogs.NewMockClient(gomock.NewController(t))
	if deps.Tools == nil {
		deps.Tools = tools.NewRegistry(tools.NewToolset(catalog.NewService(client)), nil)
	}
	s, err := New(Config{Info: Info{Name: "discogs-tools", Version: "test"}}, deps)
	require.NoError(t, err)
	return s, client
}

type rpcReply struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Data    *struct {
			Code string `json:"code"`
		} `json:"data"`
	} `json:"error"`
}

func post(t *testing.T, h http.Handler, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		for _, val := range v {
			req.Header.Add(k, val)
		}
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func rpc(t *testing.T, h http.Handler, body string) rpcReply {
	t.Helper()
	rec := post(t, h, body, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var reply rpcReply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, "2.0", reply.JSONRPC)
	return reply
}

func TestNew_RequiresTools(t *testing.T) {
	_, err := New(Config{}, Deps{})
	assert.ErrorIs(t, err, ErrNoTools)
}

func TestRPC_Initialize(t *testing.T) {
	s, _ := newTestServer(t, Deps{})

	reply := rpc(t, s.Handler(), `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)
	require.Nil(t, reply.Error)
	assert.JSONEq(t, "1", string(reply.ID))

	var res initializeResult
	require.NoError(t, json.Unmarshal(reply.Result, &res))
	assert.Equal(t, ProtocolVersion, res.ProtocolVersion)
	assert.Equal(t, Info{Name: "discogs-tools", Version: "test"}, res.ServerInfo)
	assert.Contains(t, res.Capabilities, "tools")
}

func TestRPC_Ping(t *testing.T) {
	s, _ := newTestServer(t, Deps{})
	reply := rpc(t, s.Handler(), `{"jsonrpc":"2.0","id":"p","method":"ping"}`)
	require.Nil(t, reply.Error)
	assert.JSONEq(t, `{}`, string(reply.Result))
	assert.JSONEq(t, `"p"`, string(reply.ID))
}

func TestRPC_ToolsList(t *testing.T) {
	s, _ := newTestServer(t, Deps{})

	reply := rpc(t, s.Handler(), `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	require.Nil(t, reply.Error)

	var res struct {
		Tools []struct {
			Name        string         `json:"name"`
			InputSchema map[string]any `json:"inputSchema"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(reply.Result, &res))
	require.Len(t, res.Tools, 2)
	assert.Equal(t, tools.NameGetReleaseDetails, res.Tools[0].Name)
	assert.Equal(t, tools.NameSearchReleases, res.Tools[1].Name)
	assert.Contains(t, res.Tools[1].InputSchema["properties"], "artist")
}

func TestRPC_CallSearch(t *testing.T) {
	s, client := newTestServer(t, Deps{})
	client.EXPECT().
		Search(gomock.Any(), discogs.SearchParams{Title: "Nevermind", Artist: "Nirvana"}).
		Return([]discogs.ReleaseSummary{nevermind}, nil)

	reply := rpc(t, s.Handler(), `{"jsonrpc":"2.0","id":3,"method":"tools/call",
		"params":{"name":"search_releases","arguments":{"title":"Nevermind","artist":"Nirvana"}}}`)
	require.Nil(t, reply.Error)

	var res CallResult
	require.NoError(t, json.Unmarshal(reply.Result, &res))
	assert.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	assert.Equal(t, "text", res.Content[0].Type)
	assert.Contains(t, res.Content[0].Text, `"title":"Nevermind"`)
	assert.Contains(t, res.Content[0].Text, `"format":"CD, Album"`)

	records, ok := res.StructuredContent.([]any)
	require.True(t, ok)
	require.Len(t, records, 1)
	assert.Equal(t, float64(123456), records[0].(map[string]any)["id"])

	require.Len(t, res.Notifications, 2)
	assert.Equal(t, "Searching Discogs with 2 criteria", res.Notifications[0].Message)
	assert.Equal(t, "Found 1 matching releases", res.Notifications[1].Message)
}

func TestRPC_CallSearchWithoutParams(t *testing.T) {
	s, client := newTestServer(t, Deps{})
	client.EXPECT().Search(gomock.Any(), gomock.Any()).Times(0)

	reply := rpc(t, s.Handler(), `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"search_releases","arguments":{}}}`)
	require.Nil(t, reply.Error)

	var res CallResult
	require.NoError(t, json.Unmarshal(reply.Result, &res))
	assert.True(t, res.IsError)
	assert.Equal(t, []any{}, res.StructuredContent)
	assert.Equal(t, "[]", res.Content[0].Text)
	require.Len(t, res.Notifications, 1)
	assert.Equal(t, "At least one search parameter must be provided.", res.Notifications[0].Message)
}

func TestRPC_CallDetailsInvalidID(t *testing.T) {
	s, client := newTestServer(t, Deps{})
	client.EXPECT().Release(gomock.Any(), gomock.Any()).Times(0)

	reply := rpc(t, s.Handler(), `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"get_release_details","arguments":{"release_id":0}}}`)
	require.Nil(t, reply.Error)

	var res CallResult
	require.NoError(t, json.Unmarshal(reply.Result, &res))
	assert.True(t, res.IsError)
	assert.Nil(t, res.StructuredContent)
	assert.Equal(t, "null", res.Content[0].Text)
	assert.Equal(t, "Release ID must be a positive integer.", res.Notifications[0].Message)
}

func TestRPC_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		code     int
		dataCode string
	}{
		{"parse error", `{"jsonrpc":`, CodeParseError, "INVALID_INPUT"},
		{"wrong version", `{"jsonrpc":"1.0","id":1,"method":"ping"}`, CodeInvalidRequest, ""},
		{"missing method", `{"jsonrpc":"2.0","id":1}`, CodeInvalidRequest, ""},
		{"bad id", `{"jsonrpc":"2.0","id":{"x":1},"method":"ping"}`, CodeInvalidRequest, ""},
		{"unknown method", `{"jsonrpc":"2.0","id":1,"method":"resources/list"}`, CodeMethodNotFound, "NOT_FOUND"},
		{"missing params", `{"jsonrpc":"2.0","id":1,"method":"tools/call"}`, CodeInvalidParams, "INVALID_INPUT"},
		{"missing name", `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{}}`, CodeInvalidParams, "INVALID_INPUT"},
		{"unknown tool", `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"delete_release"}}`, CodeInvalidParams, "NOT_FOUND"},
		{"unknown argument", `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"search_releases","arguments":{"genre":"rock"}}}`, CodeInvalidParams, "INVALID_INPUT"},
		{"mistyped argument", `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"get_release_details","arguments":{"release_id":"x"}}}`, CodeInvalidParams, "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, Deps{})
			reply := rpc(t, s.Handler(), tt.body)
			require.NotNil(t, reply.Error)
			assert.Equal(t, tt.code, reply.Error.Code)
			assert.Nil(t, reply.Result)
			if tt.dataCode == "" {
				assert.Nil(t, reply.Error.Data)
				return
			}
			require.NotNil(t, reply.Error.Data)
			assert.Equal(t, tt.dataCode, reply.Error.Data.Code)
		})
	}
}

func TestRPC_Notification(t *testing.T) {
	s, _ := newTestServer(t, Deps{})
	rec := post(t, s.Handler(), `{"jsonrpc":"2.0","method":"notifications/initialized"}`, nil)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestRPC_BodyTooLarge(t *testing.T) {
	s, _ := newTestServer(t, Deps{})
	body := `{"jsonrpc":"2.0","id":1,"method":"ping","params":"` + strings.Repeat("x", MaxBodyBytes) + `"}`
	rec := post(t, s.Handler(), body, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRPC_Authentication(t *testing.T) {
	keys, err := auth.NewAPIKeyAuthenticator("", "k1")
	require.NoError(t, err)
	s, _ := newTestServer(t, Deps{Authenticator: auth.NewCompositeAuthenticator(keys)})
	body := `{"jsonrpc":"2.0","id":1,"method":"ping"}`

	rec := post(t, s.Handler(), body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"UNAUTHORIZED"`)

	rec = post(t, s.Handler(), body, http.Header{auth.DefaultAPIKeyHeader: {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = post(t, s.Handler(), body, http.Header{auth.DefaultAPIKeyHeader: {"k1"}})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = post(t, s.Handler(), body, http.Header{strings.ToLower(auth.DefaultAPIKeyHeader): {"k1"}})
	assert.Equal(t, http.StatusOK, rec.Code, "header names are case-insensitive")

	// Health stays open.
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	hrec := httptest.NewRecorder()
	s.Handler().ServeHTTP(hrec, req)
	assert.Equal(t, http.StatusOK, hrec.Code)
}

func TestHealthRoutes(t *testing.T) {
	agg := health.NewAggregator()
	agg.Register("cache", health.NewCheckerFunc("cache", func(context.Context) health.Result {
		return health.Degraded("cold")
	}))
	s, _ := newTestServer(t, Deps{Health: agg})

	for path, want := range map[string]int{
		"/healthz": http.StatusOK,
		"/readyz":  http.StatusOK,
		"/health":  http.StatusOK,
	} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, "DEGRADED", rec.Body.String())
}

func TestMetricsRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, _ := newTestServer(t, Deps{Gatherer: reg, Registerer: reg})

	rpc(t, s.Handler(), `{"jsonrpc":"2.0","id":1,"method":"ping"}`)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{endpoint="/mcp",method="POST",status="200"} 1`)
}

func TestMetricsRoute_Absent(t *testing.T) {
	s, _ := newTestServer(t, Deps{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNew_DuplicateCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, _ = newTestServer(t, Deps{Registerer: reg})

	_, err := New(Config{}, Deps{Tools: tools.NewRegistry(tools.NewToolset(nil), nil), Registerer: reg})
	assert.Error(t, err)
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	client := mock_discogs.NewMockClient(gomock.NewController(t))
	s, err := New(Config{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second}, Deps{
		Tools: tools.NewRegistry(tools.NewToolset(catalog.NewService(client)), nil),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return s.Addr() != "" }, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Post("http://"+s.Addr()+"/mcp", "application/json",
		strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
