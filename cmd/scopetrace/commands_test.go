package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/scopetrace/internal/cli"
	"github.com/aretw0/scopetrace/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type scopeEntry struct {
	Path  string `json:"path" yaml:"path"`
	Kind  string `json:"kind" yaml:"kind"`
	Width int    `json:"width" yaml:"width"`
	Depth int    `json:"depth" yaml:"depth"`
}

func TestScopesCommand(t *testing.T) {
	out, err := execute(t, "scopes", "--output-format", "json")
	require.NoError(t, err)
	var nodes []scopeEntry
	require.NoError(t, json.Unmarshal([]byte(out), &nodes))
	require.NotEmpty(t, nodes)
	assert.Equal(t, scopeEntry{Path: "top", Kind: "scope", Depth: 1}, nodes[0])
	assert.Contains(t, nodes, scopeEntry{Path: "top.t.cyc", Kind: "signal", Width: 32, Depth: 3})

	out, err = execute(t, "scopes", "--output-format", "yaml")
	require.NoError(t, err)
	var fromYAML []scopeEntry
	require.NoError(t, yaml.Unmarshal([]byte(out), &fromYAML))
	assert.Equal(t, nodes, fromYAML)

	out, err = execute(t, "scopes")
	require.NoError(t, err)
	assert.Contains(t, out, "top.t.cyc")

	_, err = execute(t, "scopes", "--output-format", "xml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestSelectCommand(t *testing.T) {
	out, err := execute(t, "select", "1:top.t.sub1a", "99:t")
	require.NoError(t, err)
	assert.Contains(t, out, "# Selection")
	assert.Contains(t, out, "`1:top.t.sub1a`")
	assert.Contains(t, out, "matches nothing")
	assert.Contains(t, out, "top.t.sub1a.x")
}

func TestServeHandler_RunsAreMetered(t *testing.T) {
	cfg, err := cli.LoadConfig(cli.RunOptions{})
	require.NoError(t, err)
	h, err := newServeHandler(cfg, logging.NewNop())
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/runs", strings.NewReader(`{"name":"bench","steps":5}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"scopetrace_dumps_total":5`)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `scopetrace_dumps_total{format="memory"} 5`)
	assert.Contains(t, body, `scopetrace_records_offered_total{format="memory"}`)
	assert.Contains(t, body, "go_goroutines")

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/runs/bench", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"closed":true`)
}

func TestMCPCommand_UnknownTransport(t *testing.T) {
	_, err := execute(t, "mcp", "--transport", "carrier-pigeon")
	assert.ErrorContains(t, err, "unknown transport")
}
