// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package website

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"carvel.dev/tempita/pkg/tempita"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subTemplate(req TemplateRequest) (TemplateResponse, error) {
	sub := tempita.Sub
	if req.HTML {
		sub = tempita.SubHTML
	}
	out, err := sub(req.Template, req.Values)
	if err != nil {
		return TemplateResponse{Errors: err.Error()}, nil
	}
	return TemplateResponse{Output: out}, nil
}

func newTestServer(t *testing.T, opts ServerOpts) *httptest.Server {
	if opts.TemplateFunc == nil {
		opts.TemplateFunc = subTemplate
	}
	server := httptest.NewServer(NewServer(opts).Mux())
	t.Cleanup(server.Close)
	return server
}

func postTemplate(t *testing.T, url string, req TemplateRequest) TemplateResponse {
	body, err := json.Marshal(req)
	require.NoError(t, err)

	resp, err := http.Post(url+"/template", "application/json", strings.NewReader(string(body)))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	var result TemplateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return result
}

func TestTemplateEndpoint(t *testing.T) {
	server := newTestServer(t, ServerOpts{})

	resp := postTemplate(t, server.URL, TemplateRequest{
		Template: "{{for x in xs}}{{x}};{{endfor}}",
		Values:   map[string]interface{}{"xs": []interface{}{"a", "b"}},
	})
	assert.Equal(t, TemplateResponse{Output: "a;b;"}, resp)

	resp = postTemplate(t, server.URL, TemplateRequest{Template: "{{v}}", Values: map[string]interface{}{"v": "<"}, HTML: true})
	assert.Equal(t, TemplateResponse{Output: "&lt;"}, resp)

	resp = postTemplate(t, server.URL, TemplateRequest{Template: "{{endif}}"})
	assert.Equal(t, TemplateResponse{Errors: "Unexpected endif at line 1 column 3"}, resp)
}

func TestTemplateEndpointRejectsBadRequests(t *testing.T) {
	server := newTestServer(t, ServerOpts{MaxBodySize: 64})

	resp, err := http.Get(server.URL + "/template")
	require.NoError(t, err)
	assertErrorBody(t, resp, "Expected POST request, but was GET")

	resp, err = http.Post(server.URL+"/template", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	assertErrorBody(t, resp, "Unmarshaling request: unexpected end of JSON input")

	big := fmt.Sprintf(`{"template": %q}`, strings.Repeat("x", 100))
	resp, err = http.Post(server.URL+"/template", "application/json", strings.NewReader(big))
	require.NoError(t, err)
	assertErrorBody(t, resp, "http: request body too large")
}

func TestTemplateFuncErrorsAreReported(t *testing.T) {
	server := newTestServer(t, ServerOpts{
		TemplateFunc: func(TemplateRequest) (TemplateResponse, error) {
			return TemplateResponse{}, fmt.Errorf("boom")
		},
	})

	resp := postTemplate(t, server.URL, TemplateRequest{Template: "x"})
	assert.Equal(t, TemplateResponse{Errors: "boom"}, resp)
}

func TestStaticAndHealthEndpoints(t *testing.T) {
	server := newTestServer(t, ServerOpts{})

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, "ok", readBody(t, resp))

	resp, err = http.Get(server.URL + "/")
	require.NoError(t, err)
	assert.Equal(t, "no-cache, private, max-age=0", resp.Header.Get("Cache-Control"))
	assert.Contains(t, readBody(t, resp), "<title>tempita playground</title>")

	resp, err = http.Get(server.URL + "/js/playground.js")
	require.NoError(t, err)
	assert.Equal(t, "application/javascript", resp.Header.Get("Content-Type"))

	resp, err = http.Get(server.URL + "/js/missing.js")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestExamplesEndpoints(t *testing.T) {
	server := newTestServer(t, ServerOpts{})

	resp, err := http.Get(server.URL + "/examples")
	require.NoError(t, err)

	var sets []exampleSet
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &sets))
	require.Len(t, sets, len(exampleSets))
	assert.Equal(t, "hello", sets[0].Examples[0].ID)
	assert.Empty(t, sets[0].Examples[0].Files)

	resp, err = http.Get(server.URL + "/examples/hello")
	require.NoError(t, err)

	var example Example
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &example))
	assert.Len(t, example.Files, 2)

	resp, err = http.Get(server.URL + "/examples/nope")
	require.NoError(t, err)
	assertErrorBody(t, resp, "Did not find example: nope")
}

func TestExamplesRender(t *testing.T) {
	for _, set := range exampleSets {
		for _, example := range set.Examples {
			var req TemplateRequest
			for _, file := range example.Files {
				if file.Name == "values.json" {
					require.NoError(t, json.Unmarshal([]byte(file.Content), &req.Values), example.ID)
				} else {
					req.Template = file.Content
					req.HTML = strings.HasSuffix(file.Name, ".html")
				}
			}

			resp, err := subTemplate(req)
			require.NoError(t, err)
			assert.Empty(t, resp.Errors, example.ID)
			assert.NotEmpty(t, resp.Output, example.ID)
		}
	}
}

func TestRedirectToHTTPS(t *testing.T) {
	handler := NewServer(ServerOpts{RedirectToHTTPS: true, TemplateFunc: subTemplate}).Mux()

	req := httptest.NewRequest(http.MethodGet, "http://play.example.com/examples", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "https://play.example.com/examples", rec.Header().Get("Location"))

	req = httptest.NewRequest(http.MethodPost, "http://play.example.com/template", strings.NewReader("{}"))
	req.RemoteAddr = "10.0.0.1:1234"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, `{"errors":"expected HTTPs connection"}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "http://play.example.com/health", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "ok", rec.Body.String())
}

func assertErrorBody(t *testing.T, resp *http.Response, expected string) {
	t.Helper()
	var result TemplateResponse
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &result))
	assert.Equal(t, expected, result.Errors)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	bs, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(bs)
}
