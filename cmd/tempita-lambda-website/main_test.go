// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"

	"carvel.dev/tempita/pkg/website"
	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProxyRendersTemplate(t *testing.T) {
	adapter := New(newLambdaMux())

	body, err := json.Marshal(website.TemplateRequest{
		Template: "{{for x in xs}}{{x}}{{endfor}}",
		Values:   map[string]interface{}{"xs": []string{"a", "b"}},
	})
	require.NoError(t, err)

	resp, err := adapter.Proxy(events.ALBTargetGroupRequest{
		HTTPMethod:      http.MethodPost,
		Path:            "/template",
		Headers:         map[string]string{"x-forwarded-proto": "https"},
		Body:            base64.StdEncoding.EncodeToString(body),
		IsBase64Encoded: true,
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "200 OK", resp.StatusDescription)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	assert.JSONEq(t, `{"output": "ab"}`, resp.Body)
	assert.False(t, resp.IsBase64Encoded)
}

func TestProxyRedirectsPlainHTTP(t *testing.T) {
	adapter := New(newLambdaMux())

	resp, err := adapter.Proxy(events.ALBTargetGroupRequest{
		HTTPMethod: http.MethodGet,
		Path:       "/examples",
		MultiValueQueryStringParameters: map[string][]string{"b": {"2"}, "a": {"1", "x y"}},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
	assert.Equal(t, "https://tempita-playground.invalid/examples?a=1&a=x+y&b=2", resp.Headers["Location"])
}

func TestProxyEventToHTTPRequestStripsBasePath(t *testing.T) {
	accessor := RequestAccessor{stripBasePath: "/play"}

	req, err := accessor.ProxyEventToHTTPRequest(events.ALBTargetGroupRequest{
		HTTPMethod:            "get",
		Path:                  "/play/health",
		QueryStringParameters: map[string]string{"q": "1"},
		MultiValueHeaders:     map[string][]string{"X-Test": {"a", "b"}},
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/health", req.URL.Path)
	assert.Equal(t, "q=1", req.URL.RawQuery)
	assert.Equal(t, []string{"a", "b"}, req.Header.Values("X-Test"))
}

func TestGetProxyResponseRequiresStatus(t *testing.T) {
	_, err := NewProxyResponseWriter().GetProxyResponse()
	require.EqualError(t, err, "Status code not set on response")

	w := NewProxyResponseWriter()
	_, err = w.Write([]byte{0xff, 0xfe})
	require.NoError(t, err)

	resp, err := w.GetProxyResponse()
	require.NoError(t, err)
	assert.True(t, resp.IsBase64Encoded)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe}), resp.Body)
}
