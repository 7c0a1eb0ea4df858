// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"carvel.dev/tempita/pkg/cmd"
	"carvel.dev/tempita/pkg/website"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRendersIntoOutputFile(t *testing.T) {
	dir := t.TempDir()
	tplPath := filepath.Join(dir, "motd.txt")
	valuesPath := filepath.Join(dir, "values.toml")
	outPath := filepath.Join(dir, "out.txt")

	require.NoError(t, os.WriteFile(tplPath, []byte("{{greeting}}, {{user['name']}}!\n{{if admin}}\nadmin\n{{endif}}\n"), 0600))
	require.NoError(t, os.WriteFile(valuesPath, []byte("greeting = \"Hello\"\n[user]\nname = \"ann\"\n"), 0600))

	command := cmd.NewDefaultTempitaCmd()
	command.SetArgs([]string{"-f", tplPath, "--data-values-file", valuesPath,
		"--data-value-yaml", "admin=true", "--output-file", outPath})
	require.NoError(t, command.Execute())

	bs, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "Hello, ann!\nadmin\n", string(bs))
}

func TestFlagNamesAcceptUnderscores(t *testing.T) {
	dir := t.TempDir()
	tplPath := filepath.Join(dir, "t.txt")
	outPath := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(tplPath, []byte("{{a}}"), 0600))

	command := cmd.NewDefaultTempitaCmd()
	command.SetArgs([]string{"-f", tplPath, "--data_value", "a=b", "--output_file", outPath})
	require.NoError(t, command.Execute())

	bs, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "b", string(bs))
}

func TestRenderSubcommandWritesOutputDirectory(t *testing.T) {
	dir := t.TempDir()
	srcDir := filepath.Join(dir, "src")
	outDir := filepath.Join(dir, "out")

	require.NoError(t, os.MkdirAll(filepath.Join(srcDir, "pages"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "layout.html"), []byte("<body>{{self.body}}</body>"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "pages", "index.html.tmpl"),
		[]byte("{{inherit '../layout.html'}}{{title}}"), 0600))

	command := cmd.NewDefaultTempitaCmd()
	command.SetArgs([]string{"render", "-f", srcDir, "-R", "-v", "title=A&B",
		"--filter-template-file", "pages/index.html.tmpl", "-o", outDir})
	require.NoError(t, command.Execute())

	bs, err := os.ReadFile(filepath.Join(outDir, "pages", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<body>A&amp;amp;B</body>", string(bs))
}

func TestRootCommandReturnsTemplateErrors(t *testing.T) {
	dir := t.TempDir()
	tplPath := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(tplPath, []byte("{{for x in}}"), 0600))

	command := cmd.NewDefaultTempitaCmd()
	command.SetArgs([]string{"-f", tplPath, "--output-file", filepath.Join(dir, "out")})

	err := command.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "in "+tplPath)
}

func TestWebsiteRendersInProcess(t *testing.T) {
	opts := cmd.NewWebsiteOptions()
	server := httptest.NewServer(opts.Server().Mux())
	defer server.Close()

	post := func(req website.TemplateRequest) website.TemplateResponse {
		body, err := json.Marshal(req)
		require.NoError(t, err)

		resp, err := http.Post(server.URL+"/template", "application/json", strings.NewReader(string(body)))
		require.NoError(t, err)
		defer resp.Body.Close()

		var result website.TemplateResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		return result
	}

	assert.Equal(t, website.TemplateResponse{Output: "<b>&lt;i&gt;</b> 3"},
		post(website.TemplateRequest{
			Template: "<b>{{tag}}</b> {{len(items)}}",
			Values:   map[string]interface{}{"tag": "<i>", "items": []string{"a", "b", "c"}},
			HTML:     true,
		}))

	resp := post(website.TemplateRequest{Template: "{{inherit '/etc/passwd'}}"})
	assert.Equal(t, "Loading template '/etc/passwd': not found in template", resp.Errors)
}
