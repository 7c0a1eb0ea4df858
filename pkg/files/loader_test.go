// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package files_test

import (
	"os"
	"path/filepath"
	"testing"

	"carvel.dev/tempita/pkg/files"
	"carvel.dev/tempita/pkg/starlarkeval"
	"carvel.dev/tempita/pkg/texttemplate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTemplate(t *testing.T, name, content string, loader files.Loader, ns texttemplate.Namespace) *texttemplate.Template {
	tpl, err := texttemplate.NewTemplate(content, texttemplate.TemplateOpts{
		Name:        name,
		Namespace:   ns,
		Evaluator:   starlarkeval.NewEvaluator(starlarkeval.EvaluatorOpts{Name: name}),
		GetTemplate: files.Getter(loader),
	})
	require.NoError(t, err)
	return tpl
}

func TestDirLoaderResolvesRelativeToReferencingTemplate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "layouts"), 0700))

	writeFile(t, filepath.Join(dir, "page.tmpl"), `{{inherit "layouts/base.tmpl"}}hello {{name}}`)
	writeFile(t, filepath.Join(dir, "layouts", "base.tmpl"), `{{inherit "frame"}}[{{self.body}}]`)
	writeFile(t, filepath.Join(dir, "layouts", "frame.tmpl"), `<{{self.body}}> {{site}}`)

	content, err := os.ReadFile(filepath.Join(dir, "page.tmpl"))
	require.NoError(t, err)

	loader := files.DirLoader{Ext: ".tmpl"}
	tpl := newTemplate(t, filepath.Join(dir, "page.tmpl"), string(content),
		loader, texttemplate.Namespace{"site": "example"})

	result, err := tpl.Substitute(texttemplate.Namespace{"name": "tempita"})
	require.NoError(t, err)
	assert.Equal(t, "<[hello tempita]> example", result)
}

func TestDirLoaderMissingTemplate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.tmpl")

	tpl := newTemplate(t, path, `{{inherit "nope.tmpl"}}`, files.DirLoader{}, nil)

	_, err := tpl.Substitute(nil)
	require.EqualError(t, err, "Loading template 'nope.tmpl': not found in "+path)
	assert.True(t, texttemplate.IsKind(err, texttemplate.InheritanceError))
}

func TestDirLoaderSymlinks(t *testing.T) {
	dir := t.TempDir()
	outside := t.TempDir()

	writeFile(t, filepath.Join(outside, "base.tmpl"), `base:{{self.body}}`)
	require.NoError(t, os.Symlink(filepath.Join(outside, "base.tmpl"), filepath.Join(dir, "base.tmpl")))

	path := filepath.Join(dir, "page.tmpl")

	t.Run("rejected when destination is not allowed", func(t *testing.T) {
		tpl := newTemplate(t, path, `{{inherit "base.tmpl"}}x`, files.DirLoader{}, nil)

		_, err := tpl.Substitute(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "to be allowed, but was not")
	})

	t.Run("followed when destination is allowed", func(t *testing.T) {
		loader := files.DirLoader{Symlinks: files.SymlinkAllowOpts{AllowedDstPaths: []string{outside}}}
		tpl := newTemplate(t, path, `{{inherit "base.tmpl"}}x`, loader, nil)

		result, err := tpl.Substitute(nil)
		require.NoError(t, err)
		assert.Equal(t, "base:x", result)
	})

	t.Run("followed when all symlinks are allowed", func(t *testing.T) {
		loader := files.DirLoader{Symlinks: files.SymlinkAllowOpts{AllowAll: true}}
		tpl := newTemplate(t, path, `{{inherit "base.tmpl"}}y`, loader, nil)

		result, err := tpl.Substitute(nil)
		require.NoError(t, err)
		assert.Equal(t, "base:y", result)
	})
}

func TestMemoryLoader(t *testing.T) {
	loader := files.MemoryLoader{
		"base": `{{py:greeting = "hi"}}{{greeting}} {{self.title}}: {{self.body}}`,
	}

	tpl := newTemplate(t, "child", `{{inherit "base"}}{{py:title = "T"}}{{who}}`, loader, nil)

	result, err := tpl.Substitute(texttemplate.Namespace{"who": "there"})
	require.NoError(t, err)
	assert.Equal(t, "hi T: there", result)

	tpl = newTemplate(t, "child", `{{inherit "other"}}`, loader, nil)
	_, err = tpl.Substitute(nil)
	require.EqualError(t, err, "Loading template 'other': not found in child")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestMultiLoaderFallsThrough(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "disk.tmpl"), "disk:{{self.body}}")

	loader := files.MultiLoader{
		files.MemoryLoader{"mem": "mem:{{self.body}}"},
		files.DirLoader{},
	}
	path := filepath.Join(dir, "page.tmpl")

	tpl := newTemplate(t, path, `{{inherit "mem"}}a`, loader, nil)
	result, err := tpl.Substitute(nil)
	require.NoError(t, err)
	assert.Equal(t, "mem:a", result)

	tpl = newTemplate(t, path, `{{inherit "disk.tmpl"}}b`, loader, nil)
	result, err = tpl.Substitute(nil)
	require.NoError(t, err)
	assert.Equal(t, "disk:b", result)

	tpl = newTemplate(t, path, `{{inherit "neither"}}`, loader, nil)
	_, err = tpl.Substitute(nil)
	require.EqualError(t, err, "Loading template 'neither': not found in "+path)
}
