// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	yamlExts = []string{".yaml", ".yml"}
	tomlExts = []string{".toml"}
	jsonExts = []string{".json"}
	htmlExts = []string{".html", ".htm"}
)

type Type int

const (
	TypeUnknown Type = iota
	TypeYAML
	TypeTOML
	TypeJSON
	TypeHTML
)

// File is a Source with a known relative path, used both for templates
// and for data values files.
type File struct {
	src     Source
	relPath string
}

// NewFiles resolves paths given on the command line: "-" is stdin,
// http(s) URLs are fetched, and directories are walked (in sorted
// order) when recursive is set.
func NewFiles(paths []string, recursive bool) ([]*File, error) {
	var fileSrcs []Source

	for _, path := range paths {
		switch {
		case path == "-":
			fileSrcs = append(fileSrcs, NewStdinSource())

		case strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://"):
			fileSrcs = append(fileSrcs, NewCachedSource(NewHTTPSource(path)))

		default:
			fileInfo, err := os.Stat(path)
			if err != nil {
				return nil, fmt.Errorf("Checking file '%s': %s", path, err)
			}

			if fileInfo.IsDir() {
				if !recursive {
					return nil, fmt.Errorf("Expected file '%s' to not be a directory", path)
				}

				var selectedPaths []string

				err := filepath.Walk(path, func(walkedPath string, fi os.FileInfo, err error) error {
					if err != nil || fi.IsDir() {
						return err
					}
					selectedPaths = append(selectedPaths, walkedPath)
					return nil
				})
				if err != nil {
					return nil, fmt.Errorf("Listing files '%s': %s", path, err)
				}

				sort.Strings(selectedPaths)

				for _, selectedPath := range selectedPaths {
					fileSrcs = append(fileSrcs, NewLocalSource(selectedPath, path))
				}
			} else {
				fileSrcs = append(fileSrcs, NewLocalSource(path, ""))
			}
		}
	}

	var files []*File

	for _, fileSrc := range fileSrcs {
		file, err := NewFileFromSource(fileSrc)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	return files, nil
}

func NewFileFromSource(fileSrc Source) (*File, error) {
	relPath, err := fileSrc.RelativePath()
	if err != nil {
		return nil, fmt.Errorf("Calculating relative path for '%s': %s", fileSrc.Description(), err)
	}

	return &File{src: fileSrc, relPath: relPath}, nil
}

func MustNewFileFromSource(fileSrc Source) *File {
	file, err := NewFileFromSource(fileSrc)
	if err != nil {
		panic(err)
	}
	return file
}

func (r *File) Description() string    { return r.src.Description() }
func (r *File) RelativePath() string   { return r.relPath }
func (r *File) Bytes() ([]byte, error) { return r.src.Bytes() }

// LocalPath is the filesystem path of files read from disk.
func (r *File) LocalPath() (string, bool) {
	if src, ok := r.src.(LocalSource); ok {
		return src.path, true
	}
	return "", false
}

func (r *File) Type() Type {
	switch {
	case r.matchesExt(yamlExts):
		return TypeYAML
	case r.matchesExt(tomlExts):
		return TypeTOML
	case r.matchesExt(jsonExts):
		return TypeJSON
	case r.matchesExt(htmlExts):
		return TypeHTML
	default:
		return TypeUnknown
	}
}

// OutputRelativePath drops a trailing .tmpl so that page.html.tmpl
// renders into page.html.
func (r *File) OutputRelativePath() string {
	return strings.TrimSuffix(r.relPath, ".tmpl")
}

func (r *File) matchesExt(exts []string) bool {
	filename := strings.TrimSuffix(filepath.Base(r.RelativePath()), ".tmpl")
	for _, ext := range exts {
		if strings.HasSuffix(filename, ext) {
			return true
		}
	}
	return false
}
