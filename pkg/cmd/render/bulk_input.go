// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"encoding/json"

	"carvel.dev/tempita/pkg/cmd/ui"
	"carvel.dev/tempita/pkg/files"
	"carvel.dev/tempita/pkg/orderedmap"
	"github.com/spf13/cobra"
)

type BulkFilesSourceOpts struct {
	bulkIn  string
	bulkOut bool
}

func (s *BulkFilesSourceOpts) Set(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.bulkIn, "bulk-in", "", "Accept files (and values) in bulk format")
	cmd.Flags().BoolVar(&s.bulkOut, "bulk-out", false, "Output files in bulk format")
}

type BulkFilesSource struct {
	opts BulkFilesSourceOpts
	ui   ui.UI
}

// BulkFiles is the JSON form of both input and output. Values is only
// read on input.
type BulkFiles struct {
	Files  []BulkFile             `json:"files,omitempty"`
	Values map[string]interface{} `json:"values,omitempty"`
	Errors string                 `json:"errors,omitempty"`
}

type BulkFile struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

func NewBulkFilesSource(opts BulkFilesSourceOpts, ui ui.UI) *BulkFilesSource {
	return &BulkFilesSource{opts, ui}
}

func (s *BulkFilesSource) HasInput() bool  { return len(s.opts.bulkIn) > 0 }
func (s *BulkFilesSource) HasOutput() bool { return s.opts.bulkOut }

func (s *BulkFilesSource) Input() (RenderInput, error) {
	var fs BulkFiles
	err := json.Unmarshal([]byte(s.opts.bulkIn), &fs)
	if err != nil {
		return RenderInput{}, err
	}
	return fs.AsInput()
}

// AsInput turns bulk files into in-memory template files.
func (fs BulkFiles) AsInput() (RenderInput, error) {
	var result []*files.File

	for _, f := range fs.Files {
		file, err := files.NewFileFromSource(files.NewBytesSource(f.Name, []byte(f.Data)))
		if err != nil {
			return RenderInput{}, err
		}
		result = append(result, file)
	}

	in := RenderInput{Files: result}

	if fs.Values != nil {
		in.Values = orderedmap.Conversion{Object: fs.Values}.FromUnorderedMaps().(*orderedmap.Map)
	}

	return in, nil
}

func NewBulkFilesFromOutput(out RenderOutput) BulkFiles {
	fs := BulkFiles{}

	if out.Err != nil {
		fs.Errors = out.Err.Error()
	}

	for _, outputFile := range out.Files {
		fs.Files = append(fs.Files, BulkFile{
			Name: outputFile.RelativePath(),
			Data: string(outputFile.Bytes()),
		})
	}

	return fs
}

func (s *BulkFilesSource) Output(out RenderOutput) error {
	resultBytes, err := json.Marshal(NewBulkFilesFromOutput(out))
	if err != nil {
		return err
	}

	s.ui.Debugf("### result\n")
	s.ui.Printf("%s", resultBytes)

	return nil
}
