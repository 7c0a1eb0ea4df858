// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"os"

	"carvel.dev/tempita/pkg/cmd/ui"
	"carvel.dev/tempita/pkg/files"
	"github.com/spf13/cobra"
)

type RegularFilesSourceOpts struct {
	files               []string
	filterTemplateFiles []string
	recursive           bool
	outputFile          string
	outputDirectory     string
}

func (s *RegularFilesSourceOpts) Set(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&s.files, "file", "f", nil, "File (ie local path, HTTP URL, -) (can be specified multiple times)")
	cmd.Flags().StringSliceVar(&s.filterTemplateFiles, "filter-template-file", nil, "Specify which file to render; others are only available to {{inherit}} (can be specified multiple times)")
	cmd.Flags().BoolVarP(&s.recursive, "recursive", "R", false, "Interpret file as directory")
	cmd.Flags().StringVar(&s.outputFile, "output-file", "", "File to write rendered output into")
	cmd.Flags().StringVarP(&s.outputDirectory, "output-directory", "o", "", "Directory for output (one file per rendered template)")
}

type RegularFilesSource struct {
	opts RegularFilesSourceOpts
	ui   ui.UI
}

func NewRegularFilesSource(opts RegularFilesSourceOpts, ui ui.UI) *RegularFilesSource {
	return &RegularFilesSource{opts, ui}
}

func (s *RegularFilesSource) HasInput() bool  { return len(s.opts.files) > 0 }
func (s *RegularFilesSource) HasOutput() bool { return true }

func (s *RegularFilesSource) Input() (RenderInput, error) {
	filesToProcess, err := files.NewFiles(s.opts.files, s.opts.recursive)
	if err != nil {
		return RenderInput{}, err
	}

	in := RenderInput{Files: filesToProcess}

	if len(s.opts.filterTemplateFiles) > 0 {
		in.Render = map[string]struct{}{}
		for _, path := range s.opts.filterTemplateFiles {
			in.Render[path] = struct{}{}
		}
	}

	return in, nil
}

func (s *RegularFilesSource) Output(out RenderOutput) error {
	if out.Err != nil {
		return out.Err
	}

	if len(s.opts.outputFile) > 0 && len(s.opts.outputDirectory) > 0 {
		return fmt.Errorf("Expected only one of --output-file or --output-directory to be specified")
	}

	if len(s.opts.outputDirectory) > 0 {
		return files.NewOutputDirectory(s.opts.outputDirectory, out.Files, s.ui).Write()
	}

	combined := out.Combined()

	if len(s.opts.outputFile) > 0 {
		s.ui.Debugf("writing: %s\n", s.opts.outputFile)
		return os.WriteFile(s.opts.outputFile, combined, 0600)
	}

	s.ui.Debugf("### result\n")
	s.ui.Printf("%s", combined) // no newline

	return nil
}
