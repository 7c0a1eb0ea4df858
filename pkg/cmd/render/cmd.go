// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"bytes"
	"fmt"
	"time"

	"carvel.dev/tempita/pkg/cmd/ui"
	"carvel.dev/tempita/pkg/files"
	"carvel.dev/tempita/pkg/orderedmap"
	"carvel.dev/tempita/pkg/tempita"
	"carvel.dev/tempita/pkg/texttemplate"
	"github.com/spf13/cobra"
)

type RenderOptions struct {
	Debug          bool
	HTML           bool
	NoTrim         bool
	DefaultInherit string

	AllowSymlinkDestinations  []string
	DangerousAllowAllSymlinks bool

	BulkFilesSourceOpts    BulkFilesSourceOpts
	RegularFilesSourceOpts RegularFilesSourceOpts
	DataValuesFlags        DataValuesFlags
}

type RenderInput struct {
	Files []*files.File
	// Values are layered under data values flags
	Values *orderedmap.Map
	// Render limits which files are rendered (by relative path);
	// all files are rendered when nil
	Render map[string]struct{}
}

type RenderOutput struct {
	Files []files.OutputFile
	Err   error
	Empty bool
}

// Combined concatenates every rendered file in input order.
func (o RenderOutput) Combined() []byte {
	var result bytes.Buffer
	for _, file := range o.Files {
		result.Write(file.Bytes())
	}
	return result.Bytes()
}

type FileSource interface {
	HasInput() bool
	HasOutput() bool
	Input() (RenderInput, error)
	Output(RenderOutput) error
}

var _ []FileSource = []FileSource{&BulkFilesSource{}, &RegularFilesSource{}}

func NewOptions() *RenderOptions {
	return &RenderOptions{}
}

func NewCmd(o *RenderOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "render",
		Aliases: []string{"r"},
		Short:   "Render {{ }} templates",
		RunE:    func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	cmd.Flags().BoolVar(&o.Debug, "debug", false, "Enable debug output")
	cmd.Flags().BoolVar(&o.HTML, "html", false, "Render every template as HTML (templates named *.html and *.htm always are)")
	cmd.Flags().BoolVar(&o.NoTrim, "no-trim", false, "Keep whitespace around lines holding only a block directive")
	cmd.Flags().StringVar(&o.DefaultInherit, "default-inherit", "", "Template to inherit from when a template has no {{inherit}}")
	cmd.Flags().StringSliceVar(&o.AllowSymlinkDestinations, "allow-symlink-destination", nil, "File paths to which symlinks of inherited templates are allowed to resolve (can be specified multiple times)")
	cmd.Flags().BoolVar(&o.DangerousAllowAllSymlinks, "dangerous-allow-all-symlink-destinations", false, "Symlinks of inherited templates may resolve anywhere (dangerous)")
	o.BulkFilesSourceOpts.Set(cmd)
	o.RegularFilesSourceOpts.Set(cmd)
	o.DataValuesFlags.Set(cmd)
	return cmd
}

func (o *RenderOptions) Run() error {
	ui := ui.NewTTY(o.Debug)
	t1 := time.Now()

	defer func() {
		ui.Debugf("total: %s\n", time.Since(t1))
	}()

	srcs := []FileSource{
		NewBulkFilesSource(o.BulkFilesSourceOpts, ui),
		NewRegularFilesSource(o.RegularFilesSourceOpts, ui),
	}

	in, err := o.pickSource(srcs, func(s FileSource) bool { return s.HasInput() }).Input()
	if err != nil {
		return err
	}

	out := o.RunWithFiles(in, ui)
	if out.Empty {
		return nil
	}

	return o.pickSource(srcs, func(s FileSource) bool { return s.HasOutput() }).Output(out)
}

func (o *RenderOptions) RunWithFiles(in RenderInput, ui ui.UI) RenderOutput {
	values, err := o.values(in)
	if err != nil {
		return RenderOutput{Err: err}
	}

	if o.DataValuesFlags.Inspect {
		return o.inspectValues(values, ui)
	}

	ns := texttemplate.Namespace{}
	values.Iterate(func(k, v interface{}) {
		ns[fmt.Sprintf("%v", k)] = v
	})

	loader := o.loader(in.Files)

	var result []files.OutputFile

	for _, file := range in.Files {
		if in.Render != nil {
			if _, found := in.Render[file.RelativePath()]; !found {
				ui.Debugf("skipping: %s\n", file.RelativePath())
				continue
			}
		}

		ui.Debugf("rendering: %s\n", file.RelativePath())

		out, err := o.renderFile(file, ns, loader)
		if err != nil {
			return RenderOutput{Err: err}
		}

		result = append(result, files.NewOutputFile(file.OutputRelativePath(), []byte(out)))
	}

	if len(result) == 0 {
		return RenderOutput{Err: fmt.Errorf("Expected at least one template to render")}
	}

	return RenderOutput{Files: result}
}

func (o *RenderOptions) values(in RenderInput) (*orderedmap.Map, error) {
	flagVals, err := o.DataValuesFlags.Values()
	if err != nil {
		return nil, err
	}

	if in.Values == nil {
		return flagVals, nil
	}

	result := orderedmap.NewMap()
	result.Merge(in.Values)
	result.Merge(flagVals)
	return result, nil
}

// loader resolves inheritance targets relative to the referencing
// template on disk, then among the given files by relative path. Only
// the given files are visible when none of them came from disk.
func (o *RenderOptions) loader(inputs []*files.File) files.Loader {
	memory := files.MemoryLoader{}
	var hasLocal bool

	for _, file := range inputs {
		if _, ok := file.LocalPath(); ok {
			hasLocal = true
		}
		bs, err := file.Bytes()
		if err == nil {
			memory[file.RelativePath()] = string(bs)
		}
	}

	if !hasLocal {
		return memory
	}

	return files.MultiLoader{files.DirLoader{
		Symlinks: files.SymlinkAllowOpts{
			AllowAll:        o.DangerousAllowAllSymlinks,
			AllowedDstPaths: o.AllowSymlinkDestinations,
		},
	}, memory}
}

func (o *RenderOptions) renderFile(file *files.File, ns texttemplate.Namespace, loader files.Loader) (string, error) {
	contents, err := file.Bytes()
	if err != nil {
		return "", fmt.Errorf("Reading %s: %s", file.Description(), err)
	}

	name := file.RelativePath()
	if path, ok := file.LocalPath(); ok {
		name = path
	}

	opts := tempita.Opts{
		Name:           name,
		Loader:         loader,
		DefaultInherit: o.DefaultInherit,
		KeepWhitespace: o.NoTrim,
	}

	newFunc := tempita.New
	if o.HTML || file.Type() == files.TypeHTML {
		newFunc = tempita.NewHTML
	}

	tpl, err := newFunc(string(contents), opts)
	if err != nil {
		return "", err
	}

	return tpl.Substitute(ns)
}

func (o *RenderOptions) pickSource(srcs []FileSource, pickFunc func(FileSource) bool) FileSource {
	for _, src := range srcs {
		if pickFunc(src) {
			return src
		}
	}
	return srcs[len(srcs)-1]
}

func (o *RenderOptions) inspectValues(values *orderedmap.Map, ui ui.UI) RenderOutput {
	docBytes, err := orderedmap.ToYAML(values, 2)
	if err != nil {
		return RenderOutput{Err: fmt.Errorf("Marshaling data values: %s", err)}
	}

	ui.Printf("%s", docBytes) // no newline

	return RenderOutput{Empty: true}
}
