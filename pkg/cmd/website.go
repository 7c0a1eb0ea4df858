// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"carvel.dev/tempita/pkg/cmd/render"
	"carvel.dev/tempita/pkg/cmd/ui"
	"carvel.dev/tempita/pkg/website"
	"github.com/spf13/cobra"
)

const (
	playgroundTemplateName = "template"
	defaultMaxBodySize     = 1 << 20
)

type WebsiteOptions struct {
	ListenAddr      string
	RedirectToHTTPS bool
	MaxBodySize     int64
	Debug           bool
}

func NewWebsiteOptions() *WebsiteOptions {
	return &WebsiteOptions{MaxBodySize: defaultMaxBodySize}
}

func NewWebsiteCmd(o *WebsiteOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "website",
		Short: "Starts website HTTP server",
		RunE:  func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	cmd.Flags().StringVar(&o.ListenAddr, "listen-addr", "localhost:8080", "Listen address")
	cmd.Flags().BoolVar(&o.RedirectToHTTPS, "redirect-to-https", true, "Redirect to HTTPs address")
	cmd.Flags().Int64Var(&o.MaxBodySize, "max-body-size", defaultMaxBodySize, "Maximum size of a template request in bytes")
	cmd.Flags().BoolVar(&o.Debug, "debug", false, "Enable debug output")
	return cmd
}

func (o *WebsiteOptions) Server() *website.Server {
	opts := website.ServerOpts{
		ListenAddr:      o.ListenAddr,
		RedirectToHTTPS: o.RedirectToHTTPS,
		MaxBodySize:     o.MaxBodySize,
		TemplateFunc:    o.renderTemplate,
	}
	return website.NewServer(opts)
}

func (o *WebsiteOptions) Run() error {
	return o.Server().Run()
}

// renderTemplate renders in process: only the submitted template is
// visible to {{inherit}} and nothing is read from disk.
func (o *WebsiteOptions) renderTemplate(req website.TemplateRequest) (website.TemplateResponse, error) {
	in, err := render.BulkFiles{
		Files:  []render.BulkFile{{Name: playgroundTemplateName, Data: req.Template}},
		Values: req.Values,
	}.AsInput()
	if err != nil {
		return website.TemplateResponse{}, err
	}

	renderOpts := render.NewOptions()
	renderOpts.HTML = req.HTML

	out := renderOpts.RunWithFiles(in, ui.NewTTY(o.Debug))
	if out.Err != nil {
		return website.TemplateResponse{Errors: out.Err.Error()}, nil
	}

	return website.TemplateResponse{Output: string(out.Combined())}, nil
}
