// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package tmpllibrary contains the names available to every template out of
the box (start_braces, end_braces, looper), the HTML helpers added for HTML
templates (html, html_quote, url, attr), and serialization and version
modules that can also be loaded explicitly:

	{{py: load("@tempita:json", "json")}}
*/
package tmpllibrary
