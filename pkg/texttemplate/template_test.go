// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package texttemplate_test

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"carvel.dev/tempita/pkg/starlarkeval"
	"carvel.dev/tempita/pkg/texttemplate"
	"carvel.dev/tempita/pkg/tmpllibrary"
	"github.com/k14s/difflib"
)

var (
	selectedFileTestPath = kvArg("TestTextTemplate.filetest")
	showTemplateCode     = kvArg("TestTextTemplate.code")
	showErrs             = kvArg("TestTextTemplate.errs")

	sectionRe = regexp.MustCompile(`(?m)^--- ([\w.-]+)\n`)
)

// TestTextTemplate runs every file in filetests/. A file holds a
// template, a +++ line and the expected output (or ERR: and the expected
// error). Lines of the form "--- name" start additional templates that
// the first one may inherit from. Files named html-* render as HTML.
func TestTextTemplate(t *testing.T) {
	files, err := os.ReadDir("filetests")
	if err != nil {
		t.Fatal(err)
	}

	if len(selectedFileTestPath) > 0 {
		fmt.Printf("only running %s test(s)\n", selectedFileTestPath)
	}

	var errs []error

	for _, file := range files {
		filePath := filepath.Join("filetests", file.Name())

		if len(selectedFileTestPath) > 0 && !strings.HasPrefix(file.Name(), selectedFileTestPath) {
			continue
		}

		testDesc := fmt.Sprintf("checking %s ...\n", file.Name())
		fmt.Printf("%s", testDesc)

		contents, err := os.ReadFile(filePath)
		if err != nil {
			t.Fatal(err)
		}

		const (
			testSep   = "\n+++\n"
			errPrefix = "ERR: "
		)

		pieces := strings.SplitN(string(contents), testSep, 2)
		if len(pieces) != 2 {
			t.Fatalf("expected file %s to include +++ separator", filePath)
		}

		resultStr, testErr := evalTemplate(file.Name(), pieces[0]+"\n")
		expectedStr := pieces[1]

		if strings.HasPrefix(expectedStr, errPrefix) {
			if testErr == nil {
				err = fmt.Errorf("expected eval error, but did not receive it (output: %q)", resultStr)
			} else {
				err = expectEquals(testErr.UserErr().Error(), strings.TrimSpace(strings.TrimPrefix(expectedStr, errPrefix)))
			}
		} else {
			if testErr == nil {
				err = expectEquals(resultStr, expectedStr)
			} else {
				err = testErr.TestErr()
			}
		}

		if err != nil {
			fmt.Printf("   FAIL\n")
			if showErrs == "t" {
				sep := strings.Repeat(".", 80)
				fmt.Printf("%s\n%s%s\n", sep, err, sep)
			}
			errs = append(errs, fmt.Errorf("%s: %s", testDesc, err))
		} else {
			fmt.Printf("   .\n")
		}
	}

	if len(errs) > 0 {
		t.Errorf("%s", errs[0].Error())
	}

	if len(selectedFileTestPath) > 0 {
		t.Errorf("skipped tests")
	}
}

type testErr struct {
	realErr error // error returned to the user
	testErr error // error wrapped with helpful test context
}

func (e testErr) UserErr() error { return e.realErr }
func (e testErr) TestErr() error { return e.testErr }

func evalTemplate(fileName, data string) (string, *testErr) {
	main, others := splitSections(data)

	api := tmpllibrary.NewAPI()
	builtins := api.Namespace()
	var escaper texttemplate.Escaper

	if strings.HasPrefix(fileName, "html-") {
		builtins = api.HTMLNamespace()
		escaper = tmpllibrary.HTMLEscaper{}
	}

	evaluator := starlarkeval.NewEvaluator(starlarkeval.EvaluatorOpts{
		Builtins: builtins,
		Load:     api.FindModule,
	})

	getTemplate := func(name string, from *texttemplate.Template) (*texttemplate.Template, error) {
		content, found := others[name]
		if !found {
			return nil, fmt.Errorf("not found")
		}
		opts := from.Opts()
		opts.Name = name
		opts.DefaultInherit = ""
		return texttemplate.NewTemplate(content, opts)
	}

	tpl, err := texttemplate.NewTemplate(main, texttemplate.TemplateOpts{
		Name:        "stdin",
		Evaluator:   evaluator,
		Escaper:     escaper,
		GetTemplate: getTemplate,
	})
	if err != nil {
		return "", &testErr{err, fmt.Errorf("template parse error: %v", err)}
	}

	if showTemplateCode == "t" {
		fmt.Printf("### template:\n%s\n", tpl.AST().AsString())
	}

	resultStr, err := tpl.Substitute(nil)
	if err != nil {
		return "", &testErr{err, fmt.Errorf("eval error: %v\ncode:\n%s", err, tpl.AST().AsString())}
	}

	return resultStr, nil
}

func splitSections(data string) (string, map[string]string) {
	others := map[string]string{}

	locs := sectionRe.FindAllStringSubmatchIndex(data, -1)
	if len(locs) == 0 {
		return data, others
	}

	for i, loc := range locs {
		end := len(data)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		others[data[loc[2]:loc[3]]] = data[loc[1]:end]
	}
	return data[:locs[0][0]], others
}

func expectEquals(resultStr, expectedStr string) error {
	if resultStr != expectedStr {
		diff := difflib.PPDiff(strings.Split(expectedStr, "\n"), strings.Split(resultStr, "\n"))
		return fmt.Errorf("not equal\n\n### result %d chars:\n>>>%s<<<\n###expected %d chars:\n>>>%s<<<\n### diff expected...result:\n%s",
			len(resultStr), resultStr, len(expectedStr), expectedStr, diff)
	}
	return nil
}

func kvArg(name string) string {
	name += "="
	for _, arg := range os.Args {
		if strings.HasPrefix(arg, name) {
			return strings.TrimPrefix(arg, name)
		}
	}
	return ""
}
