// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package website

type File struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type Example struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Files       []File `json:"files,omitempty"`
}

type exampleSet struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Description string    `json:"description"`
	Examples    []Example `json:"examples"`
}

// Files are the static assets served by the playground.
var Files = map[string]File{
	"templates/index.html": {Name: "templates/index.html", Content: indexHTML},
	"js/playground.js":     {Name: "js/playground.js", Content: playgroundJS},
}

var exampleSets = []exampleSet{{
	ID:          "basics",
	DisplayName: "Basics",
	Description: "Expressions, control flow and py blocks",
	Examples: []Example{
		{
			ID:          "hello",
			DisplayName: "Hello",
			Files: []File{
				{Name: "template.txt", Content: "Hello {{name}}!\n{{# comments are dropped}}\n{{name | len}} letters, {{name.upper()}}\n"},
				{Name: "values.json", Content: `{"name": "tempita"}`},
			},
		},
		{
			ID:          "loops",
			DisplayName: "Loops and conditions",
			Files: []File{
				{Name: "template.txt", Content: "{{for loop, item in looper(items)}}\n{{loop.number}}. {{item}}{{if loop.last}} (last){{endif}}\n{{endfor}}\n"},
				{Name: "values.json", Content: `{"items": ["a", "b", "c"]}`},
			},
		},
		{
			ID:          "py",
			DisplayName: "py blocks and defaults",
			Files: []File{
				{Name: "template.txt", Content: "{{default greeting = 'Hi'}}\n{{py:\ndef shout(s):\n    return s.upper() + '!'\n}}\n{{greeting}} {{shout(name)}}\n"},
				{Name: "values.json", Content: `{"name": "world"}`},
			},
		},
	},
}, {
	ID:          "html",
	DisplayName: "HTML",
	Description: "Escaping and HTML helpers",
	Examples: []Example{
		{
			ID:          "escaping",
			DisplayName: "Escaping",
			Files: []File{
				{Name: "template.html", Content: "<p>{{text}}</p>\n<a {{attr(href=url(link), class_='x')}}>{{html('<b>link</b>')}}</a>\n"},
				{Name: "values.json", Content: `{"text": "1 < 2 & 3", "link": "/a b"}`},
			},
		},
	},
}}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>tempita playground</title>
  <script src="/js/playground.js"></script>
</head>
<body>
  <select id="examples"></select>
  <textarea id="template" rows="20" cols="80"></textarea>
  <textarea id="values" rows="20" cols="40">{}</textarea>
  <label><input type="checkbox" id="html"> HTML</label>
  <button id="run">Render</button>
  <pre id="output"></pre>
</body>
</html>
`

const playgroundJS = `window.addEventListener("load", function() {
  var el = function(id) { return document.getElementById(id); };

  el("run").addEventListener("click", function() {
    var body = JSON.stringify({
      template: el("template").value,
      values: JSON.parse(el("values").value || "{}"),
      html: el("html").checked
    });
    fetch("/template", {method: "POST", body: body})
      .then(function(resp) { return resp.json(); })
      .then(function(result) { el("output").textContent = result.errors || result.output; });
  });

  fetch("/examples").then(function(resp) { return resp.json(); }).then(function(sets) {
    sets.forEach(function(set) {
      set.examples.forEach(function(example) {
        var opt = document.createElement("option");
        opt.value = example.id;
        opt.textContent = set.display_name + ": " + example.display_name;
        el("examples").appendChild(opt);
      });
    });
  });

  el("examples").addEventListener("change", function(ev) {
    fetch("/examples/" + ev.target.value).then(function(resp) { return resp.json(); }).then(function(example) {
      example.files.forEach(function(file) {
        if (file.name === "values.json") {
          el("values").value = file.content;
        } else {
          el("template").value = file.content;
          el("html").checked = file.name.endsWith(".html");
        }
      });
    });
  });
});
`
