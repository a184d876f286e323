package webform

import "html/template"

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>CSV to Shapefile</title>
<style>
body { font-family: sans-serif; margin: 2em; max-width: 48em; }
label { display: block; margin-top: .8em; }
pre { background: #f4f4f4; padding: .8em; height: 18em; overflow-y: scroll; }
</style>
</head>
<body>
<h1>CSV to Shapefile</h1>
<p>Points are written in {{.CRS}}.</p>
<form method="post" action="/convert" enctype="multipart/form-data">
  <label>Source table <input type="file" name="source" accept=".csv,.xlsx,.xlsm"></label>
  <label>Name prefix <input type="text" name="prefix"></label>
  <label>Photo batch <input type="text" name="batch"></label>
  <label>Naming tag
    <select name="tag">
    {{- range .Tags}}
      <option value="{{.}}"{{if eq . $.DefaultTag}} selected{{end}}>{{.}}</option>
    {{- end}}
    </select>
  </label>
  <p><button type="submit">Convert</button></p>
</form>
{{- if .Downloads}}
<h2>Archives</h2>
<ul>
{{- range .Downloads}}
  <li><a href="/download/{{.ID}}">{{.Name}}</a></li>
{{- end}}
</ul>
{{- end}}
<h2>Status</h2>
<pre>{{range .Lines}}{{.}}
{{end}}</pre>
</body>
</html>
`))
