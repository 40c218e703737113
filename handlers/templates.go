package handlers

import (
	"html/template"

	"github.com/gin-gonic/gin"
)

type healthPage struct {
	Health  gin.H
	Info    gin.H
	Stats   gin.H
	Healthy bool
	Failed  bool
}

var healthTemplate = template.Must(template.New("health").Parse(`<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Health · PR {{.Health.pr_number}}</title>
    <style>
      body { font-family: system-ui, sans-serif; margin: 2rem; color: #222; }
      .ok { color: #1a7f37; } .bad { color: #cf222e; }
      table { border-collapse: collapse; margin-bottom: 1.5rem; }
      td, th { border: 1px solid #ddd; padding: .3rem .7rem; text-align: left; }
    </style>
  </head>
  <body>
    {{if .Failed}}
    <h1 class="bad">Unhealthy</h1>
    <p>{{.Health.error}}</p>
    <p>{{.Health.timestamp}}</p>
    {{else}}
    <h1 class="{{if .Healthy}}ok{{else}}bad{{end}}">{{.Health.status}}</h1>
    <table>
      <tr><th>Database</th><td>{{.Health.database}}</td></tr>
      <tr><th>Environment</th><td>{{.Health.environment}}</td></tr>
      <tr><th>Host</th><td>{{.Health.host}}:{{.Health.port}}</td></tr>
      <tr><th>PR</th><td>{{.Health.pr_number}}</td></tr>
      <tr><th>Debug</th><td>{{.Health.debug}}</td></tr>
      <tr><th>Checked</th><td>{{.Health.timestamp}}</td></tr>
    </table>
    {{with .Info}}
    <h2>Runtime</h2>
    <table>
      <tr><th>Service</th><td>{{.service}}</td></tr>
      <tr><th>Go</th><td>{{.go_version}}</td></tr>
      <tr><th>Gin</th><td>{{.gin_version}}</td></tr>
      {{with .container_info}}<tr><th>Hostname</th><td>{{.hostname}}</td></tr>
      <tr><th>Platform</th><td>{{.platform}}</td></tr>{{end}}
    </table>
    {{end}}
    {{with .Stats}}
    <h2>Store</h2>
    {{if .error}}<p class="bad">{{.error}}</p>{{else}}
    <table>
      <tr><th>Database</th><td>{{.database_name}}</td></tr>
      <tr><th>Server version</th><td>{{.server_info}}</td></tr>
      <tr><th>Collections</th><td>{{range .collections}}{{.}} {{end}}</td></tr>
    </table>
    {{end}}
    {{end}}
    {{end}}
    <p><a href="/health?format=json&details=true">JSON</a></p>
  </body>
</html>`))

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>PR {{.pr_number}} environment</title>
    <style>body { font-family: system-ui, sans-serif; margin: 2rem; color: #222; }</style>
  </head>
  <body>
    <h1>PR {{.pr_number}} environment</h1>
    <p>MongoDB host: {{.mongodb_host}}</p>
    <p>{{.products_count}} products, {{.users_count}} users</p>
    <ul>
      {{range .endpoints}}<li><a href="{{.URL}}">{{.Name}}</a>: {{.Description}}</li>
      {{end}}
    </ul>
  </body>
</html>`))

var errorTemplate = template.Must(template.New("error").Parse(`<!doctype html>
<html>
  <head><meta charset="utf-8" /><title>Error</title></head>
  <body>
    <h1>{{.error}}</h1>
    <p>{{.details}}</p>
  </body>
</html>`))
