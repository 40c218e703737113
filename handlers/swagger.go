package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the catalog API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(r gin.IRoutes) {
	r.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	r.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>catalog-api — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "catalog-api", "version": "v0.1.0" },
  "components": {
    "schemas": {
      "Error": { "type": "object", "properties": { "status": {"type":"string"}, "error": {"type":"string"}, "message": {"type":"string"} } },
      "Document": { "type": "object", "additionalProperties": true, "properties": { "_id": {"type":"string"}, "created_at": {"type":"string","format":"date-time"}, "updated_at": {"type":"string","format":"date-time"} } }
    }
  },
  "paths": {
    "/": { "get": { "summary": "Environment summary", "responses": { "200": { "description": "counts and endpoint directory" }, "500": { "description": "store unavailable" } } } },
    "/health": {
      "get": {
        "summary": "Store liveness and environment facts",
        "parameters": [
          {"name":"format","in":"query","schema":{"type":"string","enum":["json"]}},
          {"name":"details","in":"query","schema":{"type":"boolean"}}
        ],
        "responses": { "200": { "description": "healthy or unhealthy" }, "500": { "description": "status could not be composed" } }
      }
    },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/api/products": { "get": { "summary": "List products", "responses": { "200": { "description": "products and count" }, "500": { "description": "store failure" } } } },
    "/api/products/category/{category}": {
      "get": {
        "summary": "List products of one category",
        "parameters": [{"name":"category","in":"path","required":true,"schema":{"type":"string"}}],
        "responses": { "200": { "description": "matching products" }, "500": { "description": "store failure" } }
      }
    },
    "/api/users": {
      "get": { "summary": "List users", "responses": { "200": { "description": "users and count" }, "500": { "description": "store failure" } } },
      "post": {
        "summary": "Create user",
        "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Document"} } } },
        "responses": { "201": { "description": "user_id of the new user" }, "500": { "description": "malformed body or store failure" } }
      }
    },
    "/api/users/{id}": {
      "parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string"}}],
      "get": { "summary": "Get user", "responses": { "200": { "description": "user" }, "404": { "description": "User not found" } } },
      "put": {
        "summary": "Merge fields into user",
        "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Document"} } } },
        "responses": { "200": { "description": "updated" }, "404": { "description": "User not found" } }
      },
      "delete": { "summary": "Delete user", "responses": { "200": { "description": "deleted" }, "404": { "description": "User not found" } } }
    },
    "/api/test-db": { "get": { "summary": "Insert and read back a test record", "responses": { "200": { "description": "stored record" }, "500": { "description": "store failure" } } } },
    "/init-data": {
      "get": { "summary": "Seed sample data", "responses": { "200": { "description": "inserted counts or already exists" } } },
      "post": { "summary": "Seed sample data", "responses": { "200": { "description": "inserted counts or already exists" } } }
    },
    "/api/system-logs": {
      "get": {
        "summary": "Recent system events",
        "parameters": [{"name":"limit","in":"query","schema":{"type":"integer","default":50,"maximum":500}}],
        "responses": { "200": { "description": "entries, newest first" }, "503": { "description": "system log disabled" } }
      }
    },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "exposition format" } } } }
  }
}`
