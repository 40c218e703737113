package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/prenv/catalog-api/internal/document"
	"github.com/prenv/catalog-api/internal/document/service"
)

// Endpoint is one entry of the welcome page directory.
type Endpoint struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Endpoints lists the routes advertised on the welcome page.
var Endpoints = []Endpoint{
	{Name: "API - Products", URL: "/api/products", Description: "Products JSON API"},
	{Name: "API - Users", URL: "/api/users", Description: "Users JSON API"},
	{Name: "Health Check", URL: "/health", Description: "System health status"},
	{Name: "Database Test", URL: "/api/test-db", Description: "Insert and read back a test record"},
	{Name: "Sample Data", URL: "/init-data", Description: "Seed sample products and users"},
	{Name: "System Logs", URL: "/api/system-logs", Description: "Recent service events"},
	{Name: "API Docs", URL: "/swagger/index.html", Description: "OpenAPI description"},
}

// Welcome summarizes the environment: PR number, store host and document counts.
func (h *StatusHandler) Welcome(c *gin.Context) {
	ctx := c.Request.Context()
	products, err := h.counter.Count(ctx, document.ProductsCollection)
	var users int64
	if err == nil {
		users, err = h.counter.Count(ctx, document.UsersCollection)
	}
	if err != nil {
		h.welcomeError(c, err)
		return
	}

	data := gin.H{
		"status":         "success",
		"pr_number":      h.cfg.Server.PRNumber,
		"mongodb_host":   h.cfg.MongoDB.Host,
		"products_count": products,
		"users_count":    users,
		"endpoints":      Endpoints,
	}
	if wantsJSON(c) {
		c.JSON(http.StatusOK, data)
		return
	}
	c.Render(http.StatusOK, render.HTML{Template: welcomeTemplate, Name: "welcome", Data: data})
}

func (h *StatusHandler) welcomeError(c *gin.Context, err error) {
	body := gin.H{"status": "error", "error": "Application error", "details": err.Error()}
	if errors.Is(err, service.ErrUnavailable) {
		body = gin.H{"status": "error", "error": "Database connection failed", "details": "MongoDB is not accessible"}
	}
	if wantsJSON(c) {
		c.JSON(http.StatusInternalServerError, body)
		return
	}
	c.Render(http.StatusInternalServerError, render.HTML{Template: errorTemplate, Name: "error", Data: body})
}
