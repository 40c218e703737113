package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prenv/catalog-api/internal/document"
	"github.com/prenv/catalog-api/internal/document/service"
	"github.com/prenv/catalog-api/pkg/logger"
)

var errBodyNotObject = errors.New("request body must be a JSON object")

// Handler serves the resource endpoints over a Service.
type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts products, users, the database test and the seed endpoint.
func RegisterRoutes(r gin.IRoutes, svc *service.Service) {
	h := New(svc)
	r.GET("/api/products", h.listProducts)
	r.GET("/api/products/category/:category", h.productsByCategory)

	r.GET("/api/users", h.listUsers)
	r.POST("/api/users", h.createUser)
	r.GET("/api/users/:id", h.getUser)
	r.PUT("/api/users/:id", h.updateUser)
	r.DELETE("/api/users/:id", h.deleteUser)

	r.GET("/api/test-db", h.testDB)
	r.GET("/init-data", h.initData)
	r.POST("/init-data", h.initData)
}

func (h *Handler) listProducts(c *gin.Context) {
	docs, err := h.svc.List(c.Request.Context(), document.ProductsCollection)
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "products": document.ProjectAll(docs), "count": len(docs)})
}

func (h *Handler) productsByCategory(c *gin.Context) {
	category := c.Param("category")
	docs, err := h.svc.ListBy(c.Request.Context(), document.ProductsCollection, "category", category)
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"category": category,
		"products": document.ProjectAll(docs),
		"count":    len(docs),
	})
}

func (h *Handler) listUsers(c *gin.Context) {
	docs, err := h.svc.List(c.Request.Context(), document.UsersCollection)
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "users": document.ProjectAll(docs), "count": len(docs)})
}

func (h *Handler) createUser(c *gin.Context) {
	body, err := bindObject(c)
	if err != nil {
		respondError(c, err, "")
		return
	}
	id, err := h.svc.Create(c.Request.Context(), document.UsersCollection, body)
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "user_id": id.Hex(), "message": "User created successfully"})
}

func (h *Handler) getUser(c *gin.Context) {
	d, err := h.svc.Get(c.Request.Context(), document.UsersCollection, c.Param("id"))
	if err != nil {
		respondError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "user": d.Project()})
}

func (h *Handler) updateUser(c *gin.Context) {
	body, err := bindObject(c)
	if err != nil {
		respondError(c, err, "")
		return
	}
	if err := h.svc.Update(c.Request.Context(), document.UsersCollection, c.Param("id"), body); err != nil {
		respondError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "User updated successfully"})
}

func (h *Handler) deleteUser(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), document.UsersCollection, c.Param("id")); err != nil {
		respondError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "User deleted successfully"})
}

func (h *Handler) testDB(c *gin.Context) {
	d, err := h.svc.WriteTestRecord(c.Request.Context())
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "operation": "insert_and_retrieve", "document": d.Project()})
}

func (h *Handler) initData(c *gin.Context) {
	res, err := h.svc.Seed(c.Request.Context())
	if err != nil {
		respondError(c, err, "")
		return
	}
	if res.AlreadySeeded {
		c.JSON(http.StatusOK, gin.H{
			"status":         "info",
			"message":        "Sample data already exists",
			"products_count": res.ProductsCount,
			"users_count":    res.UsersCount,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":            "success",
		"message":           "Sample data initialized successfully",
		"products_inserted": res.ProductsInserted,
		"users_inserted":    res.UsersInserted,
		"api_products":      "/api/products",
	})
}

// bindObject decodes the request body into a document. Anything but a JSON
// object is rejected.
func bindObject(c *gin.Context) (document.Document, error) {
	var body document.Document
	if err := c.ShouldBindJSON(&body); err != nil {
		return nil, err
	}
	if body == nil {
		return nil, errBodyNotObject
	}
	return body, nil
}

// respondError maps a service error onto the response envelope. notFound is
// the message used for a 404; empty means the route has no not-found case.
func respondError(c *gin.Context, err error, notFound string) {
	switch {
	case errors.Is(err, service.ErrUnavailable):
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Database connection failed"})
	case notFound != "" && errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": notFound})
	default:
		logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
	}
}
