package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kalpovskii/taskboard/internal/app/models"
)

// TaskService is the operation set the HTTP layer needs.
type TaskService interface {
	List(ctx context.Context, q models.ListQuery) (*models.TaskPage, error)
	ListMine(ctx context.Context, userID string, q models.ListQuery) (*models.TaskPage, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Task, error)
	Create(ctx context.Context, form models.TaskFormData) (*models.Task, error)
	Update(ctx context.Context, id uuid.UUID, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) (*models.Task, error)
	Assign(ctx context.Context, id uuid.UUID, assignee string) (*models.Task, error)
	AddTag(ctx context.Context, id uuid.UUID, tag string) (*models.Task, error)
	RemoveTag(ctx context.Context, id uuid.UUID, tag string) (*models.Task, error)
}

type TaskHandler struct {
	service TaskService
	errors  errorWriter
}

func NewTaskHandler(service TaskService, logger *slog.Logger, exposeErrors bool) *TaskHandler {
	return &TaskHandler{
		service: service,
		errors:  errorWriter{logger: logger, expose: exposeErrors},
	}
}

func (h *TaskHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/tasks", h.list)
	rg.GET("/tasks/my", h.listMine)
	rg.GET("/users/:userId/tasks", h.listByUser)
	rg.GET("/tasks/:id", h.get)
	rg.POST("/tasks", h.create)
	rg.PUT("/tasks/:id", h.update)
	rg.DELETE("/tasks/:id", h.delete)
	rg.PATCH("/tasks/:id/status", h.updateStatus)
	rg.PATCH("/tasks/:id/assign", h.assign)
	rg.POST("/tasks/:id/tags", h.addTag)
	// catch-all so a tag may contain slashes
	rg.DELETE("/tasks/:id/tags/*tag", h.removeTag)
}

func (h *TaskHandler) list(c *gin.Context) {
	q, ok := bindQuery(c)
	if !ok {
		return
	}
	page, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		h.errors.write(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *TaskHandler) listMine(c *gin.Context) {
	userID := UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	h.listFor(c, userID)
}

func (h *TaskHandler) listByUser(c *gin.Context) {
	h.listFor(c, c.Param("userId"))
}

func (h *TaskHandler) listFor(c *gin.Context, userID string) {
	q, ok := bindQuery(c)
	if !ok {
		return
	}
	page, err := h.service.ListMine(c.Request.Context(), userID, q)
	if err != nil {
		h.errors.write(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *TaskHandler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	task, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.errors.write(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) create(c *gin.Context) {
	var form models.TaskFormData
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	task, err := h.service.Create(c.Request.Context(), form)
	if err != nil {
		h.errors.write(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var patch models.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	task, err := h.service.Update(c.Request.Context(), id, patch)
	if err != nil {
		h.errors.write(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.errors.write(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) updateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Status models.Status `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	task, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.errors.write(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) assign(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Assignee string `json:"assignee"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	task, err := h.service.Assign(c.Request.Context(), id, req.Assignee)
	if err != nil {
		h.errors.write(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) addTag(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Tag string `json:"tag"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	task, err := h.service.AddTag(c.Request.Context(), id, req.Tag)
	if err != nil {
		h.errors.write(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) removeTag(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	tag := strings.TrimPrefix(c.Param("tag"), "/")
	task, err := h.service.RemoveTag(c.Request.Context(), id, tag)
	if err != nil {
		h.errors.write(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ID"})
		return uuid.Nil, false
	}
	return id, true
}

func bindQuery(c *gin.Context) (models.ListQuery, bool) {
	var q models.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return q, false
	}
	return q, true
}
