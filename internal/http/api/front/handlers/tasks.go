package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/salonkit/salonkit-server/internal/models"
)

// TaskFrontHandler manages a tenant's to-do list.
type TaskFrontHandler struct {
	db *gorm.DB
}

// NewTaskFrontHandler constructs a TaskFrontHandler.
func NewTaskFrontHandler(db *gorm.DB) *TaskFrontHandler {
	return &TaskFrontHandler{db: db}
}

// createTaskRequest captures the payload for adding a task.
type createTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

// Create adds a task.
func (h *TaskFrontHandler) Create(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body createTaskRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	title := strings.TrimSpace(body.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	now := time.Now().UTC()
	task := models.Task{
		CompanyID:   companyID,
		Title:       title,
		Description: body.Description,
		DueDate:     body.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&task).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create task failed"})
		return
	}
	c.JSON(http.StatusCreated, h.formatTask(&task))
}

// List returns the tenant's tasks, optionally filtered by completion.
func (h *TaskFrontHandler) List(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	q := h.db.WithContext(c.Request.Context()).Model(&models.Task{}).Where("company_id = ?", companyID)
	if doneQ := strings.TrimSpace(c.Query("done")); doneQ == "true" || doneQ == "1" {
		q = q.Where("done = ?", true)
	} else if doneQ == "false" || doneQ == "0" {
		q = q.Where("done = ?", false)
	}

	var rows []models.Task
	if errFind := q.Order("due_date ASC, created_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list tasks failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, h.formatTask(&row))
	}
	c.JSON(http.StatusOK, gin.H{"tasks": out})
}

// updateTaskRequest captures optional fields for task updates.
type updateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Done        *bool      `json:"done"`
}

// Update applies task field updates.
func (h *TaskFrontHandler) Update(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	task, ok := h.findTask(c, companyID)
	if !ok {
		return
	}

	var body updateTaskRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{
		"updated_at": time.Now().UTC(),
	}
	if body.Title != nil {
		t := strings.TrimSpace(*body.Title)
		if t == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title cannot be empty"})
			return
		}
		updates["title"] = t
	}
	if body.Description != nil {
		updates["description"] = *body.Description
	}
	if body.DueDate != nil {
		updates["due_date"] = *body.DueDate
	}
	if body.Done != nil {
		updates["done"] = *body.Done
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Task{}).
		Where("id = ?", task.ID).Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete removes a task.
func (h *TaskFrontHandler) Delete(c *gin.Context) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	task, ok := h.findTask(c, companyID)
	if !ok {
		return
	}
	if errDelete := h.db.WithContext(c.Request.Context()).Delete(&models.Task{}, task.ID).Error; errDelete != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// findTask resolves the :id path param within the tenant scope.
func (h *TaskFrontHandler) findTask(c *gin.Context, companyID uint64) (*models.Task, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}
	var task models.Task
	errFind := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&task).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return nil, false
	}
	return &task, true
}

// formatTask converts a task into a response payload.
func (h *TaskFrontHandler) formatTask(t *models.Task) gin.H {
	return gin.H{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"due_date":    t.DueDate,
		"done":        t.Done,
		"created_at":  t.CreatedAt,
		"updated_at":  t.UpdatedAt,
	}
}
