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
	"github.com/salonkit/salonkit-server/internal/security"
)

// AdminAccountHandler manages platform administrator accounts. Only super
// admins may create or mutate other admins.
type AdminAccountHandler struct {
	db *gorm.DB
}

// NewAdminAccountHandler constructs an AdminAccountHandler.
func NewAdminAccountHandler(db *gorm.DB) *AdminAccountHandler {
	return &AdminAccountHandler{db: db}
}

// requireSuperAdmin loads the calling admin and rejects non-super callers.
func (h *AdminAccountHandler) requireSuperAdmin(c *gin.Context) (*models.Admin, bool) {
	admin, ok := currentAdmin(c, h.db)
	if !ok {
		return nil, false
	}
	if !admin.IsSuperAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "super admin required"})
		return nil, false
	}
	return admin, true
}

// createAdminRequest captures the payload for creating an admin account.
type createAdminRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Create inserts a new admin account.
func (h *AdminAccountHandler) Create(c *gin.Context) {
	if _, ok := h.requireSuperAdmin(c); !ok {
		return
	}

	var body createAdminRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	username := strings.TrimSpace(body.Username)
	if username == "" || strings.TrimSpace(body.Password) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	var count int64
	if errCount := h.db.WithContext(c.Request.Context()).Model(&models.Admin{}).
		Where("username = ?", username).Count(&count).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "username already exists"})
		return
	}

	hash, errHash := security.HashPassword(body.Password)
	if errHash != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash password failed"})
		return
	}

	now := time.Now().UTC()
	admin := models.Admin{
		Username:  username,
		Name:      strings.TrimSpace(body.Name),
		Email:     strings.ToLower(strings.TrimSpace(body.Email)),
		Password:  hash,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&admin).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create admin failed"})
		return
	}
	c.JSON(http.StatusCreated, h.formatAdmin(&admin))
}

// List returns all admin accounts.
func (h *AdminAccountHandler) List(c *gin.Context) {
	if _, ok := h.requireSuperAdmin(c); !ok {
		return
	}

	var rows []models.Admin
	if errFind := h.db.WithContext(c.Request.Context()).Order("id ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list admins failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, h.formatAdmin(&row))
	}
	c.JSON(http.StatusOK, gin.H{"admins": out})
}

// updateAdminRequest captures optional fields for admin updates.
type updateAdminRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Active   *bool   `json:"active"`
}

// Update applies field updates to an admin account. Super admin accounts
// cannot be deactivated.
func (h *AdminAccountHandler) Update(c *gin.Context) {
	caller, ok := h.requireSuperAdmin(c)
	if !ok {
		return
	}
	target, ok := h.findAdmin(c)
	if !ok {
		return
	}
	var body updateAdminRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{
		"updated_at": time.Now().UTC(),
	}
	if body.Name != nil {
		updates["name"] = strings.TrimSpace(*body.Name)
	}
	if body.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*body.Email))
	}
	if body.Password != nil {
		if strings.TrimSpace(*body.Password) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "password cannot be empty"})
			return
		}
		hash, errHash := security.HashPassword(*body.Password)
		if errHash != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "hash password failed"})
			return
		}
		updates["password"] = hash
	}
	if body.Active != nil {
		if target.IsSuperAdmin && !*body.Active {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot deactivate super admin"})
			return
		}
		if target.ID == caller.ID && !*body.Active {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot deactivate yourself"})
			return
		}
		updates["active"] = *body.Active
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Admin{}).
		Where("id = ?", target.ID).Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete removes an admin account. The super admin cannot be deleted.
func (h *AdminAccountHandler) Delete(c *gin.Context) {
	caller, ok := h.requireSuperAdmin(c)
	if !ok {
		return
	}
	target, ok := h.findAdmin(c)
	if !ok {
		return
	}
	if target.IsSuperAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete super admin"})
		return
	}
	if target.ID == caller.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete yourself"})
		return
	}

	if errDelete := h.db.WithContext(c.Request.Context()).Delete(&models.Admin{}, target.ID).Error; errDelete != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// changePasswordRequest carries a self-service password change.
type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword lets the calling admin rotate its own password.
func (h *AdminAccountHandler) ChangePassword(c *gin.Context) {
	admin, ok := currentAdmin(c, h.db)
	if !ok {
		return
	}

	var body changePasswordRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(body.NewPassword) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "new password cannot be empty"})
		return
	}
	if !security.CheckPassword(admin.Password, body.CurrentPassword) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "current password is incorrect"})
		return
	}

	hash, errHash := security.HashPassword(body.NewPassword)
	if errHash != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash password failed"})
		return
	}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Admin{}).Where("id = ?", admin.ID).
		Updates(map[string]any{"password": hash, "updated_at": time.Now().UTC()}).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// findAdmin resolves the :id path param to an admin account.
func (h *AdminAccountHandler) findAdmin(c *gin.Context) (*models.Admin, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}
	var admin models.Admin
	if errFind := h.db.WithContext(c.Request.Context()).First(&admin, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return nil, false
	}
	return &admin, true
}

// formatAdmin converts an admin model into a response payload. The password
// hash and TOTP secret are never exposed.
func (h *AdminAccountHandler) formatAdmin(a *models.Admin) gin.H {
	return gin.H{
		"id":             a.ID,
		"username":       a.Username,
		"name":           a.Name,
		"email":          a.Email,
		"active":         a.Active,
		"is_super_admin": a.IsSuperAdmin,
		"totp_enabled":   a.TOTPSecret != "",
		"created_at":     a.CreatedAt,
		"updated_at":     a.UpdatedAt,
	}
}
