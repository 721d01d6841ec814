package handler

import (
	"net/http"

	"boardengine/internal/model"
	"boardengine/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type GroupHandler struct {
	groupRepo *repository.GroupRepository
	guard     boardGuard
}

func NewGroupHandler(groupRepo *repository.GroupRepository, boardRepo *repository.BoardRepository, memberRepo *repository.MemberRepository) *GroupHandler {
	return &GroupHandler{
		groupRepo: groupRepo,
		guard:     boardGuard{boards: boardRepo, members: memberRepo},
	}
}

type CreateGroupRequest struct {
	Name     string `json:"name" binding:"required"`
	Color    string `json:"color" binding:"required"`
	Position *int   `json:"position"`
}

type UpdateGroupRequest struct {
	Name     *string `json:"name"`
	Color    *string `json:"color"`
	Position *int    `json:"position"`
}

// Create adds a group to a board.
func (h *GroupHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, ok := h.guard.require(c, boardID, userID, model.RoleEditor); !ok {
		return
	}

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	group := &model.BoardGroup{
		BoardID: boardID,
		Name:    req.Name,
		Color:   req.Color,
	}
	if req.Position != nil {
		group.Position = *req.Position
	}

	if err := h.groupRepo.Create(c.Request.Context(), group); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, group)
}

// GetByBoardID lists a board's groups in position order.
func (h *GroupHandler) GetByBoardID(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, ok := h.guard.require(c, boardID, userID, model.RoleViewer); !ok {
		return
	}

	groups, err := h.groupRepo.GetByBoardID(c.Request.Context(), boardID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, groups)
}

func (h *GroupHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	group, err := h.groupRepo.GetByID(c.Request.Context(), groupID)
	if err != nil {
		respondError(c, err)
		return
	}

	if _, ok := h.guard.require(c, group.BoardID, userID, model.RoleEditor); !ok {
		return
	}

	var req UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Name != nil {
		group.Name = *req.Name
	}
	if req.Color != nil {
		group.Color = *req.Color
	}
	if req.Position != nil {
		group.Position = *req.Position
	}

	if err := h.groupRepo.Update(c.Request.Context(), group); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, group)
}

// Delete removes a group. Its items are reassigned to the group named by
// the reassign_to query parameter, or left ungrouped when absent. Items
// are never deleted with their group.
func (h *GroupHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	group, err := h.groupRepo.GetByID(c.Request.Context(), groupID)
	if err != nil {
		respondError(c, err)
		return
	}

	if _, ok := h.guard.require(c, group.BoardID, userID, model.RoleEditor); !ok {
		return
	}

	var reassignTo *uuid.UUID
	if raw := c.Query("reassign_to"); raw != "" {
		target, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reassign_to format"})
			return
		}
		reassignTo = &target
	}

	if err := h.groupRepo.Delete(c.Request.Context(), groupID, reassignTo); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Group deleted successfully"})
}
