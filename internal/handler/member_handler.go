package handler

import (
	"net/http"

	"boardengine/internal/model"
	"boardengine/internal/repository"

	"github.com/gin-gonic/gin"
)

// MemberHandler manages board sharing: granting, changing and revoking
// member access. Only the board owner may grant or revoke.
type MemberHandler struct {
	memberRepo *repository.MemberRepository
	userRepo   repository.UserRepositoryInterface
	boardRepo  *repository.BoardRepository
	guard      boardGuard
}

func NewMemberHandler(
	memberRepo *repository.MemberRepository,
	userRepo repository.UserRepositoryInterface,
	boardRepo *repository.BoardRepository,
) *MemberHandler {
	return &MemberHandler{
		memberRepo: memberRepo,
		userRepo:   userRepo,
		boardRepo:  boardRepo,
		guard:      boardGuard{boards: boardRepo, members: memberRepo},
	}
}

type ShareBoardRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,oneof=viewer editor"`
}

type MemberResponse struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	IsOwner bool   `json:"is_owner"`
}

// Share grants a user access to a board by email. Sharing with a user
// who already has access updates their role instead.
func (h *MemberHandler) Share(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	board, err := h.boardRepo.GetByID(c.Request.Context(), boardID)
	if err != nil {
		respondError(c, err)
		return
	}
	if board.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the board owner can share it"})
		return
	}

	var req ShareBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	target, err := h.userRepo.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if target.ID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot share a board with yourself"})
		return
	}

	if err := h.memberRepo.AddMember(c.Request.Context(), boardID, target.ID, model.Role(req.Role), &userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Board shared successfully",
		"member": MemberResponse{
			UserID: target.ID.String(),
			Email:  target.Email,
			Name:   target.FullName,
			Role:   req.Role,
		},
	})
}

// Remove revokes a member's access to a board.
func (h *MemberHandler) Remove(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	targetUserID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	board, err := h.boardRepo.GetByID(c.Request.Context(), boardID)
	if err != nil {
		respondError(c, err)
		return
	}
	if board.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the board owner can remove access"})
		return
	}

	if err := h.memberRepo.RemoveMember(c.Request.Context(), boardID, targetUserID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Board access removed successfully"})
}

// List returns everyone with access to a board: the owner first, then
// members in the order they were added.
func (h *MemberHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	board, ok := h.guard.require(c, boardID, userID, model.RoleViewer)
	if !ok {
		return
	}

	members, err := h.memberRepo.GetBoardMembers(c.Request.Context(), boardID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]MemberResponse, 0, len(members)+1)
	owner, err := h.userRepo.GetByID(c.Request.Context(), board.OwnerID)
	if err != nil {
		respondError(c, err)
		return
	}
	if owner != nil {
		response = append(response, MemberResponse{
			UserID:  owner.ID.String(),
			Email:   owner.Email,
			Name:    owner.FullName,
			Role:    "owner",
			IsOwner: true,
		})
	}
	for _, member := range members {
		response = append(response, MemberResponse{
			UserID: member.UserID.String(),
			Email:  member.User.Email,
			Name:   member.User.FullName,
			Role:   string(member.Role),
		})
	}

	c.JSON(http.StatusOK, response)
}
