package handler

import (
	"net/http"

	"boardengine/internal/apperr"
	"boardengine/internal/middleware"
	"boardengine/internal/model"
	"boardengine/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// currentUser pulls the authenticated user id set by the auth middleware.
// A missing id means the route was wired without the middleware.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return uuid.Nil, false
	}
	return userID, true
}

// parseIDParam parses a uuid path parameter, responding 400 on garbage.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " format"})
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps engine errors onto HTTP statuses. Unclassified errors
// deliberately leak no detail.
func respondError(c *gin.Context, err error) {
	if kind, ok := apperr.KindOf(err); ok {
		status := http.StatusInternalServerError
		switch kind {
		case apperr.KindValidation:
			status = http.StatusBadRequest
		case apperr.KindNotFound:
			status = http.StatusNotFound
		case apperr.KindAuthorization:
			status = http.StatusForbidden
		case apperr.KindConflict:
			status = http.StatusConflict
		case apperr.KindTransientStore:
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": apperr.Reason(err)})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// boardGuard bundles the owner-or-member access check shared by every
// board-scoped handler.
type boardGuard struct {
	boards  *repository.BoardRepository
	members *repository.MemberRepository
}

// require loads the board and verifies the user holds at least the given
// role on it. On failure it has already written the response.
func (g boardGuard) require(c *gin.Context, boardID, userID uuid.UUID, role model.Role) (*model.Board, bool) {
	board, err := g.boards.GetByID(c.Request.Context(), boardID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}

	hasAccess, err := g.members.CheckAccess(c.Request.Context(), boardID, userID, role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check access"})
		return nil, false
	}
	if !hasAccess {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to access this board"})
		return nil, false
	}
	return board, true
}
