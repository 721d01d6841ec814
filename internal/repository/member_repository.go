package repository

import (
	"context"
	"errors"

	"boardengine/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MemberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// AddMember grants a user a role on a board, updating the role when the
// membership already exists.
func (r *MemberRepository) AddMember(ctx context.Context, boardID, userID uuid.UUID, role model.Role, addedBy *uuid.UUID) error {
	member := model.BoardMember{
		BoardID: boardID,
		UserID:  userID,
		Role:    role,
		AddedBy: addedBy,
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.BoardMember
		err := tx.Where("board_id = ? AND user_id = ?", boardID, userID).First(&existing).Error
		if err == nil {
			existing.Role = role
			return tx.Save(&existing).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&member).Error
	})
}

func (r *MemberRepository) RemoveMember(ctx context.Context, boardID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		Delete(&model.BoardMember{}).Error
}

func (r *MemberRepository) GetBoardMembers(ctx context.Context, boardID uuid.UUID) ([]model.BoardMember, error) {
	var members []model.BoardMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("board_id = ?", boardID).
		Find(&members).Error
	return members, err
}

func (r *MemberRepository) GetSharedBoards(ctx context.Context, userID uuid.UUID) ([]model.Board, error) {
	var boards []model.Board
	err := r.db.WithContext(ctx).
		Joins("JOIN board_members ON board_members.board_id = boards.id").
		Where("board_members.user_id = ?", userID).
		Find(&boards).Error
	return boards, err
}

func (r *MemberRepository) GetUserRole(ctx context.Context, boardID, userID uuid.UUID) (model.Role, error) {
	var member model.BoardMember
	err := r.db.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return member.Role, nil
}

// CheckAccess reports whether a user may act on a board at the required
// role. The owner always has full access; otherwise membership decides.
func (r *MemberRepository) CheckAccess(ctx context.Context, boardID, userID uuid.UUID, requiredRole model.Role) (bool, error) {
	var board model.Board
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", boardID, userID).
		First(&board).Error
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	role, err := r.GetUserRole(ctx, boardID, userID)
	if err != nil {
		return false, err
	}
	if role == "" {
		return false, nil
	}
	if requiredRole == model.RoleViewer {
		return true, nil
	}
	return role == model.RoleEditor, nil
}
