package repository

import (
	"context"
	"errors"

	"github.com/makonda/offering-cards/internal/model"
	"github.com/makonda/offering-cards/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrMemberNotFound = errors.New("member not found")
)

type MemberRepository struct {
	*pg.DB
}

func NewMemberRepository(db *pg.DB) *MemberRepository {
	return &MemberRepository{
		db,
	}
}

func (r *MemberRepository) GetByID(ctx context.Context, id int64) (*model.Member, error) {
	var entity MemberEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	return toMemberModel(&entity), nil
}

func (r *MemberRepository) GetByPhone(ctx context.Context, phone string) (*model.Member, error) {
	var entity MemberEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("phone_number = ?", phone).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	return toMemberModel(&entity), nil
}
