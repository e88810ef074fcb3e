package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/homefridge/fridgely/internal/fridge/domain"
	"github.com/homefridge/fridgely/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  repository.Repository[domain.Fridge]
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("fridge.service"),
		genID: p.GenID,
		repo:  repository.ProvideStore[domain.Fridge](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateFridgeRequest) (domain.Fridge, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Fridge{}, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	fridge := domain.Fridge{
		ID:        s.genID.Generate(),
		Name:      name,
		CreatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&fridge).Error; err != nil {
			return err
		}
		return tx.Create(&domain.FridgeAccess{
			FridgeID:  fridge.ID,
			UserID:    req.UserID,
			Role:      domain.RoleOwner,
			CreatedAt: now,
		}).Error
	})
	if err != nil {
		return domain.Fridge{}, err
	}

	return fridge, nil
}

func (s *Service) ListForUser(ctx context.Context, userID snowflake.ID) ([]domain.Fridge, error) {
	var fridges []domain.Fridge
	err := s.db.WithContext(ctx).
		Model(&domain.Fridge{}).
		Joins("JOIN fridge_access ON fridge_access.fridge_id = fridges.id").
		Where("fridge_access.user_id = ?", userID).
		Order("fridges.created_at ASC").
		Find(&fridges).Error
	if err != nil {
		return nil, err
	}
	return fridges, nil
}

func (s *Service) AddMember(ctx context.Context, req domain.AddMemberRequest) error {
	if err := s.CheckOwner(ctx, req.FridgeID, req.UserID); err != nil {
		return err
	}

	var count int64
	err := s.db.WithContext(ctx).
		Model(&domain.FridgeAccess{}).
		Where("fridge_id = ? AND user_id = ?", req.FridgeID, req.MemberID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrAlreadyMember
	}

	return s.db.WithContext(ctx).Create(&domain.FridgeAccess{
		FridgeID:  req.FridgeID,
		UserID:    req.MemberID,
		Role:      domain.RoleMember,
		CreatedAt: time.Now().UTC(),
	}).Error
}

func (s *Service) RemoveMember(ctx context.Context, req domain.RemoveMemberRequest) error {
	if err := s.CheckOwner(ctx, req.FridgeID, req.UserID); err != nil {
		return err
	}

	return s.db.WithContext(ctx).
		Where("fridge_id = ? AND user_id = ? AND role = ?", req.FridgeID, req.MemberID, domain.RoleMember).
		Delete(&domain.FridgeAccess{}).Error
}

func (s *Service) CheckAccess(ctx context.Context, fridgeID, userID snowflake.ID) (domain.Role, error) {
	var access domain.FridgeAccess
	err := s.db.WithContext(ctx).
		Where("fridge_id = ? AND user_id = ?", fridgeID, userID).
		Take(&access).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrNoAccess
		}
		return "", err
	}
	return access.Role, nil
}

func (s *Service) CheckOwner(ctx context.Context, fridgeID, userID snowflake.ID) error {
	role, err := s.CheckAccess(ctx, fridgeID, userID)
	if err != nil {
		return err
	}
	if role != domain.RoleOwner {
		return domain.ErrNotOwner
	}
	return nil
}

func (s *Service) MemberIDs(ctx context.Context, fridgeID snowflake.ID) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := s.db.WithContext(ctx).
		Model(&domain.FridgeAccess{}).
		Where("fridge_id = ?", fridgeID).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
