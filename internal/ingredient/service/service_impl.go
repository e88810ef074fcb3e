package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/homefridge/fridgely/internal/ingredient/domain"
	"github.com/homefridge/fridgely/pkg/db"
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
	repo  repository.Repository[domain.Ingredient]
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("ingredient.service"),
		genID: p.GenID,
		repo:  repository.ProvideStore[domain.Ingredient](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateIngredientRequest) (domain.Ingredient, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Ingredient{}, domain.ErrInvalidName
	}
	unit := domain.Unit(strings.TrimSpace(req.StandardUnit))
	if !unit.Valid() {
		return domain.Ingredient{}, domain.ErrInvalidUnit
	}
	if req.ShelfLifeDays <= 0 {
		return domain.Ingredient{}, domain.ErrInvalidShelfLife
	}

	ingredient := domain.Ingredient{
		ID:            s.genID.Generate(),
		Name:          name,
		StandardUnit:  unit,
		ShelfLifeDays: req.ShelfLifeDays,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, &ingredient); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Ingredient{}, domain.ErrNameTaken
		}
		return domain.Ingredient{}, err
	}

	return ingredient, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (domain.Ingredient, error) {
	found, err := s.repo.FindOne(ctx, &domain.Ingredient{ID: id})
	if err != nil {
		return domain.Ingredient{}, err
	}
	if found == nil {
		return domain.Ingredient{}, domain.ErrNotFound
	}
	return *found, nil
}

func (s *Service) List(ctx context.Context, req domain.ListIngredientRequest) ([]domain.Ingredient, error) {
	stmt := s.db.WithContext(ctx).Model(&domain.Ingredient{})
	if search := strings.TrimSpace(req.Search); search != "" {
		stmt = stmt.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var ingredients []domain.Ingredient
	if err := stmt.Order("name ASC").Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}
