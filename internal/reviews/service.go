package reviews

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/buy2brands/wholesale-api/pkg/db"
	"github.com/buy2brands/wholesale-api/pkg/db/models"
	pkgerrors "github.com/buy2brands/wholesale-api/pkg/errors"
	"github.com/buy2brands/wholesale-api/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	minComment = 10
	maxComment = 1000
)

type reviewStore interface {
	Create(ctx context.Context, review *models.Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Review, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Review, error)
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id uuid.UUID) error
	Aggregate(ctx context.Context, productID uuid.UUID) (decimal.Decimal, int, error)
}

type catalog interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	UpdateRating(ctx context.Context, id uuid.UUID, average decimal.Decimal, count int) error
}

// Service manages product reviews and keeps product ratings in step with them.
type Service interface {
	Create(ctx context.Context, userID, productID uuid.UUID, input CreateInput) (*ReviewDTO, error)
	ListForProduct(ctx context.Context, productID uuid.UUID) ([]ReviewDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]ReviewDTO, error)
	Update(ctx context.Context, userID, reviewID uuid.UUID, input UpdateInput) (*ReviewDTO, error)
	Delete(ctx context.Context, userID, reviewID uuid.UUID) error
}

type ServiceParams struct {
	Repo     reviewStore
	Products catalog
	Logger   *logger.Logger
}

type service struct {
	repo     reviewStore
	products catalog
	logg     *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, fmt.Errorf("reviews repository required")
	case params.Products == nil:
		return nil, fmt.Errorf("product catalog required")
	case params.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: params.Repo, products: params.Products, logg: params.Logger}, nil
}

func (s *service) Create(ctx context.Context, userID, productID uuid.UUID, input CreateInput) (*ReviewDTO, error) {
	comment, err := validate(input.Rating, input.Comment)
	if err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	review := &models.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    input.Rating,
		Comment:   comment,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		if db.IsUniqueViolation(err, "uq_reviews_user_product", "reviews.user_id") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "you have already reviewed this product")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
	}
	if err := s.refreshRating(ctx, productID); err != nil {
		return nil, err
	}
	dto := FromModel(review)
	return &dto, nil
}

func (s *service) ListForProduct(ctx context.Context, productID uuid.UUID) ([]ReviewDTO, error) {
	rows, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	return fromModels(rows), nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]ReviewDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	return fromModels(rows), nil
}

func (s *service) Update(ctx context.Context, userID, reviewID uuid.UUID, input UpdateInput) (*ReviewDTO, error) {
	review, err := s.owned(ctx, userID, reviewID)
	if err != nil {
		return nil, err
	}
	rating, comment := review.Rating, review.Comment
	if input.Rating != nil {
		rating = *input.Rating
	}
	if input.Comment != nil {
		comment = *input.Comment
	}
	if comment, err = validate(rating, comment); err != nil {
		return nil, err
	}
	review.Rating, review.Comment = rating, comment

	if err := s.repo.Update(ctx, review); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update review")
	}
	if err := s.refreshRating(ctx, review.ProductID); err != nil {
		return nil, err
	}
	dto := FromModel(review)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, userID, reviewID uuid.UUID) error {
	review, err := s.owned(ctx, userID, reviewID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, review.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete review")
	}
	return s.refreshRating(ctx, review.ProductID)
}

func (s *service) owned(ctx context.Context, userID, reviewID uuid.UUID) (*models.Review, error) {
	review, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load review")
	}
	if review == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
	}
	if review.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not authorized to modify this review")
	}
	return review, nil
}

// refreshRating recomputes the aggregate from every stored review, so
// concurrent mutations converge on the last write.
func (s *service) refreshRating(ctx context.Context, productID uuid.UUID) error {
	avg, count, err := s.repo.Aggregate(ctx, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate ratings")
	}
	if err := s.products.UpdateRating(ctx, productID, avg, count); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product rating")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"product_id":   productID.String(),
		"review_count": count,
	}), "reviews.rating_refreshed")
	return nil
}

func validate(rating int, comment string) (string, error) {
	if rating < 1 || rating > 5 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	comment = strings.TrimSpace(comment)
	if n := utf8.RuneCountInString(comment); n < minComment || n > maxComment {
		return "", pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("comment must be between %d and %d characters", minComment, maxComment))
	}
	return comment, nil
}
