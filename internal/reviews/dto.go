package reviews

import (
	"time"

	"github.com/buy2brands/wholesale-api/pkg/db/models"
	"github.com/google/uuid"
)

// CreateInput is the body of a new review; the product comes from the path.
type CreateInput struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required,min=10,max=1000"`
}

// UpdateInput carries the fields an author may change.
type UpdateInput struct {
	Rating  *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,min=10,max=1000"`
}

// ReviewDTO is a review as shown on product pages.
type ReviewDTO struct {
	ID         uuid.UUID `json:"id"`
	ProductID  uuid.UUID `json:"product_id"`
	UserID     uuid.UUID `json:"user_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func FromModel(r *models.Review) ReviewDTO {
	dto := ReviewDTO{
		ID:        r.ID,
		ProductID: r.ProductID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.User != nil {
		dto.AuthorName = r.User.FirstName
		if r.User.LastName != "" {
			// surname initial only
			dto.AuthorName += " " + string([]rune(r.User.LastName)[0]) + "."
		}
	}
	return dto
}

func fromModels(rows []models.Review) []ReviewDTO {
	out := make([]ReviewDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}
