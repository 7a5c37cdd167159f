// Package lessons provides read access to the lesson catalogue.
package lessons

import (
	"context"

	"github.com/dmitrijs2005/signify/internal/server/models"
)

type Repository interface {
	// Search returns active lessons, newest published first. A non-empty
	// term filters by case-insensitive title substring.
	Search(ctx context.Context, term string, limit int) ([]models.Lesson, error)
}
