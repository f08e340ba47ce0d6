package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/travel-ease/internal/domain"
)

// PlanUpdate holds every mutable field of a plan. Ownership and creation
// time are never part of an update.
type PlanUpdate struct {
	Title           string
	Plan            string
	PlannedLocation []string
	PlannedDate     time.Time
	ImageURL        string
}

// PlanRepository scopes every lookup by (id, userID). A plan owned by someone
// else is indistinguishable from a missing one: both yield domain.ErrPlanNotFound.
//
// List, Search and ListByDateRange return favorites first, newest first within.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.TravelPlan) (*domain.TravelPlan, error)
	GetByID(ctx context.Context, id, userID string) (*domain.TravelPlan, error)
	List(ctx context.Context, userID string) ([]*domain.TravelPlan, error)
	Update(ctx context.Context, id, userID string, update PlanUpdate) (*domain.TravelPlan, error)
	Delete(ctx context.Context, id, userID string) (*domain.TravelPlan, error)
	SetFavorite(ctx context.Context, id, userID string, isFavorite bool) (*domain.TravelPlan, error)

	// Search matches query as a case-insensitive literal substring of the
	// title, the plan text or any planned location.
	Search(ctx context.Context, userID, query string) ([]*domain.TravelPlan, error)
	// ListByDateRange returns plans with start <= planned_date <= end.
	ListByDateRange(ctx context.Context, userID string, start, end time.Time) ([]*domain.TravelPlan, error)
}
