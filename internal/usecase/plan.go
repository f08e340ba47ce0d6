package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ErlanBelekov/travel-ease/internal/domain"
	"github.com/ErlanBelekov/travel-ease/internal/metrics"
	"github.com/ErlanBelekov/travel-ease/internal/repository"
)

const (
	msgInvalidPlannedDate = "Planned date is not a valid date"
	msgFavoriteRequired   = "isFavorite is required"
	msgQueryRequired      = "query is required"
	msgDateRangeRequired  = "startDate and endDate are required"
	msgDateRangeMalformed = "startDate and endDate must be epoch milliseconds"
)

type PlanUsecase struct {
	plans          repository.PlanRepository
	images         repository.ImageStore
	placeholderURL string
	logger         *slog.Logger
}

func NewPlanUsecase(plans repository.PlanRepository, images repository.ImageStore, placeholderURL string, logger *slog.Logger) *PlanUsecase {
	return &PlanUsecase{
		plans:          plans,
		images:         images,
		placeholderURL: placeholderURL,
		logger:         logger.With("component", "plan_usecase"),
	}
}

// PlanInput carries the client-editable fields of a plan. A nil
// PlannedLocation, ImageURL or PlannedDate means the field was not sent at all.
type PlanInput struct {
	Title           string
	Plan            string
	PlannedLocation []string
	ImageURL        *string
	PlannedDate     *int64 // epoch milliseconds
}

// CreatePlan requires imageUrl to be sent, but an empty one is allowed and
// stored as the placeholder image.
func (u *PlanUsecase) CreatePlan(ctx context.Context, userID string, input PlanInput) (*domain.TravelPlan, error) {
	if input.ImageURL == nil {
		return nil, domain.NewValidationError(msgAllFieldsRequired)
	}
	plannedDate, err := validatePlanInput(input)
	if err != nil {
		return nil, err
	}

	created, err := u.plans.Create(ctx, &domain.TravelPlan{
		UserID:          userID,
		Title:           input.Title,
		Plan:            input.Plan,
		PlannedLocation: input.PlannedLocation,
		PlannedDate:     plannedDate,
		ImageURL:        u.imageOrPlaceholder(input.ImageURL),
	})
	if err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}
	metrics.PlansCreatedTotal.Inc()

	return created, nil
}

func (u *PlanUsecase) ListPlans(ctx context.Context, userID string) ([]*domain.TravelPlan, error) {
	plans, err := u.plans.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

// EditPlan overwrites every mutable field. An empty image URL is replaced
// by the placeholder image.
func (u *PlanUsecase) EditPlan(ctx context.Context, id, userID string, input PlanInput) (*domain.TravelPlan, error) {
	plannedDate, err := validatePlanInput(input)
	if err != nil {
		return nil, err
	}

	updated, err := u.plans.Update(ctx, id, userID, repository.PlanUpdate{
		Title:           input.Title,
		Plan:            input.Plan,
		PlannedLocation: input.PlannedLocation,
		PlannedDate:     plannedDate,
		ImageURL:        u.imageOrPlaceholder(input.ImageURL),
	})
	if err != nil {
		return nil, fmt.Errorf("update plan: %w", err)
	}
	return updated, nil
}

// DeletePlan removes the plan, then tries to remove its image. The plan
// deletion stands even if the image cannot be removed.
func (u *PlanUsecase) DeletePlan(ctx context.Context, id, userID string) error {
	deleted, err := u.plans.Delete(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	metrics.PlansDeletedTotal.Inc()

	u.removeImage(ctx, deleted)
	return nil
}

func (u *PlanUsecase) imageOrPlaceholder(imageURL *string) string {
	if imageURL == nil || strings.TrimSpace(*imageURL) == "" {
		return u.placeholderURL
	}
	return strings.TrimSpace(*imageURL)
}

func (u *PlanUsecase) removeImage(ctx context.Context, plan *domain.TravelPlan) {
	if plan.ImageURL == "" || plan.ImageURL == u.placeholderURL {
		return
	}
	name := imageNameFromURL(plan.ImageURL)
	if name == "" {
		return
	}

	err := u.images.Delete(ctx, name)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrImageNotFound):
		u.logger.DebugContext(ctx, "plan image already gone", "plan_id", plan.ID, "image", name)
	default:
		metrics.ImageCleanupFailuresTotal.Inc()
		u.logger.WarnContext(ctx, "delete plan image", "plan_id", plan.ID, "image", name, "error", err)
	}
}

func (u *PlanUsecase) SetFavorite(ctx context.Context, id, userID string, isFavorite *bool) (*domain.TravelPlan, error) {
	if isFavorite == nil {
		return nil, domain.NewValidationError(msgFavoriteRequired)
	}

	updated, err := u.plans.SetFavorite(ctx, id, userID, *isFavorite)
	if err != nil {
		return nil, fmt.Errorf("set favorite: %w", err)
	}
	return updated, nil
}

func (u *PlanUsecase) SearchPlans(ctx context.Context, userID, query string) ([]*domain.TravelPlan, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.NewValidationError(msgQueryRequired)
	}

	plans, err := u.plans.Search(ctx, userID, query)
	if err != nil {
		return nil, fmt.Errorf("search plans: %w", err)
	}
	return plans, nil
}

// FilterByDateRange returns plans whose planned date lies in [start, end].
// Both bounds are epoch milliseconds; missing or malformed bounds are
// rejected rather than compared as invalid dates.
func (u *PlanUsecase) FilterByDateRange(ctx context.Context, userID, startMS, endMS string) ([]*domain.TravelPlan, error) {
	startMS, endMS = strings.TrimSpace(startMS), strings.TrimSpace(endMS)
	if startMS == "" || endMS == "" {
		return nil, domain.NewValidationError(msgDateRangeRequired)
	}

	start, ok := parseEpochMillis(startMS)
	if !ok {
		return nil, domain.NewValidationError(msgDateRangeMalformed)
	}
	end, ok := parseEpochMillis(endMS)
	if !ok {
		return nil, domain.NewValidationError(msgDateRangeMalformed)
	}

	if start.After(end) {
		return []*domain.TravelPlan{}, nil
	}

	plans, err := u.plans.ListByDateRange(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("filter plans by date: %w", err)
	}
	return plans, nil
}

// validatePlanInput checks the fields required by both create and edit and
// returns the parsed planned date.
func validatePlanInput(input PlanInput) (time.Time, error) {
	if strings.TrimSpace(input.Title) == "" ||
		strings.TrimSpace(input.Plan) == "" ||
		input.PlannedLocation == nil ||
		input.PlannedDate == nil {
		return time.Time{}, domain.NewValidationError(msgAllFieldsRequired)
	}

	plannedDate, ok := domain.TimeFromEpochMillis(*input.PlannedDate)
	if !ok {
		return time.Time{}, domain.NewValidationError(msgInvalidPlannedDate)
	}
	return plannedDate, nil
}

func parseEpochMillis(s string) (time.Time, bool) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return domain.TimeFromEpochMillis(ms)
}
