package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ErlanBelekov/travel-ease/internal/domain"
	"github.com/ErlanBelekov/travel-ease/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres timestamps start at 4713 BC, later than the earliest epoch
// millisecond the API accepts.
const msgPlannedDateOutOfRange = "Planned date is out of range"

type PlanRepository struct {
	pool *pgxpool.Pool
}

func NewPlanRepository(pool *pgxpool.Pool) *PlanRepository {
	return &PlanRepository{pool: pool}
}

const (
	planColumns = `id, user_id, title, plan, planned_location, planned_date,
		image_url, is_favorite, created_on`
	planOrder = `ORDER BY is_favorite DESC, created_on DESC`
)

func (r *PlanRepository) Create(ctx context.Context, plan *domain.TravelPlan) (*domain.TravelPlan, error) {
	query := `
		INSERT INTO travel_plans (user_id, title, plan, planned_location, planned_date, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + planColumns

	row := r.pool.QueryRow(ctx, query,
		plan.UserID,
		plan.Title,
		plan.Plan,
		locations(plan.PlannedLocation),
		plan.PlannedDate,
		plan.ImageURL,
	)
	return scanPlan(row)
}

func (r *PlanRepository) GetByID(ctx context.Context, id, userID string) (*domain.TravelPlan, error) {
	if !validIDs(id, userID) {
		return nil, domain.ErrPlanNotFound
	}
	row := r.pool.QueryRow(ctx,
		`SELECT `+planColumns+` FROM travel_plans WHERE id = $1 AND user_id = $2`, id, userID)
	return scanPlan(row)
}

func (r *PlanRepository) List(ctx context.Context, userID string) ([]*domain.TravelPlan, error) {
	if !validIDs(userID) {
		return []*domain.TravelPlan{}, nil
	}
	return r.query(ctx, "list plans",
		`SELECT `+planColumns+` FROM travel_plans WHERE user_id = $1 `+planOrder, userID)
}

func (r *PlanRepository) Update(ctx context.Context, id, userID string, u repository.PlanUpdate) (*domain.TravelPlan, error) {
	if !validIDs(id, userID) {
		return nil, domain.ErrPlanNotFound
	}
	query := `
		UPDATE travel_plans
		SET    title            = $3,
		       plan             = $4,
		       planned_location = $5,
		       planned_date     = $6,
		       image_url        = $7
		WHERE  id = $1 AND user_id = $2
		RETURNING ` + planColumns

	row := r.pool.QueryRow(ctx, query,
		id, userID,
		u.Title,
		u.Plan,
		locations(u.PlannedLocation),
		u.PlannedDate,
		u.ImageURL,
	)
	return scanPlan(row)
}

func (r *PlanRepository) Delete(ctx context.Context, id, userID string) (*domain.TravelPlan, error) {
	if !validIDs(id, userID) {
		return nil, domain.ErrPlanNotFound
	}
	row := r.pool.QueryRow(ctx,
		`DELETE FROM travel_plans WHERE id = $1 AND user_id = $2 RETURNING `+planColumns, id, userID)
	return scanPlan(row)
}

func (r *PlanRepository) SetFavorite(ctx context.Context, id, userID string, isFavorite bool) (*domain.TravelPlan, error) {
	if !validIDs(id, userID) {
		return nil, domain.ErrPlanNotFound
	}
	row := r.pool.QueryRow(ctx,
		`UPDATE travel_plans SET is_favorite = $3
		WHERE id = $1 AND user_id = $2
		RETURNING `+planColumns, id, userID, isFavorite)
	return scanPlan(row)
}

func (r *PlanRepository) Search(ctx context.Context, userID, query string) ([]*domain.TravelPlan, error) {
	if !validIDs(userID) {
		return []*domain.TravelPlan{}, nil
	}
	sql := `
		SELECT ` + planColumns + `
		FROM   travel_plans
		WHERE  user_id = $1
		  AND (title ILIKE $2 ESCAPE '\'
		       OR plan ILIKE $2 ESCAPE '\'
		       OR EXISTS (SELECT 1 FROM unnest(planned_location) AS loc
		                  WHERE loc ILIKE $2 ESCAPE '\'))
		` + planOrder
	return r.query(ctx, "search plans", sql, userID, "%"+escapeLike(query)+"%")
}

func (r *PlanRepository) ListByDateRange(ctx context.Context, userID string, start, end time.Time) ([]*domain.TravelPlan, error) {
	if !validIDs(userID) {
		return []*domain.TravelPlan{}, nil
	}
	return r.query(ctx, "list plans by date",
		`SELECT `+planColumns+` FROM travel_plans
		WHERE user_id = $1 AND planned_date BETWEEN $2 AND $3 `+planOrder,
		userID, start, end)
}

func (r *PlanRepository) query(ctx context.Context, op, sql string, args ...any) ([]*domain.TravelPlan, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	plans := []*domain.TravelPlan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plans, nil
}

func scanPlan(row rowScanner) (*domain.TravelPlan, error) {
	var p domain.TravelPlan
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Title,
		&p.Plan,
		&p.PlannedLocation,
		&p.PlannedDate,
		&p.ImageURL,
		&p.IsFavorite,
		&p.CreatedOn,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlanNotFound
		}
		if isDatetimeOverflow(err) {
			return nil, domain.NewValidationError(msgPlannedDateOutOfRange)
		}
		return nil, fmt.Errorf("scan plan: %w", err)
	}
	p.PlannedDate = p.PlannedDate.UTC()
	p.CreatedOn = p.CreatedOn.UTC()
	if p.PlannedLocation == nil {
		p.PlannedLocation = []string{}
	}
	return &p, nil
}

// validIDs reports whether every id is a UUID. A malformed id can never
// match a row, and Postgres would reject it with a cast error.
func validIDs(ids ...string) bool {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return false
		}
	}
	return true
}

func locations(l []string) []string {
	if l == nil {
		return []string{}
	}
	return l
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
