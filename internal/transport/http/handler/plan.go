package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/ErlanBelekov/travel-ease/internal/domain"
	"github.com/ErlanBelekov/travel-ease/internal/identity"
	"github.com/ErlanBelekov/travel-ease/internal/usecase"
	"github.com/gin-gonic/gin"
)

type planUsecaser interface {
	CreatePlan(ctx context.Context, userID string, input usecase.PlanInput) (*domain.TravelPlan, error)
	ListPlans(ctx context.Context, userID string) ([]*domain.TravelPlan, error)
	EditPlan(ctx context.Context, id, userID string, input usecase.PlanInput) (*domain.TravelPlan, error)
	DeletePlan(ctx context.Context, id, userID string) error
	SetFavorite(ctx context.Context, id, userID string, isFavorite *bool) (*domain.TravelPlan, error)
	SearchPlans(ctx context.Context, userID, query string) ([]*domain.TravelPlan, error)
	FilterByDateRange(ctx context.Context, userID, startMS, endMS string) ([]*domain.TravelPlan, error)
}

type PlanHandler struct {
	planUsecase planUsecaser
	logger      *slog.Logger
}

func NewPlanHandler(planUsecase planUsecaser, logger *slog.Logger) *PlanHandler {
	return &PlanHandler{planUsecase: planUsecase, logger: logger.With("component", "plan_handler")}
}

var errBadEpochMillis = errors.New("plannedDate must be epoch milliseconds")

// epochMillis accepts a millisecond timestamp sent either as a JSON number
// or as a numeric string.
type epochMillis int64

var _ json.Unmarshaler = (*epochMillis)(nil)

func (m *epochMillis) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if n, err := strconv.ParseInt(string(data), 10, 64); err == nil {
		*m = epochMillis(n)
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return errBadEpochMillis
	}
	*m = epochMillis(math.Trunc(f))
	return nil
}

type planRequest struct {
	Title           string       `json:"title"`
	Plan            string       `json:"plan"`
	PlannedLocation []string     `json:"plannedLocation"`
	ImageURL        *string      `json:"imageUrl"`
	PlannedDate     *epochMillis `json:"plannedDate"`
}

func (r planRequest) toInput() usecase.PlanInput {
	in := usecase.PlanInput{
		Title:           r.Title,
		Plan:            r.Plan,
		PlannedLocation: r.PlannedLocation,
		ImageURL:        r.ImageURL,
	}
	if r.PlannedDate != nil {
		ms := int64(*r.PlannedDate)
		in.PlannedDate = &ms
	}
	return in
}

type favoriteRequest struct {
	IsFavorite *bool `json:"isFavorite"`
}

type planResponse struct {
	ID              string    `json:"_id"`
	Title           string    `json:"title"`
	Plan            string    `json:"plan"`
	PlannedLocation []string  `json:"plannedLocation"`
	IsFavorite      bool      `json:"isFavorite"`
	UserID          string    `json:"userId"`
	CreatedOn       time.Time `json:"createdOn"`
	ImageURL        string    `json:"imageUrl"`
	PlannedDate     time.Time `json:"plannedDate"`
}

func toPlanResponse(p *domain.TravelPlan) planResponse {
	locations := p.PlannedLocation
	if locations == nil {
		locations = []string{}
	}
	return planResponse{
		ID:              p.ID,
		Title:           p.Title,
		Plan:            p.Plan,
		PlannedLocation: locations,
		IsFavorite:      p.IsFavorite,
		UserID:          p.UserID,
		CreatedOn:       p.CreatedOn,
		ImageURL:        p.ImageURL,
		PlannedDate:     p.PlannedDate,
	}
}

func toPlanResponses(plans []*domain.TravelPlan) []planResponse {
	out := make([]planResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, toPlanResponse(p))
	}
	return out
}

// currentUser reads the identity set by the auth middleware.
func currentUser(c *gin.Context) (string, bool) {
	userID, ok := identity.UserID(c.Request.Context())
	if !ok {
		abortWithMessage(c, http.StatusUnauthorized, errUnauthorized)
	}
	return userID, ok
}

// POST /add-travel-plan
func (h *PlanHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithMessage(c, http.StatusBadRequest, errInvalidBody)
		return
	}

	plan, err := h.planUsecase.CreatePlan(c.Request.Context(), userID, req.toInput())
	if err != nil {
		respondError(c, h.logger, "create plan", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"plan": toPlanResponse(plan), "message": "Added Successfully"})
}

// GET /get-all-plans
func (h *PlanHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	plans, err := h.planUsecase.ListPlans(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, "list plans", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": toPlanResponses(plans)})
}

// PUT /edit-plan/:id
func (h *PlanHandler) Edit(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithMessage(c, http.StatusBadRequest, errInvalidBody)
		return
	}

	planID := c.Param("id")
	plan, err := h.planUsecase.EditPlan(c.Request.Context(), planID, userID, req.toInput())
	if err != nil {
		respondError(c, h.logger, "edit plan", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plan": toPlanResponse(plan), "message": "Update Successful"})
}

// DELETE /delete-plan/:id
func (h *PlanHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.planUsecase.DeletePlan(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, h.logger, "delete plan", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Travel plan deleted successfully"})
}

// PUT /update-is-favorite/:id
func (h *PlanHandler) SetFavorite(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithMessage(c, http.StatusBadRequest, errInvalidBody)
		return
	}

	plan, err := h.planUsecase.SetFavorite(c.Request.Context(), c.Param("id"), userID, req.IsFavorite)
	if err != nil {
		respondError(c, h.logger, "set favorite", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plan": toPlanResponse(plan), "message": "Update successful"})
}

// GET /search?query=
func (h *PlanHandler) Search(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	plans, err := h.planUsecase.SearchPlans(c.Request.Context(), userID, c.Query("query"))
	if err != nil {
		respondError(c, h.logger, "search plans", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": toPlanResponses(plans)})
}

// GET /travel-plans/filter?startDate=&endDate=
func (h *PlanHandler) FilterByDate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	plans, err := h.planUsecase.FilterByDateRange(c.Request.Context(), userID, c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		respondError(c, h.logger, "filter plans", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": toPlanResponses(plans)})
}
