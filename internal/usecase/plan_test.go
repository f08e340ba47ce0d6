package usecase_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/ErlanBelekov/travel-ease/internal/domain"
	"github.com/ErlanBelekov/travel-ease/internal/repository"
	"github.com/ErlanBelekov/travel-ease/internal/usecase"
)

// ---- fakes ----

type fakePlanRepo struct {
	create          func(ctx context.Context, plan *domain.TravelPlan) (*domain.TravelPlan, error)
	getByID         func(ctx context.Context, id, userID string) (*domain.TravelPlan, error)
	list            func(ctx context.Context, userID string) ([]*domain.TravelPlan, error)
	update          func(ctx context.Context, id, userID string, u repository.PlanUpdate) (*domain.TravelPlan, error)
	delete          func(ctx context.Context, id, userID string) (*domain.TravelPlan, error)
	setFavorite     func(ctx context.Context, id, userID string, isFavorite bool) (*domain.TravelPlan, error)
	search          func(ctx context.Context, userID, query string) ([]*domain.TravelPlan, error)
	listByDateRange func(ctx context.Context, userID string, start, end time.Time) ([]*domain.TravelPlan, error)
}

func (r *fakePlanRepo) Create(ctx context.Context, plan *domain.TravelPlan) (*domain.TravelPlan, error) {
	return r.create(ctx, plan)
}

func (r *fakePlanRepo) GetByID(ctx context.Context, id, userID string) (*domain.TravelPlan, error) {
	return r.getByID(ctx, id, userID)
}

func (r *fakePlanRepo) List(ctx context.Context, userID string) ([]*domain.TravelPlan, error) {
	return r.list(ctx, userID)
}

func (r *fakePlanRepo) Update(ctx context.Context, id, userID string, u repository.PlanUpdate) (*domain.TravelPlan, error) {
	return r.update(ctx, id, userID, u)
}

func (r *fakePlanRepo) Delete(ctx context.Context, id, userID string) (*domain.TravelPlan, error) {
	return r.delete(ctx, id, userID)
}

func (r *fakePlanRepo) SetFavorite(ctx context.Context, id, userID string, isFavorite bool) (*domain.TravelPlan, error) {
	return r.setFavorite(ctx, id, userID, isFavorite)
}

func (r *fakePlanRepo) Search(ctx context.Context, userID, query string) ([]*domain.TravelPlan, error) {
	return r.search(ctx, userID, query)
}

func (r *fakePlanRepo) ListByDateRange(ctx context.Context, userID string, start, end time.Time) ([]*domain.TravelPlan, error) {
	return r.listByDateRange(ctx, userID, start, end)
}

type fakeImageStore struct {
	save   func(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error)
	delete func(ctx context.Context, name string) error
}

func (s *fakeImageStore) Save(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error) {
	return s.save(ctx, name, contentType, r, size)
}

func (s *fakeImageStore) Delete(ctx context.Context, name string) error {
	return s.delete(ctx, name)
}

// ---- helpers ----

const (
	testPlaceholder = "http://localhost:8000/assets/placeholder.png"
	ownerID         = "user-1"
)

func newPlanUsecase(repo *fakePlanRepo, images *fakeImageStore) *usecase.PlanUsecase {
	if images == nil {
		images = &fakeImageStore{}
	}
	return usecase.NewPlanUsecase(repo, images, testPlaceholder, discardLogger())
}

func ms(v int64) *int64 { return &v }

func str(s string) *string { return &s }

func validPlanInput() usecase.PlanInput {
	return usecase.PlanInput{
		Title:           "Kyoto",
		Plan:            "Temples and tea",
		PlannedLocation: []string{"Kyoto", "Nara"},
		ImageURL:        str("http://localhost:8000/uploads/1700000000000-abcd1234.jpg"),
		PlannedDate:     ms(1_767_225_600_000),
	}
}

// ---- CreatePlan ----

func TestCreatePlan_PersistsOwnedPlanWithExactDate(t *testing.T) {
	var stored *domain.TravelPlan
	repo := &fakePlanRepo{create: func(_ context.Context, p *domain.TravelPlan) (*domain.TravelPlan, error) {
		stored = p
		out := *p
		out.ID = "plan-1"
		return &out, nil
	}}

	got, err := newPlanUsecase(repo, nil).CreatePlan(context.Background(), ownerID, validPlanInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stored.UserID != ownerID {
		t.Errorf("owner = %q, want %q", stored.UserID, ownerID)
	}
	if stored.IsFavorite {
		t.Error("new plans must not start as favorites")
	}
	if got.PlannedDate.UnixMilli() != 1_767_225_600_000 {
		t.Errorf("planned date = %d ms, want round trip", got.PlannedDate.UnixMilli())
	}
	if got.PlannedDate.Location() != time.UTC {
		t.Errorf("planned date location = %v, want UTC", got.PlannedDate.Location())
	}
}

func TestCreatePlan_EmptyLocationsAccepted(t *testing.T) {
	repo := &fakePlanRepo{create: func(_ context.Context, p *domain.TravelPlan) (*domain.TravelPlan, error) {
		return p, nil
	}}
	in := validPlanInput()
	in.PlannedLocation = []string{}

	if _, err := newPlanUsecase(repo, nil).CreatePlan(context.Background(), ownerID, in); err != nil {
		t.Errorf("empty location list should be accepted, got %v", err)
	}
}

func TestCreatePlan_EmptyImage_StoresPlaceholder(t *testing.T) {
	var stored *domain.TravelPlan
	repo := &fakePlanRepo{create: func(_ context.Context, p *domain.TravelPlan) (*domain.TravelPlan, error) {
		stored = p
		return p, nil
	}}
	in := validPlanInput()
	in.ImageURL = str("")

	if _, err := newPlanUsecase(repo, nil).CreatePlan(context.Background(), ownerID, in); err != nil {
		t.Fatalf("empty imageUrl should be accepted, got %v", err)
	}
	if stored.ImageURL != testPlaceholder {
		t.Errorf("image = %q, want placeholder", stored.ImageURL)
	}
}

func TestCreatePlan_MissingField_ReturnsValidationError(t *testing.T) {
	mutations := map[string]func(*usecase.PlanInput){
		"title":    func(in *usecase.PlanInput) { in.Title = "" },
		"plan":     func(in *usecase.PlanInput) { in.Plan = " " },
		"location": func(in *usecase.PlanInput) { in.PlannedLocation = nil },
		"image":    func(in *usecase.PlanInput) { in.ImageURL = nil },
		"date":     func(in *usecase.PlanInput) { in.PlannedDate = nil },
	}
	repo := &fakePlanRepo{} // any repo call would panic on the nil func

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			in := validPlanInput()
			mutate(&in)
			_, err := newPlanUsecase(repo, nil).CreatePlan(context.Background(), ownerID, in)
			if got := validationMessage(t, err); got != "All fields are required" {
				t.Errorf("message = %q", got)
			}
		})
	}
}

func TestCreatePlan_OutOfRangeDate_ReturnsValidationError(t *testing.T) {
	in := validPlanInput()
	in.PlannedDate = ms(8_640_000_000_000_001)

	_, err := newPlanUsecase(&fakePlanRepo{}, nil).CreatePlan(context.Background(), ownerID, in)
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("want ErrValidation, got %v", err)
	}
}

// ---- EditPlan ----

func TestEditPlan_EmptyImage_UsesPlaceholder(t *testing.T) {
	var got repository.PlanUpdate
	repo := &fakePlanRepo{update: func(_ context.Context, id, userID string, u repository.PlanUpdate) (*domain.TravelPlan, error) {
		if id != "plan-1" || userID != ownerID {
			t.Errorf("update scoped to (%q, %q)", id, userID)
		}
		got = u
		return &domain.TravelPlan{ID: id, UserID: userID, ImageURL: u.ImageURL}, nil
	}}
	in := validPlanInput()
	in.ImageURL = str("")

	if _, err := newPlanUsecase(repo, nil).EditPlan(context.Background(), "plan-1", ownerID, in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ImageURL != testPlaceholder {
		t.Errorf("image = %q, want placeholder", got.ImageURL)
	}
}

func TestEditPlan_NotOwned_ReturnsErrPlanNotFound(t *testing.T) {
	repo := &fakePlanRepo{update: func(context.Context, string, string, repository.PlanUpdate) (*domain.TravelPlan, error) {
		return nil, domain.ErrPlanNotFound
	}}

	_, err := newPlanUsecase(repo, nil).EditPlan(context.Background(), "plan-1", "someone-else", validPlanInput())
	if !errors.Is(err, domain.ErrPlanNotFound) {
		t.Errorf("want ErrPlanNotFound, got %v", err)
	}
}

// ---- DeletePlan ----

func TestDeletePlan_RemovesImageByBasename(t *testing.T) {
	repo := &fakePlanRepo{delete: func(_ context.Context, id, _ string) (*domain.TravelPlan, error) {
		return &domain.TravelPlan{ID: id, ImageURL: "http://cdn.example.com/uploads/1700-aa.png?v=2"}, nil
	}}
	var deleted string
	images := &fakeImageStore{delete: func(_ context.Context, name string) error {
		deleted = name
		return nil
	}}

	if err := newPlanUsecase(repo, images).DeletePlan(context.Background(), "plan-1", ownerID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != "1700-aa.png" {
		t.Errorf("deleted image %q, want basename", deleted)
	}
}

func TestDeletePlan_ImageCleanupFailure_IsNotSurfaced(t *testing.T) {
	repo := &fakePlanRepo{delete: func(_ context.Context, id, _ string) (*domain.TravelPlan, error) {
		return &domain.TravelPlan{ID: id, ImageURL: "http://localhost:8000/uploads/x.png"}, nil
	}}
	images := &fakeImageStore{delete: func(context.Context, string) error { return errors.New("disk on fire") }}

	if err := newPlanUsecase(repo, images).DeletePlan(context.Background(), "plan-1", ownerID); err != nil {
		t.Errorf("cleanup failure leaked to caller: %v", err)
	}
}

func TestDeletePlan_PlaceholderImage_IsKept(t *testing.T) {
	repo := &fakePlanRepo{delete: func(_ context.Context, id, _ string) (*domain.TravelPlan, error) {
		return &domain.TravelPlan{ID: id, ImageURL: testPlaceholder}, nil
	}}
	images := &fakeImageStore{delete: func(context.Context, string) error {
		t.Error("placeholder image must never be deleted")
		return nil
	}}

	if err := newPlanUsecase(repo, images).DeletePlan(context.Background(), "plan-1", ownerID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeletePlan_NotOwned_LeavesImageAlone(t *testing.T) {
	repo := &fakePlanRepo{delete: func(context.Context, string, string) (*domain.TravelPlan, error) {
		return nil, domain.ErrPlanNotFound
	}}

	err := newPlanUsecase(repo, nil).DeletePlan(context.Background(), "plan-1", "someone-else")
	if !errors.Is(err, domain.ErrPlanNotFound) {
		t.Errorf("want ErrPlanNotFound, got %v", err)
	}
}

// ---- SetFavorite ----

func TestSetFavorite_MissingFlag_ReturnsValidationError(t *testing.T) {
	_, err := newPlanUsecase(&fakePlanRepo{}, nil).SetFavorite(context.Background(), "plan-1", ownerID, nil)
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("want ErrValidation, got %v", err)
	}
}

func TestSetFavorite_PassesFlagThrough(t *testing.T) {
	var got bool
	repo := &fakePlanRepo{setFavorite: func(_ context.Context, id, _ string, fav bool) (*domain.TravelPlan, error) {
		got = fav
		return &domain.TravelPlan{ID: id, IsFavorite: fav}, nil
	}}
	fav := true

	plan, err := newPlanUsecase(repo, nil).SetFavorite(context.Background(), "plan-1", ownerID, &fav)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got || !plan.IsFavorite {
		t.Error("favorite flag not applied")
	}
}

// ---- SearchPlans ----

func TestSearchPlans_EmptyQuery_ReturnsValidationError(t *testing.T) {
	_, err := newPlanUsecase(&fakePlanRepo{}, nil).SearchPlans(context.Background(), ownerID, "   ")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("want ErrValidation, got %v", err)
	}
}

func TestSearchPlans_TrimsQuery(t *testing.T) {
	var got string
	repo := &fakePlanRepo{search: func(_ context.Context, _, q string) ([]*domain.TravelPlan, error) {
		got = q
		return nil, nil
	}}

	if _, err := newPlanUsecase(repo, nil).SearchPlans(context.Background(), ownerID, "  kyoto "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "kyoto" {
		t.Errorf("query = %q", got)
	}
}

// ---- FilterByDateRange ----

func TestFilterByDateRange_ParsesInclusiveBounds(t *testing.T) {
	var gotStart, gotEnd time.Time
	repo := &fakePlanRepo{listByDateRange: func(_ context.Context, _ string, start, end time.Time) ([]*domain.TravelPlan, error) {
		gotStart, gotEnd = start, end
		return []*domain.TravelPlan{}, nil
	}}

	if _, err := newPlanUsecase(repo, nil).FilterByDateRange(context.Background(), ownerID, "1000", "2000"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotStart.UnixMilli() != 1000 || gotEnd.UnixMilli() != 2000 {
		t.Errorf("range = [%d, %d]", gotStart.UnixMilli(), gotEnd.UnixMilli())
	}
}

func TestFilterByDateRange_InvalidBounds_ReturnValidationError(t *testing.T) {
	cases := [][2]string{{"", "2000"}, {"1000", ""}, {"abc", "2000"}, {"1000", "2026-01-01"}}
	for _, c := range cases {
		_, err := newPlanUsecase(&fakePlanRepo{}, nil).FilterByDateRange(context.Background(), ownerID, c[0], c[1])
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%v: want ErrValidation, got %v", c, err)
		}
	}
}

func TestFilterByDateRange_StartAfterEnd_ReturnsEmpty(t *testing.T) {
	plans, err := newPlanUsecase(&fakePlanRepo{}, nil).FilterByDateRange(context.Background(), ownerID, "2000", "1000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plans == nil || len(plans) != 0 {
		t.Errorf("want empty non-nil list, got %v", plans)
	}
}
