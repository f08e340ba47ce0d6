package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/ErlanBelekov/travel-ease/internal/domain"
	"github.com/ErlanBelekov/travel-ease/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type planDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	UserID          string             `bson:"userId"`
	Title           string             `bson:"title"`
	Plan            string             `bson:"plan"`
	PlannedLocation []string           `bson:"plannedLocation"`
	PlannedDate     time.Time          `bson:"plannedDate"`
	ImageURL        string             `bson:"imageUrl"`
	IsFavorite      bool               `bson:"isFavorite"`
	CreatedOn       time.Time          `bson:"createdOn"`
}

func (d *planDocument) toDomain() *domain.TravelPlan {
	locations := d.PlannedLocation
	if locations == nil {
		locations = []string{}
	}
	return &domain.TravelPlan{
		ID:              d.ID.Hex(),
		UserID:          d.UserID,
		Title:           d.Title,
		Plan:            d.Plan,
		PlannedLocation: locations,
		PlannedDate:     d.PlannedDate.UTC(),
		ImageURL:        d.ImageURL,
		IsFavorite:      d.IsFavorite,
		CreatedOn:       d.CreatedOn.UTC(),
	}
}

// Favorites first, newest first. _id breaks ties between plans created in
// the same millisecond.
var planSort = bson.D{
	{Key: "isFavorite", Value: -1},
	{Key: "createdOn", Value: -1},
	{Key: "_id", Value: -1},
}

type PlanRepository struct {
	coll *mongo.Collection
}

func (r *PlanRepository) Create(ctx context.Context, plan *domain.TravelPlan) (*domain.TravelPlan, error) {
	locations := plan.PlannedLocation
	if locations == nil {
		locations = []string{}
	}
	doc := planDocument{
		ID:              primitive.NewObjectID(),
		UserID:          plan.UserID,
		Title:           plan.Title,
		Plan:            plan.Plan,
		PlannedLocation: locations,
		PlannedDate:     plan.PlannedDate.UTC(),
		ImageURL:        plan.ImageURL,
		CreatedOn:       time.Now().UTC().Truncate(time.Millisecond),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert plan: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *PlanRepository) GetByID(ctx context.Context, id, userID string) (*domain.TravelPlan, error) {
	filter, ok := ownedBy(id, userID)
	if !ok {
		return nil, domain.ErrPlanNotFound
	}
	return decodePlan(r.coll.FindOne(ctx, filter))
}

func (r *PlanRepository) List(ctx context.Context, userID string) ([]*domain.TravelPlan, error) {
	return r.find(ctx, "list plans", bson.M{"userId": userID})
}

func (r *PlanRepository) Update(ctx context.Context, id, userID string, u repository.PlanUpdate) (*domain.TravelPlan, error) {
	filter, ok := ownedBy(id, userID)
	if !ok {
		return nil, domain.ErrPlanNotFound
	}
	locations := u.PlannedLocation
	if locations == nil {
		locations = []string{}
	}
	update := bson.M{"$set": bson.M{
		"title":           u.Title,
		"plan":            u.Plan,
		"plannedLocation": locations,
		"plannedDate":     u.PlannedDate.UTC(),
		"imageUrl":        u.ImageURL,
	}}
	return decodePlan(r.coll.FindOneAndUpdate(ctx, filter, update, returnAfter()))
}

func (r *PlanRepository) Delete(ctx context.Context, id, userID string) (*domain.TravelPlan, error) {
	filter, ok := ownedBy(id, userID)
	if !ok {
		return nil, domain.ErrPlanNotFound
	}
	return decodePlan(r.coll.FindOneAndDelete(ctx, filter))
}

func (r *PlanRepository) SetFavorite(ctx context.Context, id, userID string, isFavorite bool) (*domain.TravelPlan, error) {
	filter, ok := ownedBy(id, userID)
	if !ok {
		return nil, domain.ErrPlanNotFound
	}
	update := bson.M{"$set": bson.M{"isFavorite": isFavorite}}
	return decodePlan(r.coll.FindOneAndUpdate(ctx, filter, update, returnAfter()))
}

func (r *PlanRepository) Search(ctx context.Context, userID, query string) ([]*domain.TravelPlan, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{
		"userId": userID,
		"$or": bson.A{
			bson.M{"title": pattern},
			bson.M{"plan": pattern},
			bson.M{"plannedLocation": pattern},
		},
	}
	return r.find(ctx, "search plans", filter)
}

func (r *PlanRepository) ListByDateRange(ctx context.Context, userID string, start, end time.Time) ([]*domain.TravelPlan, error) {
	filter := bson.M{
		"userId":      userID,
		"plannedDate": bson.M{"$gte": start.UTC(), "$lte": end.UTC()},
	}
	return r.find(ctx, "list plans by date", filter)
}

func (r *PlanRepository) find(ctx context.Context, op string, filter bson.M) ([]*domain.TravelPlan, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(planSort))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cur.Close(ctx)

	plans := []*domain.TravelPlan{}
	for cur.Next(ctx) {
		var doc planDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}
		plans = append(plans, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plans, nil
}

// ownedBy builds the (id, owner) filter. A malformed id cannot name any
// plan, so it reports false instead of querying.
func ownedBy(id, userID string) (bson.M, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, false
	}
	return bson.M{"_id": oid, "userId": userID}, true
}

func decodePlan(res *mongo.SingleResult) (*domain.TravelPlan, error) {
	var doc planDocument
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	return doc.toDomain(), nil
}

func returnAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}
