package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/foodtruckhq/truck-tracker/internal/models"
)

const trucksCollection = "trucks"

// ConnectMongo connects to MongoDB at the given URI and verifies the
// connection with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// MongoTruckStore is the MongoDB-backed TruckStore.
type MongoTruckStore struct {
	col *mongo.Collection
}

// NewMongoTruckStore wraps the trucks collection of the given database.
func NewMongoTruckStore(client *mongo.Client, database string) *MongoTruckStore {
	return &MongoTruckStore{col: client.Database(database).Collection(trucksCollection)}
}

// FindSimulatable selects the trucks the scheduler drives: active, in a
// simulatable status (any stored spelling), with at least one route stop.
func (s *MongoTruckStore) FindSimulatable(ctx context.Context) ([]models.Truck, error) {
	filter := bson.M{
		"isActive":          true,
		"status":            bson.M{"$in": models.SimulatableSpellings()},
		"routePlan.stops.0": bson.M{"$exists": true},
	}
	projection := bson.M{
		"routePlan":        1,
		"liveLocation":     1,
		"status":           1,
		"currentStopIndex": 1,
		"isActive":         1,
	}
	cursor, err := s.col.Find(ctx, filter, options.Find().SetProjection(projection))
	if err != nil {
		return nil, fmt.Errorf("find simulatable trucks: %w", err)
	}
	defer cursor.Close(ctx)

	var trucks []models.Truck
	if err := cursor.All(ctx, &trucks); err != nil {
		return nil, fmt.Errorf("decode simulatable trucks: %w", err)
	}
	for i := range trucks {
		status, err := models.ParseStatus(string(trucks[i].Status))
		if err != nil {
			return nil, err
		}
		trucks[i].Status = status
		trucks[i].ClampStopIndex()
	}
	return trucks, nil
}

// FindTruckByID fetches one truck, normalizing its status and clamping its
// stop index into the stored plan's bounds.
func (s *MongoTruckStore) FindTruckByID(ctx context.Context, id string) (*models.Truck, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid id %q", ErrTruckNotFound, id)
	}
	var truck models.Truck
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&truck); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrTruckNotFound
		}
		return nil, fmt.Errorf("find truck %s: %w", id, err)
	}
	status, err := models.ParseStatus(string(truck.Status))
	if err != nil {
		return nil, err
	}
	truck.Status = status
	truck.ClampStopIndex()
	return &truck, nil
}

// UpdateTruck applies the non-nil fields of upd in a single $set, so
// concurrent writers never interleave partial states of one update.
func (s *MongoTruckStore) UpdateTruck(ctx context.Context, id string, upd TruckUpdate) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: invalid id %q", ErrTruckNotFound, id)
	}

	set := bson.M{"updatedAt": time.Now()}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	if upd.CurrentStopIndex != nil {
		set["currentStopIndex"] = *upd.CurrentStopIndex
	}
	if upd.LiveLocation != nil {
		set["liveLocation"] = *upd.LiveLocation
	}
	if upd.CurrentLocation != nil {
		set["currentLocation"] = *upd.CurrentLocation
	}
	if upd.Location != nil {
		set["location"] = *upd.Location
	}
	if upd.RoutePlan != nil {
		set["routePlan"] = *upd.RoutePlan
	}
	if upd.IsActive != nil {
		set["isActive"] = *upd.IsActive
	}

	result, err := s.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update truck %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrTruckNotFound
	}
	return nil
}

// ApplyDefaultRoutePlan assigns plan to every truck without a usable plan.
func (s *MongoTruckStore) ApplyDefaultRoutePlan(ctx context.Context, plan *models.RoutePlan) (int64, int64, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"routePlan": bson.M{"$exists": false}},
		bson.M{"routePlan.stops.0": bson.M{"$exists": false}},
	}}
	result, err := s.col.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"routePlan": *plan}})
	if err != nil {
		return 0, 0, fmt.Errorf("apply default route plan: %w", err)
	}
	return result.MatchedCount, result.ModifiedCount, nil
}
