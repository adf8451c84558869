package models

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type WorkersRepo interface {
	CreateWorker(ctx context.Context, worker *Worker) (*Worker, error)
	GetWorkerByID(ctx context.Context, id primitive.ObjectID) (*Worker, error)
	GetWorkerByEmail(ctx context.Context, email string) (*Worker, error)
	GetWorkerByPhone(ctx context.Context, phone string) (*Worker, error)
	SearchByProfession(ctx context.Context, query string) ([]*Worker, error)
	ListProfessions(ctx context.Context) ([]string, error)
	UpdateWorkerStatus(ctx context.Context, id primitive.ObjectID, status WorkerStatus) (*Worker, error)
	UpdateWorkerLocation(ctx context.Context, id primitive.ObjectID, location string, lat, lon *float64) (*Worker, error)
	IncrementClickCount(ctx context.Context, id primitive.ObjectID) error
	FindNearby(ctx context.Context, lon, lat float64, maxMeters int) ([]*Worker, error)
}

// EnsureWorkerIndexes creates the unique email index, the phone lookup index
// and the 2dsphere index the nearby query depends on. The unique index is the
// sole source of truth for duplicate emails; the application never relies on a
// check-then-insert sequence alone.
func (mdb *MongodbRepo) EnsureWorkerIndexes(ctx context.Context) error {
	col, err := mdb.GetCollection(ctx, WorkerDbName, WorkerColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "phone", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "geo", Value: "2dsphere"}},
			Options: options.Index().SetSparse(true),
		},
	}

	if _, err := col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create worker indexes: %v", err)
	}
	return nil
}

func (mdb *MongodbRepo) CreateWorker(ctx context.Context, worker *Worker) (*Worker, error) {
	if err := Validate.Struct(worker); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := worker.BeforeCreate(); err != nil {
		return nil, err
	}

	col, err := mdb.GetCollection(ctx, WorkerDbName, WorkerColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	if _, err := col.InsertOne(ctx, worker); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to insert worker: %v", err)
	}

	return worker, nil
}

func (mdb *MongodbRepo) GetWorkerByID(ctx context.Context, id primitive.ObjectID) (*Worker, error) {
	return mdb.findWorker(ctx, bson.M{"_id": id})
}

func (mdb *MongodbRepo) GetWorkerByEmail(ctx context.Context, email string) (*Worker, error) {
	return mdb.findWorker(ctx, bson.M{"email": email})
}

func (mdb *MongodbRepo) GetWorkerByPhone(ctx context.Context, phone string) (*Worker, error) {
	return mdb.findWorker(ctx, bson.M{"phone": phone})
}

func (mdb *MongodbRepo) findWorker(ctx context.Context, filter bson.M) (*Worker, error) {
	col, err := mdb.GetCollection(ctx, WorkerDbName, WorkerColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var worker Worker
	if err := col.FindOne(ctx, filter).Decode(&worker); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrWorkerNotFound
		}
		return nil, fmt.Errorf("failed to find worker: %v", err)
	}
	return &worker, nil
}

// SearchByProfession does a case-insensitive substring match on the
// profession field.
func (mdb *MongodbRepo) SearchByProfession(ctx context.Context, query string) ([]*Worker, error) {
	col, err := mdb.GetCollection(ctx, WorkerDbName, WorkerColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{
		"profession": primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"},
	}
	cursor, err := col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search workers: %v", err)
	}
	defer cursor.Close(ctx)

	return decodeWorkers(ctx, cursor)
}

// ListProfessions returns the distinct set of exact profession strings.
// Profession values are stored as single opaque strings; no comma splitting.
func (mdb *MongodbRepo) ListProfessions(ctx context.Context) ([]string, error) {
	col, err := mdb.GetCollection(ctx, WorkerDbName, WorkerColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	values, err := col.Distinct(ctx, "profession", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list professions: %v", err)
	}

	professions := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			professions = append(professions, s)
		}
	}
	sort.Strings(professions)
	return professions, nil
}

func (mdb *MongodbRepo) UpdateWorkerStatus(ctx context.Context, id primitive.ObjectID, status WorkerStatus) (*Worker, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: status must be %s or %s", ErrValidation, StatusActive, StatusBusy)
	}
	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}}
	return mdb.updateWorker(ctx, id, update)
}

func (mdb *MongodbRepo) UpdateWorkerLocation(ctx context.Context, id primitive.ObjectID, location string, lat, lon *float64) (*Worker, error) {
	set := bson.M{
		"location":   location,
		"updated_at": time.Now(),
	}
	if lat != nil && lon != nil {
		set["latitude"] = *lat
		set["longitude"] = *lon
		set["geo"] = GeoPoint{Type: "Point", Coordinates: []float64{*lon, *lat}}
	}
	return mdb.updateWorker(ctx, id, bson.M{"$set": set})
}

func (mdb *MongodbRepo) updateWorker(ctx context.Context, id primitive.ObjectID, update bson.M) (*Worker, error) {
	col, err := mdb.GetCollection(ctx, WorkerDbName, WorkerColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Worker
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrWorkerNotFound
		}
		return nil, fmt.Errorf("failed to update worker: %v", err)
	}
	return &updated, nil
}

// IncrementClickCount bumps the counter server-side with $inc, so concurrent
// increments never lose updates.
func (mdb *MongodbRepo) IncrementClickCount(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, WorkerDbName, WorkerColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	update := bson.M{
		"$inc": bson.M{"click_count": 1},
		"$set": bson.M{"updated_at": time.Now()},
	}
	res, err := col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to increment click count: %v", err)
	}
	if res.MatchedCount == 0 {
		return ErrWorkerNotFound
	}
	return nil
}

func (mdb *MongodbRepo) FindNearby(ctx context.Context, lon, lat float64, maxMeters int) ([]*Worker, error) {
	col, err := mdb.GetCollection(ctx, WorkerDbName, WorkerColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{
		"geo": bson.M{
			"$nearSphere": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{lon, lat},
				},
				"$maxDistance": maxMeters,
			},
		},
	}
	cursor, err := col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find nearby workers: %v", err)
	}
	defer cursor.Close(ctx)

	return decodeWorkers(ctx, cursor)
}

func decodeWorkers(ctx context.Context, cursor *mongo.Cursor) ([]*Worker, error) {
	workers := []*Worker{}
	for cursor.Next(ctx) {
		var w Worker
		if err := cursor.Decode(&w); err != nil {
			return nil, fmt.Errorf("error decoding worker: %v", err)
		}
		workers = append(workers, &w)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return workers, nil
}
