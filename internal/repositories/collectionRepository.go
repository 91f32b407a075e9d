package repositories

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"docpdf/internal/database"
	"docpdf/internal/models"
	"docpdf/internal/utils"
)

type CollectionRepository interface {
	Create(ctx context.Context, col *models.Collection) (*models.Collection, error)
	FindByID(ctx context.Context, collectionID primitive.ObjectID) (*models.Collection, error)
	FindByOwnerAndName(ctx context.Context, ownerID primitive.ObjectID, name string, excludeID *primitive.ObjectID) (*models.Collection, error)
	FindAccessible(ctx context.Context, userID primitive.ObjectID) ([]models.Collection, error)
	Update(ctx context.Context, collectionID primitive.ObjectID, updateFields bson.M) (*mongo.UpdateResult, error)
	ReplaceMembers(ctx context.Context, c *models.Collection) error
	SetShareToken(ctx context.Context, c *models.Collection) error
	Delete(ctx context.Context, collectionID primitive.ObjectID) (*mongo.DeleteResult, error)
	EnsureIndexes(ctx context.Context) error
}

type collectionRepository struct {
	db database.Service
}

func NewCollectionRepository(db database.Service) CollectionRepository {
	return &collectionRepository{db: db}
}

func (r *collectionRepository) collection() *mongo.Collection {
	return r.db.Client().Database(database.Name).Collection("collections")
}

func (r *collectionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "created_by", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "is_public", Value: 1}}},
		{Keys: bson.D{{Key: "members.user", Value: 1}}},
		{
			Keys:    bson.D{{Key: "share_token", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create collection indexes: %w", err)
	}
	return nil
}

func (r *collectionRepository) Create(ctx context.Context, col *models.Collection) (*models.Collection, error) {
	queryType := "create"
	repository := "collection"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	_, err := r.collection().InsertOne(ctx, col)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, fmt.Errorf("failed to insert collection: %w", err)
	}
	return col, nil
}

func (r *collectionRepository) FindByID(ctx context.Context, collectionID primitive.ObjectID) (*models.Collection, error) {
	queryType := "findByID"
	repository := "collection"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	var col models.Collection
	err := r.collection().FindOne(ctx, bson.M{"_id": collectionID}).Decode(&col)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, err // Can be mongo.ErrNoDocuments
	}
	return &col, nil
}

func (r *collectionRepository) FindByOwnerAndName(ctx context.Context, ownerID primitive.ObjectID, name string, excludeID *primitive.ObjectID) (*models.Collection, error) {
	queryType := "findByOwnerAndName"
	repository := "collection"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	filter := bson.M{"created_by": ownerID, "name": name}
	if excludeID != nil {
		filter["_id"] = bson.M{"$ne": *excludeID}
	}

	var col models.Collection
	err := r.collection().FindOne(ctx, filter).Decode(&col)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			status = "error"
			utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		}
		return nil, err
	}
	return &col, nil
}

// FindAccessible returns every collection the user owns, is a member of, or
// that is public, newest first.
func (r *collectionRepository) FindAccessible(ctx context.Context, userID primitive.ObjectID) ([]models.Collection, error) {
	queryType := "findAccessible"
	repository := "collection"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	filter := bson.M{"$or": []bson.M{
		{"created_by": userID},
		{"is_public": true},
		{"members.user": userID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection().Find(ctx, filter, opts)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, fmt.Errorf("database error fetching collections: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.Collection
	if err := cursor.All(ctx, &results); err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, fmt.Errorf("error decoding collection results: %w", err)
	}
	return results, nil
}

func (r *collectionRepository) Update(ctx context.Context, collectionID primitive.ObjectID, updateFields bson.M) (*mongo.UpdateResult, error) {
	queryType := "update"
	repository := "collection"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	result, err := r.collection().UpdateOne(ctx, bson.M{"_id": collectionID}, bson.M{"$set": updateFields})
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, fmt.Errorf("failed to update collection: %w", err)
	}
	return result, nil
}

// ReplaceMembers writes back the in-memory member list after a resolver
// mutation. Plain last-writer-wins; there is no version guard.
func (r *collectionRepository) ReplaceMembers(ctx context.Context, c *models.Collection) error {
	_, err := r.Update(ctx, c.ID, bson.M{
		"members":    c.Members,
		"updated_at": c.UpdatedAt,
	})
	return err
}

// SetShareToken persists the share-token fields after issuance or revocation.
// A revoked token is unset rather than stored empty so the sparse unique
// index never collides on "".
func (r *collectionRepository) SetShareToken(ctx context.Context, c *models.Collection) error {
	queryType := "setShareToken"
	repository := "collection"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	var update bson.M
	if c.ShareToken == "" {
		update = bson.M{
			"$unset": bson.M{"share_token": 1, "share_token_expires_at": 1},
			"$set":   bson.M{"updated_at": c.UpdatedAt},
		}
	} else {
		update = bson.M{"$set": bson.M{
			"share_token":            c.ShareToken,
			"share_token_expires_at": c.ShareTokenExpiresAt,
			"updated_at":             c.UpdatedAt,
		}}
	}

	_, err := r.collection().UpdateOne(ctx, bson.M{"_id": c.ID}, update)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return fmt.Errorf("failed to update share token: %w", err)
	}
	return nil
}

func (r *collectionRepository) Delete(ctx context.Context, collectionID primitive.ObjectID) (*mongo.DeleteResult, error) {
	queryType := "delete"
	repository := "collection"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	result, err := r.collection().DeleteOne(ctx, bson.M{"_id": collectionID})
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, fmt.Errorf("database error deleting collection: %w", err)
	}
	return result, nil
}
