package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"docpdf/internal/database"
	"docpdf/internal/models"
	"docpdf/internal/utils"
)

// CollectionDocumentStats is the aggregate summary backing the collection
// stats endpoint.
type CollectionDocumentStats struct {
	TotalDocuments int64            `bson:"total_documents" json:"total_documents"`
	TotalSize      int64            `bson:"total_size" json:"total_size"`
	AvgSize        float64          `bson:"avg_size" json:"avg_size"`
	StatusCounts   map[string]int64 `bson:"-" json:"status_counts"`
}

type UploadsPerDay struct {
	Day   string `bson:"_id" json:"day"`
	Count int64  `bson:"count" json:"count"`
}

type Contributor struct {
	UserID primitive.ObjectID `bson:"_id" json:"user_id"`
	Count  int64              `bson:"count" json:"count"`
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) (*models.Document, error)
	FindByID(ctx context.Context, documentID primitive.ObjectID) (*models.Document, error)
	FindAccessible(ctx context.Context, userID primitive.ObjectID, opts models.DocumentListOptions) ([]models.Document, int64, error)
	FindRecentInCollection(ctx context.Context, userID, collectionID primitive.ObjectID, limit int64) ([]models.Document, error)
	CountInCollection(ctx context.Context, collectionID primitive.ObjectID) (int64, error)
	CountAccessibleInCollection(ctx context.Context, userID, collectionID primitive.ObjectID) (int64, error)
	Update(ctx context.Context, documentID primitive.ObjectID, updateFields bson.M) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, documentID primitive.ObjectID) (*mongo.DeleteResult, error)
	RecordDownload(ctx context.Context, documentID primitive.ObjectID, at time.Time) error
	StatsForCollection(ctx context.Context, userID, collectionID primitive.ObjectID) (*CollectionDocumentStats, error)
	UploadsOverTime(ctx context.Context, userID, collectionID primitive.ObjectID, since time.Time) ([]UploadsPerDay, error)
	TopContributors(ctx context.Context, userID, collectionID primitive.ObjectID, limit int64) ([]Contributor, error)
}

type documentRepository struct {
	db database.Service
}

func NewDocumentRepository(db database.Service) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) collection() *mongo.Collection {
	return r.db.Client().Database(database.Name).Collection("documents")
}

// accessibleFilter matches documents the user uploaded, that are public, or
// that were shared with them. Mirrors the collection-level resolver shape.
func accessibleFilter(userID primitive.ObjectID) bson.M {
	return bson.M{"$or": []bson.M{
		{"uploaded_by": userID},
		{"is_public": true},
		{"shared_with.user": userID},
	}}
}

func (r *documentRepository) Create(ctx context.Context, doc *models.Document) (*models.Document, error) {
	queryType := "create"
	repository := "document"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	_, err := r.collection().InsertOne(ctx, doc)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, fmt.Errorf("failed to insert document: %w", err)
	}
	return doc, nil
}

func (r *documentRepository) FindByID(ctx context.Context, documentID primitive.ObjectID) (*models.Document, error) {
	queryType := "findByID"
	repository := "document"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	var doc models.Document
	err := r.collection().FindOne(ctx, bson.M{"_id": documentID}).Decode(&doc)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, err // Can be mongo.ErrNoDocuments
	}
	return &doc, nil
}

func (r *documentRepository) FindAccessible(ctx context.Context, userID primitive.ObjectID, listOpts models.DocumentListOptions) ([]models.Document, int64, error) {
	queryType := "findAccessible"
	repository := "document"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	filter := accessibleFilter(userID)
	if listOpts.CollectionID != nil {
		filter["collection_id"] = *listOpts.CollectionID
	}
	if listOpts.Status != "" {
		filter["processing_status"] = listOpts.Status
	}
	if listOpts.Search != "" {
		pattern := primitive.Regex{Pattern: listOpts.Search, Options: "i"}
		filter["$and"] = []bson.M{{"$or": []bson.M{
			{"title": pattern},
			{"metadata.author": pattern},
			{"metadata.subject": pattern},
			{"tags": pattern},
		}}}
	}

	page := listOpts.Page
	if page < 1 {
		page = 1
	}
	limit := listOpts.Limit
	if limit < 1 {
		limit = 20
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection().Find(ctx, filter, findOpts)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, 0, fmt.Errorf("database error fetching documents: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.Document
	if err := cursor.All(ctx, &results); err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, 0, fmt.Errorf("error decoding document results: %w", err)
	}

	total, err := r.collection().CountDocuments(ctx, filter)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, 0, fmt.Errorf("database error counting documents: %w", err)
	}
	return results, total, nil
}

func (r *documentRepository) FindRecentInCollection(ctx context.Context, userID, collectionID primitive.ObjectID, limit int64) ([]models.Document, error) {
	queryType := "findRecentInCollection"
	repository := "document"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	filter := accessibleFilter(userID)
	filter["collection_id"] = collectionID
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetProjection(bson.M{
			"title":              1,
			"original_file_name": 1,
			"processing_status":  1,
			"created_at":         1,
			"uploaded_by":        1,
		})

	cursor, err := r.collection().Find(ctx, filter, opts)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, fmt.Errorf("database error fetching recent documents: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.Document
	if err := cursor.All(ctx, &results); err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, fmt.Errorf("error decoding recent documents: %w", err)
	}
	return results, nil
}

// CountInCollection counts every document in the collection regardless of
// visibility; the delete gate needs the unfiltered number.
func (r *documentRepository) CountInCollection(ctx context.Context, collectionID primitive.ObjectID) (int64, error) {
	return r.count(ctx, "countInCollection", bson.M{"collection_id": collectionID})
}

func (r *documentRepository) CountAccessibleInCollection(ctx context.Context, userID, collectionID primitive.ObjectID) (int64, error) {
	filter := accessibleFilter(userID)
	filter["collection_id"] = collectionID
	return r.count(ctx, "countAccessibleInCollection", filter)
}

func (r *documentRepository) count(ctx context.Context, queryType string, filter bson.M) (int64, error) {
	repository := "document"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	n, err := r.collection().CountDocuments(ctx, filter)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return 0, fmt.Errorf("database error counting documents: %w", err)
	}
	return n, nil
}

func (r *documentRepository) Update(ctx context.Context, documentID primitive.ObjectID, updateFields bson.M) (*mongo.UpdateResult, error) {
	queryType := "update"
	repository := "document"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	result, err := r.collection().UpdateOne(ctx, bson.M{"_id": documentID}, bson.M{"$set": updateFields})
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, fmt.Errorf("failed to update document: %w", err)
	}
	return result, nil
}

func (r *documentRepository) Delete(ctx context.Context, documentID primitive.ObjectID) (*mongo.DeleteResult, error) {
	queryType := "delete"
	repository := "document"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	result, err := r.collection().DeleteOne(ctx, bson.M{"_id": documentID})
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, fmt.Errorf("database error deleting document: %w", err)
	}
	return result, nil
}

func (r *documentRepository) RecordDownload(ctx context.Context, documentID primitive.ObjectID, at time.Time) error {
	_, err := r.collection().UpdateOne(ctx, bson.M{"_id": documentID}, bson.M{
		"$inc": bson.M{"download_count": 1},
		"$set": bson.M{"last_accessed": at},
	})
	if err != nil {
		return fmt.Errorf("failed to record download: %w", err)
	}
	return nil
}

func (r *documentRepository) StatsForCollection(ctx context.Context, userID, collectionID primitive.ObjectID) (*CollectionDocumentStats, error) {
	queryType := "statsForCollection"
	repository := "document"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	match := accessibleFilter(userID)
	match["collection_id"] = collectionID

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":             nil,
			"total_documents": bson.M{"$sum": 1},
			"total_size":      bson.M{"$sum": "$file_size"},
			"avg_size":        bson.M{"$avg": "$file_size"},
			"statuses":        bson.M{"$push": "$processing_status"},
		}}},
	}

	cursor, err := r.collection().Aggregate(ctx, pipeline)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, fmt.Errorf("database error aggregating document stats: %w", err)
	}
	defer cursor.Close(ctx)

	stats := &CollectionDocumentStats{StatusCounts: map[string]int64{
		models.ProcessingPending:    0,
		models.ProcessingProcessing: 0,
		models.ProcessingCompleted:  0,
		models.ProcessingFailed:     0,
	}}

	var row struct {
		TotalDocuments int64    `bson:"total_documents"`
		TotalSize      int64    `bson:"total_size"`
		AvgSize        float64  `bson:"avg_size"`
		Statuses       []string `bson:"statuses"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&row); err != nil {
			status = "error"
			utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
			return nil, fmt.Errorf("error decoding document stats: %w", err)
		}
		stats.TotalDocuments = row.TotalDocuments
		stats.TotalSize = row.TotalSize
		stats.AvgSize = row.AvgSize
		for _, st := range row.Statuses {
			if _, ok := stats.StatusCounts[st]; ok {
				stats.StatusCounts[st]++
			}
		}
	}
	return stats, nil
}

func (r *documentRepository) UploadsOverTime(ctx context.Context, userID, collectionID primitive.ObjectID, since time.Time) ([]UploadsPerDay, error) {
	match := accessibleFilter(userID)
	match["collection_id"] = collectionID
	match["created_at"] = bson.M{"$gte": since}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format": "%Y-%m-%d",
				"date":   "$created_at",
			}},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cursor, err := r.collection().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("database error aggregating uploads over time: %w", err)
	}
	defer cursor.Close(ctx)

	var results []UploadsPerDay
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("error decoding uploads over time: %w", err)
	}
	return results, nil
}

func (r *documentRepository) TopContributors(ctx context.Context, userID, collectionID primitive.ObjectID, limit int64) ([]Contributor, error) {
	match := accessibleFilter(userID)
	match["collection_id"] = collectionID

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$uploaded_by",
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.collection().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("database error aggregating contributors: %w", err)
	}
	defer cursor.Close(ctx)

	var results []Contributor
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("error decoding contributors: %w", err)
	}
	return results, nil
}
