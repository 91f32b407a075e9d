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

type ChatRepository interface {
	FindSession(ctx context.Context, documentID, userID primitive.ObjectID) (*models.ChatSession, error)
	UpsertSession(ctx context.Context, session *models.ChatSession) error
}

type chatRepository struct {
	db database.Service
}

func NewChatRepository(db database.Service) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) collection() *mongo.Collection {
	return r.db.Client().Database(database.Name).Collection("chat_sessions")
}

// FindSession returns the session between one user and one document, or
// mongo.ErrNoDocuments when they have not chatted yet.
func (r *chatRepository) FindSession(ctx context.Context, documentID, userID primitive.ObjectID) (*models.ChatSession, error) {
	queryType := "findSession"
	repository := "chat"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	var session models.ChatSession
	err := r.collection().FindOne(ctx, bson.M{"document_id": documentID, "user_id": userID}).Decode(&session)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			status = "error"
			utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		}
		return nil, err
	}
	return &session, nil
}

func (r *chatRepository) UpsertSession(ctx context.Context, session *models.ChatSession) error {
	queryType := "upsertSession"
	repository := "chat"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	filter := bson.M{"document_id": session.DocumentID, "user_id": session.UserID}
	update := bson.M{
		"$set": bson.M{
			"messages":   session.Messages,
			"updated_at": session.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"document_id": session.DocumentID,
			"user_id":     session.UserID,
			"created_at":  session.CreatedAt,
		},
	}
	_, err := r.collection().UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return fmt.Errorf("failed to save chat session: %w", err)
	}
	return nil
}
