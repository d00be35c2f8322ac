// Package mongo stores rejected import rows in MongoDB.
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/transaction-importer/internal/domain/rejection"
)

const (
	// RejectionCollectionName is the name of the rejected rows collection in MongoDB
	RejectionCollectionName = "import_rejections"
)

type rejectedRowDocument struct {
	ImportRequestID string            `bson:"import_request_id"`
	Line            int               `bson:"line"`
	Raw             map[string]string `bson:"raw"`
	Field           string            `bson:"field,omitempty"`
	Reason          string            `bson:"reason"`
	CreatedAt       time.Time         `bson:"created_at"`
}

func toDocument(row *rejection.RejectedRow) rejectedRowDocument {
	return rejectedRowDocument{
		ImportRequestID: row.ImportRequestID.String(),
		Line:            row.Line,
		Raw:             row.Raw,
		Field:           row.Field,
		Reason:          row.Reason,
		CreatedAt:       row.CreatedAt,
	}
}

func (d *rejectedRowDocument) toDomain() (*rejection.RejectedRow, error) {
	id, err := uuid.Parse(d.ImportRequestID)
	if err != nil {
		return nil, fmt.Errorf("invalid import_request_id %q: %w", d.ImportRequestID, err)
	}
	return &rejection.RejectedRow{
		ImportRequestID: id,
		Line:            d.Line,
		Raw:             d.Raw,
		Field:           d.Field,
		Reason:          d.Reason,
		CreatedAt:       d.CreatedAt.UTC(),
	}, nil
}

// RejectionRepository implements the rejection.Repository interface for MongoDB
type RejectionRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewRejectionRepository creates a new MongoDB rejection repository
func NewRejectionRepository(logger *slog.Logger, db *mongo.Database) *RejectionRepository {
	return &RejectionRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureIndexes creates the lookup index used by ListByImportRequestID
func (r *RejectionRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(RejectionCollectionName)

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "import_request_id", Value: 1}, {Key: "line", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create rejected rows index: %w", err)
	}
	return nil
}

// CreateMany stores all rows in one unordered insert
func (r *RejectionRepository) CreateMany(ctx context.Context, rows []*rejection.RejectedRow) error {
	if len(rows) == 0 {
		return nil
	}

	collection := r.db.Collection(RejectionCollectionName)

	docs := make([]interface{}, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, toDocument(row))
	}

	_, err := collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil {
		r.logger.Error("Failed to store rejected rows",
			"import_request_id", rows[0].ImportRequestID.String(),
			"count", len(rows),
			"error", err)
		return fmt.Errorf("failed to store rejected rows: %w", err)
	}

	return nil
}

// ListByImportRequestID returns a page of rejected rows ordered by line number
func (r *RejectionRepository) ListByImportRequestID(ctx context.Context, importRequestID uuid.UUID, limit, offset int) ([]*rejection.RejectedRow, error) {
	collection := r.db.Collection(RejectionCollectionName)

	filter := bson.M{"import_request_id": importRequestID.String()}
	opts := options.Find().
		SetSort(bson.D{{Key: "line", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get rejected rows",
			"import_request_id", importRequestID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get rejected rows: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []rejectedRowDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode rejected rows",
			"import_request_id", importRequestID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode rejected rows: %w", err)
	}

	rows := make([]*rejection.RejectedRow, 0, len(docs))
	for i := range docs {
		row, err := docs[i].toDomain()
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// CountByImportRequestID counts the rejected rows stored for an import request
func (r *RejectionRepository) CountByImportRequestID(ctx context.Context, importRequestID uuid.UUID) (int64, error) {
	collection := r.db.Collection(RejectionCollectionName)

	filter := bson.M{"import_request_id": importRequestID.String()}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count rejected rows",
			"import_request_id", importRequestID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count rejected rows: %w", err)
	}

	return count, nil
}
