package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/billed/billed-app/internal/core/domain"
	"github.com/billed/billed-app/internal/core/ports"
)

const collectionBills = "bills"

// BillRepository implements ports.BillRepository using MongoDB.
type BillRepository struct {
	col *mongo.Collection
}

func NewBillRepository(db *mongo.Database) *BillRepository {
	return &BillRepository{col: db.Collection(collectionBills)}
}

var _ ports.BillRepository = (*BillRepository)(nil)

type historyDocument struct {
	Status    string    `bson:"status"`
	Timestamp time.Time `bson:"timestamp"`
	Comment   string    `bson:"comment,omitempty"`
}

// billDocument is the stored shape of a bill. Drafts are inserted when a
// receipt is uploaded and flagged submitted once the form is sent.
type billDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Email         string             `bson:"email"`
	Type          string             `bson:"type"`
	Name          string             `bson:"name"`
	Date          string             `bson:"date"`
	Amount        int                `bson:"amount"`
	VAT           int                `bson:"vat"`
	Pct           int                `bson:"pct"`
	Commentary    string             `bson:"commentary"`
	FileURL       string             `bson:"file_url"`
	FileName      string             `bson:"file_name"`
	Status        string             `bson:"status"`
	CommentAdmin  string             `bson:"comment_admin,omitempty"`
	StatusHistory []historyDocument  `bson:"status_history,omitempty"`
	Submitted     bool               `bson:"submitted"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at,omitempty"`
}

func (d billDocument) toDomain() domain.Bill {
	b := domain.Bill{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		Type:         d.Type,
		Name:         d.Name,
		Date:         d.Date,
		Amount:       d.Amount,
		VAT:          d.VAT,
		Pct:          d.Pct,
		Commentary:   d.Commentary,
		FileURL:      d.FileURL,
		FileName:     d.FileName,
		Status:       domain.BillStatus(d.Status),
		CommentAdmin: d.CommentAdmin,
		CreatedAt:    d.CreatedAt,
	}
	for _, h := range d.StatusHistory {
		b.StatusHistory = append(b.StatusHistory, domain.StatusHistoryEntry{
			Status:    domain.BillStatus(h.Status),
			Timestamp: h.Timestamp,
			Comment:   h.Comment,
		})
	}
	return b
}

// List returns submitted bills in insertion order. Display ordering is the
// caller's concern.
func (r *BillRepository) List(ctx context.Context, email string) ([]domain.Bill, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"submitted": true}
	if email != "" {
		filter["email"] = email
	}

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find bills: %w: %w", domain.ErrStoreUnavailable, err)
	}
	defer cur.Close(ctx)

	var docs []billDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode bills: %w: %w", domain.ErrStoreUnavailable, err)
	}

	bills := make([]domain.Bill, 0, len(docs))
	for _, d := range docs {
		bills = append(bills, d.toDomain())
	}
	return bills, nil
}

// Insert stores a draft bill and returns its hex identifier.
func (r *BillRepository) Insert(ctx context.Context, b *domain.Bill) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := billDocument{
		Email:     b.Email,
		Type:      b.Type,
		Name:      b.Name,
		Date:      b.Date,
		Amount:    b.Amount,
		VAT:       b.VAT,
		Pct:       b.Pct,
		FileURL:   b.FileURL,
		FileName:  b.FileName,
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert bill: %w: %w", domain.ErrStoreUnavailable, err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("insert bill: unexpected id type %T", res.InsertedID)
	}
	return id.Hex(), nil
}

// Update fills the draft id with the submitted form. The email filter keeps a
// user from completing someone else's draft.
func (r *BillRepository) Update(ctx context.Context, id string, b *domain.Bill) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrBillNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"type":       b.Type,
		"name":       b.Name,
		"date":       b.Date,
		"amount":     b.Amount,
		"vat":        b.VAT,
		"pct":        b.Pct,
		"commentary": b.Commentary,
		"file_url":   b.FileURL,
		"file_name":  b.FileName,
		"status":     string(b.Status),
		"submitted":  true,
		"updated_at": time.Now().UTC(),
	}}

	owned := bson.M{"_id": oid, "email": b.Email}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid, "email": b.Email, "submitted": false}, update)
	if err != nil {
		return fmt.Errorf("update bill: %w: %w", domain.ErrStoreUnavailable, err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	// Nothing matched: either no such draft for this owner, or it was
	// submitted already and may have been reviewed since.
	n, err := r.col.CountDocuments(ctx, owned)
	if err != nil {
		return fmt.Errorf("update bill: %w: %w", domain.ErrStoreUnavailable, err)
	}
	if n > 0 {
		return domain.ErrDuplicateSubmission
	}
	return domain.ErrBillNotFound
}

func (r *BillRepository) FindByID(ctx context.Context, id string) (*domain.Bill, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrBillNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc billDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid, "submitted": true}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBillNotFound
		}
		return nil, fmt.Errorf("find bill: %w: %w", domain.ErrStoreUnavailable, err)
	}
	b := doc.toDomain()
	return &b, nil
}

// UpdateStatus atomically sets the review status and appends a history entry.
// The filter on the pending status makes concurrent decisions on the same
// bill resolve to a single winner.
func (r *BillRepository) UpdateStatus(ctx context.Context, id string, status domain.BillStatus, comment string, ts time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrBillNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": oid, "submitted": true, "status": string(domain.StatusPending)}
	update := bson.M{
		"$set": bson.M{
			"status":        string(status),
			"comment_admin": comment,
			"updated_at":    ts.UTC(),
		},
		"$push": bson.M{"status_history": historyDocument{
			Status:    string(status),
			Timestamp: ts.UTC(),
			Comment:   comment,
		}},
	}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update bill status: %w: %w", domain.ErrStoreUnavailable, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

// CountByStatus returns the number of submitted bills per status.
func (r *BillRepository) CountByStatus(ctx context.Context) (map[domain.BillStatus]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"submitted": true}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("count bills: %w: %w", domain.ErrStoreUnavailable, err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode bill counts: %w: %w", domain.ErrStoreUnavailable, err)
	}

	counts := make(map[domain.BillStatus]int64, len(rows))
	for _, row := range rows {
		counts[domain.BillStatus(row.Status)] = row.Count
	}
	return counts, nil
}

// EnsureIndexes creates necessary indexes on the bills collection.
func (r *BillRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}, {Key: "submitted", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
