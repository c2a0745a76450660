package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/swapspace/internal/common"
	"github.com/ayush/swapspace/internal/models"
)

// itemDoc is the stored shape of an item in the items collection.
type itemDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Condition   string             `bson:"condition"`
	Category    string             `bson:"category"`
	ImageURL    string             `bson:"imageUrl"`
	Owner       string             `bson:"owner"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d *itemDoc) model() models.Item {
	return models.Item{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Condition:   models.Condition(d.Condition),
		Category:    d.Category,
		ImageURL:    d.ImageURL,
		OwnerID:     d.Owner,
		CreatedAt:   d.CreatedAt,
	}
}

// insertion order: ObjectIDs grow with creation time.
var byInsertion = options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

// MongoStore handles item persistence in MongoDB.
type MongoStore struct {
	col *mongo.Collection
	now func() time.Time
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection("items"), now: time.Now}
}

// EnsureIndexes creates the owner index used by ListByOwner.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("mongo create index: %w", err)
	}
	return nil
}

func (s *MongoStore) Insert(ctx context.Context, item *models.Item) (*models.Item, error) {
	doc := itemDoc{
		ID:          primitive.NewObjectID(),
		Title:       item.Title,
		Description: item.Description,
		Condition:   string(item.Condition),
		Category:    item.Category,
		ImageURL:    item.ImageURL,
		Owner:       item.OwnerID,
		// BSON dates carry millisecond precision.
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("mongo insert: %w", err)
	}
	m := doc.model()
	return &m, nil
}

func (s *MongoStore) List(ctx context.Context, filter models.ItemFilter) ([]models.Item, error) {
	return s.find(ctx, listQuery(filter))
}

func (s *MongoStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Item, error) {
	return s.find(ctx, bson.M{"owner": ownerID})
}

func (s *MongoStore) find(ctx context.Context, query bson.M) ([]models.Item, error) {
	cur, err := s.col.Find(ctx, query, byInsertion)
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	defer cur.Close(ctx)

	var docs []itemDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo decode: %w", err)
	}
	out := make([]models.Item, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].model())
	}
	return out, nil
}

func (s *MongoStore) GetByID(ctx context.Context, id string) (*models.Item, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, common.ErrNotFound
	}
	var doc itemDoc
	err = s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find one: %w", err)
	}
	m := doc.model()
	return &m, nil
}

// Update overwrites the mutable fields and returns the document after the
// write. The owner field is never part of the update.
func (s *MongoStore) Update(ctx context.Context, id string, fields models.ItemFields) (*models.Item, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, common.ErrNotFound
	}
	update := bson.M{"$set": bson.M{
		"title":       fields.Title,
		"description": fields.Description,
		"condition":   string(fields.Condition),
		"category":    fields.Category,
		"imageUrl":    fields.ImageURL,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc itemDoc
	err = s.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo update: %w", err)
	}
	m := doc.model()
	return &m, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return common.ErrNotFound
	}
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("mongo delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (s *MongoStore) Categories(ctx context.Context) ([]string, error) {
	values, err := s.col.Distinct(ctx, "category", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongo distinct: %w", err)
	}
	cats := make([]string, 0, len(values))
	for _, v := range values {
		if c, ok := v.(string); ok {
			cats = append(cats, c)
		}
	}
	sort.Strings(cats)
	return cats, nil
}

// listQuery mirrors MatchesFilter as a Mongo query.
func listQuery(filter models.ItemFilter) bson.M {
	q := bson.M{}
	if filter.Category != "" {
		q["category"] = filter.Category
	}
	if filter.Query != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Query), Options: "i"}
		q["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}
	return q
}
