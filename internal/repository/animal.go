package repository

import (
	"context"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/deppfellow/shelter/internal/mongoerr"
)

// AnimalRepository is the data access object for the animals collection.
//
// Every operation validates its input before touching the store, logs any
// failure, and returns a *mongoerr.Error whose Code says what went wrong.
// It is safe for concurrent use; the driver owns connection handling.
type AnimalRepository struct {
	collection *mongo.Collection
	name       string
	logger     *zerolog.Logger
}

func NewAnimalRepository(collection *mongo.Collection, logger *zerolog.Logger) *AnimalRepository {
	name := "animals"
	if collection != nil {
		name = collection.Name()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &AnimalRepository{
		collection: collection,
		name:       name,
		logger:     logger,
	}
}

// Create inserts one document after ValidateDocument accepts it. It reports
// true when the store assigned an identifier.
func (r *AnimalRepository) Create(ctx context.Context, doc Document) (bool, error) {
	if _, err := ValidateDocument(doc); err != nil {
		return false, r.fail("create", err)
	}

	res, err := r.collection.InsertOne(ctx, normalizeNumbers(doc))
	if err != nil {
		return false, r.fail("create", err)
	}

	return res.InsertedID != nil, nil
}

// Read returns every document matching query. A nil query matches all
// documents. The result is never nil.
func (r *AnimalRepository) Read(ctx context.Context, query Query) ([]Document, error) {
	if query == nil {
		query = Query{}
	}

	filter, err := SanitizeQuery(query)
	if err != nil {
		return []Document{}, r.fail("read", err)
	}

	cur, err := r.collection.Find(ctx, normalizeNumbers(filter))
	if err != nil {
		return []Document{}, r.fail("read", err)
	}

	results := []Document{}
	if err := cur.All(ctx, &results); err != nil {
		return []Document{}, r.fail("read", err)
	}

	return results, nil
}

// Update sets values on the first document matching query; other fields are
// kept. Values get the same field checks as Create: name and type must be
// strings and age a non-negative integer. It reports true when exactly one
// document changed. A query that matches nothing returns false with a
// NotFound error; a match whose fields already hold values returns false and
// no error.
func (r *AnimalRepository) Update(ctx context.Context, query Query, values Document) (bool, error) {
	if len(query) == 0 {
		return false, r.fail("update", mongoerr.NewValidationError("update", "query must not be empty"))
	}
	if len(values) == 0 {
		return false, r.fail("update", mongoerr.NewValidationError("update", "values must not be empty"))
	}

	filter, err := SanitizeQuery(query)
	if err != nil {
		return false, r.fail("update", err)
	}

	if _, err := SanitizeQuery(values); err != nil {
		return false, r.fail("update", err)
	}

	if fields := checkFieldTypes(values); len(fields) > 0 {
		return false, r.fail("update", mongoerr.NewValidationError("update", "Validation failed", fields...))
	}

	update := bson.M{"$set": normalizeNumbers(values)}
	res, err := r.collection.UpdateOne(ctx, normalizeNumbers(filter), update)
	if err != nil {
		return false, r.fail("update", err)
	}

	if res.MatchedCount == 0 {
		return false, r.fail("update", mongoerr.NewNotFoundError("update", r.name))
	}

	return res.ModifiedCount == 1, nil
}

// Delete removes the first document matching query. A query that matches
// nothing returns false with a NotFound error.
func (r *AnimalRepository) Delete(ctx context.Context, query Query) (bool, error) {
	if len(query) == 0 {
		return false, r.fail("delete", mongoerr.NewValidationError("delete", "query must not be empty"))
	}

	filter, err := SanitizeQuery(query)
	if err != nil {
		return false, r.fail("delete", err)
	}

	res, err := r.collection.DeleteOne(ctx, normalizeNumbers(filter))
	if err != nil {
		return false, r.fail("delete", err)
	}

	if res.DeletedCount == 0 {
		return false, r.fail("delete", mongoerr.NewNotFoundError("delete", r.name))
	}

	return true, nil
}

// analyticsPipeline groups by type and orders by group size, largest first.
// Equal sizes are ordered by type.
var analyticsPipeline = mongo.Pipeline{
	{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: "$" + FieldType},
		{Key: "total_animals", Value: bson.D{{Key: "$sum", Value: 1}}},
		{Key: "average_age", Value: bson.D{{Key: "$avg", Value: "$" + FieldAge}}},
		{Key: "outcomes", Value: bson.D{{Key: "$addToSet", Value: "$" + FieldOutcomeType}}},
	}}},
	{{Key: "$sort", Value: bson.D{
		{Key: "total_animals", Value: -1},
		{Key: "_id", Value: 1},
	}}},
}

// Analytics reports, per animal type, the number of animals, their average
// age and the distinct outcome types seen. The result is never nil.
func (r *AnimalRepository) Analytics(ctx context.Context) ([]GroupSummary, error) {
	cur, err := r.collection.Aggregate(ctx, analyticsPipeline)
	if err != nil {
		return []GroupSummary{}, r.fail("analytics", err)
	}

	results := []GroupSummary{}
	if err := cur.All(ctx, &results); err != nil {
		return []GroupSummary{}, r.fail("analytics", err)
	}

	for i := range results {
		if results[i].Outcomes == nil {
			results[i].Outcomes = []any{}
		}
	}

	return results, nil
}

// fail classifies err and logs it. Rejected input is logged at warn level,
// store failures at error level.
func (r *AnimalRepository) fail(op string, err error) error {
	classified := mongoerr.Classify(op, r.name, err)

	event := r.logger.Error()
	if classified.Code == mongoerr.Validation || classified.Code == mongoerr.NotFound {
		event = r.logger.Warn()
	}

	event.
		Err(err).
		Str("operation", op).
		Str("collection", r.name).
		Str("error_code", string(classified.Code)).
		Msg("animal repository operation failed")

	return classified
}
