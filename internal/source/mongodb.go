package source

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"smskit/internal/constants"
	"smskit/internal/sms"
)

// MongoSource reads the inbox collection. Each field is converted on its own:
// a missing, null or unconvertible field becomes a nil row field without
// affecting the rest of the document.
type MongoSource struct {
	collection *mongo.Collection
}

func NewMongoSource(db *mongo.Database, collection string) *MongoSource {
	if collection == "" {
		collection = constants.DefaultSMSCollection
	}
	return &MongoSource{collection: db.Collection(collection)}
}

func (s *MongoSource) Name() string {
	return constants.SourceTypeMongoDB
}

func (s *MongoSource) QueryMessages(ctx context.Context, rowCap int) ([]sms.Row, error) {
	if rowCap <= 0 {
		return []sms.Row{}, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetLimit(int64(rowCap)).
		SetProjection(bson.D{
			{Key: "_id", Value: 0},
			{Key: "address", Value: 1},
			{Key: "body", Value: 1},
			{Key: "date", Value: 1},
			{Key: "type", Value: 1},
		})

	cursor, err := s.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer cursor.Close(ctx)

	result := make([]sms.Row, 0, min(rowCap, constants.TransactionListingRowCap))
	for cursor.Next(ctx) {
		result = append(result, rowFromDocument(cursor.Current))
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor iteration error: %w", err)
	}

	return result, nil
}

func rowFromDocument(doc bson.Raw) sms.Row {
	var row sms.Row
	if v, ok := lookupString(doc, "address"); ok {
		row.Address = &v
	}
	if v, ok := lookupString(doc, "body"); ok {
		row.Body = &v
	}
	if v, ok := lookupInt(doc, "date"); ok {
		row.Date = &v
	}
	if v, ok := lookupInt(doc, "type"); ok && v >= math.MinInt32 && v <= math.MaxInt32 {
		t := int32(v)
		row.Type = &t
	}
	return row
}

func lookupString(doc bson.Raw, key string) (string, bool) {
	val, err := doc.LookupErr(key)
	if err != nil {
		return "", false
	}
	switch val.Type {
	case bsontype.String:
		return val.StringValueOK()
	case bsontype.Int32:
		return strconv.FormatInt(int64(val.Int32()), 10), true
	case bsontype.Int64:
		return strconv.FormatInt(val.Int64(), 10), true
	}
	return "", false
}

func lookupInt(doc bson.Raw, key string) (int64, bool) {
	val, err := doc.LookupErr(key)
	if err != nil {
		return 0, false
	}
	switch val.Type {
	case bsontype.Int64:
		return val.Int64OK()
	case bsontype.Int32:
		v, ok := val.Int32OK()
		return int64(v), ok
	case bsontype.DateTime:
		return val.DateTimeOK()
	case bsontype.Double:
		f, ok := val.DoubleOK()
		if !ok || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, false
		}
		return int64(f), true
	case bsontype.String:
		n, err := strconv.ParseInt(strings.TrimSpace(val.StringValue()), 10, 64)
		return n, err == nil
	}
	return 0, false
}
