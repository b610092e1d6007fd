package ledger

import (
	"context"
	"time"

	"github.com/denismitr/heron/migration"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoLedger stores one document per applied version in a dedicated
// collection, keyed by the version itself.
type MongoLedger struct {
	coll  *mongo.Collection
	clock ClockFunc
}

var _ Ledger = (*MongoLedger)(nil)

func NewMongoLedger(db *mongo.Database, collection string, clock ClockFunc) *MongoLedger {
	if collection == "" {
		collection = DefaultCollection
	}

	if clock == nil {
		clock = time.Now
	}

	return &MongoLedger{
		coll:  db.Collection(collection),
		clock: clock,
	}
}

func (l *MongoLedger) Applied(ctx context.Context) ([]migration.Version, error) {
	cursor, err := l.coll.Find(
		ctx,
		bson.D{},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "could not read applied versions")
	}

	var entries []Entry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, errors.Wrap(err, "could not decode applied versions")
	}

	var versions []migration.Version
	for i := range entries {
		versions = append(versions, entries[i].Version)
	}

	return versions, nil
}

func (l *MongoLedger) RecordApplied(ctx context.Context, v migration.Version) error {
	entry := Entry{Version: v, AppliedAt: l.clock().UTC()}

	// replace with upsert keeps a rerun after a lost ledger write from
	// producing duplicate entries
	_, err := l.coll.ReplaceOne(
		ctx,
		bson.D{{Key: "_id", Value: v}},
		entry,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return errors.Wrapf(ErrPersistenceFailed, "version %d: %s", int64(v), err.Error())
	}

	return nil
}

func (l *MongoLedger) RecordReverted(ctx context.Context, v migration.Version) error {
	if _, err := l.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: v}}); err != nil {
		return errors.Wrapf(ErrPersistenceFailed, "version %d: %s", int64(v), err.Error())
	}

	return nil
}
