package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoChangeFeedWatcher, ChangeFeedWatcher'ın mongo change stream
// implementasyonu. Her Watch çağrısı yeni bir stream cursor'u açar.
type mongoChangeFeedWatcher struct {
	coll *mongo.Collection
	name string
}

// NewMongoChangeFeedWatcher, constructor — interface döner.
func NewMongoChangeFeedWatcher(coll *mongo.Collection, name string) ChangeFeedWatcher {
	return &mongoChangeFeedWatcher{coll: coll, name: name}
}

func (w *mongoChangeFeedWatcher) Watch(ctx context.Context, filter mongo.Pipeline) (ChangeFeed, error) {
	// UpdateLookup: update event'lerinde dökümanın güncel halini iste.
	// WhenAvailable: preimage saklanıyorsa delete/update'lerde önceki hali
	// iste — channel_id gibi alanlara server-side filtre uygulanabilsin diye.
	opts := options.ChangeStream().
		SetFullDocument(options.UpdateLookup).
		SetFullDocumentBeforeChange(options.WhenAvailable)

	stream, err := w.coll.Watch(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open change stream on %s: %w", w.name, err)
	}

	return &mongoChangeFeed{stream: stream, collection: w.name}, nil
}

// mongoChangeFeed, tek bir change stream cursor'unu sarar.
type mongoChangeFeed struct {
	stream     *mongo.ChangeStream
	collection string
}

func (f *mongoChangeFeed) Next(ctx context.Context) (*ChangeNotification, error) {
	// insert/update/delete dışındaki operasyonları (invalidate, drop vb.)
	// sessizce atla — tüketicinin gördüğü taksonomi üç operasyondur.
	for f.stream.Next(ctx) {
		var ev changeEvent
		if err := f.stream.Decode(&ev); err != nil {
			return nil, fmt.Errorf("failed to decode change event: %w", err)
		}

		op := ChangeOp(ev.OperationType)
		switch op {
		case ChangeOpInsert, ChangeOpUpdate, ChangeOpDelete:
			return &ChangeNotification{
				Op:           op,
				DocumentID:   ev.DocumentKey.ID,
				FullDocument: ev.FullDocument,
				Collection:   f.collection,
			}, nil
		default:
			continue
		}
	}

	// Next false döndü: ya stream hatası var, ya da cursor kapandı.
	if err := f.stream.Err(); err != nil {
		return nil, fmt.Errorf("change stream error on %s: %w", f.collection, err)
	}
	return nil, ErrFeedClosed
}

func (f *mongoChangeFeed) Close(ctx context.Context) error {
	return f.stream.Close(ctx)
}
