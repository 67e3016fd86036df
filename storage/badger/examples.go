package badger

import (
	"context"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/storage"
)

// ExampleRepository implements storage.ExampleRepository for BadgerDB.
type ExampleRepository struct {
	backend *Backend
}

var _ storage.ExampleRepository = (*ExampleRepository)(nil)

// NewExampleRepository creates a new ExampleRepository.
func NewExampleRepository(backend *Backend) (storage.ExampleRepository, error) {
	if backend == nil {
		return nil, storage.ErrBackendRequired
	}
	return &ExampleRepository{backend: backend}, nil
}

// Close is a no-op; the backend owns the database handle.
func (r *ExampleRepository) Close() error {
	return nil
}

// AddExamples adds one or more examples to storage.
// Examples with ID=0 get a content-based ID derived from task name and
// title, so re-seeding the same set overwrites rather than duplicates.
func (r *ExampleRepository) AddExamples(ctx context.Context, examples ...*core.Example) ([]*core.Example, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, example := range examples {
			if example.Id == 0 {
				example.Id = core.IDFromContent(example.TaskName + "|" + example.Title)
			}

			key := makeExampleKey(example.Id)
			if err := tx.Set(key, storage.MarshalExample(example)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return examples, err
}

// GetExample retrieves a single example by ID.
func (r *ExampleRepository) GetExample(ctx context.Context, id core.ID) (*core.Example, error) {
	var example *core.Example
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeExampleKey(id))
		if err == badger.ErrKeyNotFound {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			example, err = storage.UnmarshalExample(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return example, nil
}

// AllExamples retrieves every stored example, ordered by ID.
func (r *ExampleRepository) AllExamples(ctx context.Context) ([]*core.Example, error) {
	var examples []*core.Example
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(exampleRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var example *core.Example
			err := iter.Item().Value(func(val []byte) error {
				var err error
				example, err = storage.UnmarshalExample(val)
				return err
			})
			if err != nil {
				return err
			}
			if example != nil {
				examples = append(examples, example)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(examples, func(a, b *core.Example) int {
		switch {
		case a.Id < b.Id:
			return -1
		case a.Id > b.Id:
			return 1
		default:
			return 0
		}
	})
	return examples, nil
}

// SearchNearest finds the examples nearest to the given query vector by
// cosine similarity. Examples without embeddings are skipped.
func (r *ExampleRepository) SearchNearest(ctx context.Context, vector []float32, limit int) ([]*core.ExampleMatch, error) {
	if limit <= 0 {
		return []*core.ExampleMatch{}, nil
	}

	var matches []*core.ExampleMatch
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(exampleRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var example *core.Example
			err := iter.Item().Value(func(val []byte) error {
				var err error
				example, err = storage.UnmarshalExample(val)
				return err
			})
			if err != nil {
				return err
			}
			if example == nil || len(example.Vector) == 0 {
				continue
			}
			matches = append(matches, &core.ExampleMatch{
				Example:    example,
				Similarity: cosineSimilarity(vector, example.Vector),
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(matches, func(a, b *core.ExampleMatch) int {
		if a.Similarity > b.Similarity {
			return -1
		}
		if a.Similarity < b.Similarity {
			return 1
		}
		if a.Example.Id < b.Example.Id {
			return -1
		}
		if a.Example.Id > b.Example.Id {
			return 1
		}
		return 0
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
