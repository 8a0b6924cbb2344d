package contentstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"

	"medledger/pkg/domain"
	"medledger/pkg/platform/sentinel"
)

// LevelDB keeps blobs in an embedded LevelDB keyed by "blob_<ref>".
type LevelDB struct {
	db *leveldb.DB
}

// OpenLevelDB opens (or creates) the database at path.
func OpenLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}
	return &LevelDB{db: db}, nil
}

// NewLevelDB wraps an already open database.
func NewLevelDB(db *leveldb.DB) *LevelDB {
	return &LevelDB{db: db}
}

func blobKey(ref domain.ContentRef) []byte {
	return []byte("blob_" + ref.String())
}

func (s *LevelDB) Put(ctx context.Context, data []byte) (domain.ContentRef, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ref := RefFor(data)
	if err := s.db.Put(blobKey(ref), data, nil); err != nil {
		return "", fmt.Errorf("%w: leveldb put: %v", sentinel.ErrUnavailable, err)
	}
	return ref, nil
}

func (s *LevelDB) Get(ctx context.Context, ref domain.ContentRef) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.db.Get(blobKey(ref), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: leveldb get: %v", sentinel.ErrUnavailable, err)
	}
	return data, nil
}

func (s *LevelDB) Has(ctx context.Context, ref domain.ContentRef) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	ok, err := s.db.Has(blobKey(ref), nil)
	if err != nil {
		return false, fmt.Errorf("%w: leveldb has: %v", sentinel.ErrUnavailable, err)
	}
	return ok, nil
}

func (s *LevelDB) Close() error {
	return s.db.Close()
}
