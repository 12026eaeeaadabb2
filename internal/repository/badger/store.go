// Package badger stores ConceptForge data in an embedded BadgerDB.
//
// Key layout, all keys scoped by owner:
//
//	0x01 owner 0x00 nodeID            -> Node JSON
//	0x02 owner 0x00 edgeID            -> Edge JSON
//	0x03 owner 0x00 cardID            -> Flashcard JSON
//	0x04 owner 0x00 from 0x00 to      -> edgeID (one edge per ordered pair)
package badger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/Raghvendrath3/conceptForge/internal/domain"
	"github.com/Raghvendrath3/conceptForge/internal/repository"
)

const (
	prefixNode      = byte(0x01)
	prefixEdge      = byte(0x02)
	prefixFlashcard = byte(0x03)
	prefixEdgePair  = byte(0x04)
)

// ErrStorageClosed is returned by every operation after Close.
var ErrStorageClosed = errors.New("badger store is closed")

// Options configures the store.
type Options struct {
	// DataDir is where BadgerDB keeps its files. Ignored when InMemory is set.
	DataDir    string
	InMemory   bool
	SyncWrites bool
	// Logger receives BadgerDB's internal log lines. Nil silences them.
	Logger *zap.Logger
}

// Store implements repository.Repository on BadgerDB.
type Store struct {
	db     *badger.DB
	mu     sync.RWMutex
	closed bool
}

var _ repository.Repository = (*Store)(nil)

// Open opens (or creates) the database described by opts.
func Open(opts Options) (*Store, error) {
	badgerOpts := badger.DefaultOptions(opts.DataDir)
	if opts.InMemory {
		badgerOpts = badgerOpts.WithInMemory(true).WithDir("").WithValueDir("")
	}
	if opts.SyncWrites {
		badgerOpts = badgerOpts.WithSyncWrites(true)
	}
	if opts.Logger != nil {
		badgerOpts = badgerOpts.WithLogger(zapLogger{opts.Logger.Sugar()})
	} else {
		badgerOpts = badgerOpts.WithLogger(nil)
	}

	// Small tables keep the footprint reasonable for a single-user store.
	badgerOpts = badgerOpts.
		WithMemTableSize(16 << 20).
		WithValueLogFileSize(64 << 20).
		WithNumMemtables(2).
		WithNumLevelZeroTables(2).
		WithNumLevelZeroTablesStall(4).
		WithBlockCacheSize(32 << 20).
		WithIndexCacheSize(16 << 20)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a throwaway store, used by tests.
func OpenInMemory() (*Store, error) {
	return Open(Options{InMemory: true})
}

// zapLogger adapts zap to badger.Logger.
type zapLogger struct {
	s *zap.SugaredLogger
}

func (l zapLogger) Errorf(f string, v ...interface{})   { l.s.Errorf(f, v...) }
func (l zapLogger) Warningf(f string, v ...interface{}) { l.s.Warnf(f, v...) }
func (l zapLogger) Infof(f string, v ...interface{})    { l.s.Debugf(f, v...) }
func (l zapLogger) Debugf(f string, v ...interface{})   { l.s.Debugf(f, v...) }

func ownedKey(prefix byte, ownerID string, parts ...string) []byte {
	key := make([]byte, 0, 1+len(ownerID)+1+40)
	key = append(key, prefix)
	key = append(key, ownerID...)
	for _, p := range parts {
		key = append(key, 0x00)
		key = append(key, p...)
	}
	return key
}

func ownerPrefix(prefix byte, ownerID string) []byte {
	return append(ownedKey(prefix, ownerID), 0x00)
}

func (s *Store) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStorageClosed
	}
	return nil
}

// translate maps transaction conflicts onto the repository error.
func translate(resource, id string, err error) error {
	if errors.Is(err, badger.ErrConflict) {
		return repository.NewConflict(resource, id, "concurrent transaction")
	}
	return err
}

func getJSON(txn *badger.Txn, key []byte, out interface{}) (bool, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}

func setJSON(txn *badger.Txn, key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode value: %w", err)
	}
	return txn.Set(key, data)
}

// scan decodes every value under prefix with decode.
func scan(txn *badger.Txn, prefix []byte, decode func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := it.Item().Value(decode); err != nil {
			return err
		}
	}
	return nil
}

// Node operations

func (s *Store) CreateNode(ctx context.Context, node *domain.Node) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	key := ownedKey(prefixNode, node.OwnerID, node.ID)
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return repository.NewConflict("node", node.ID, "already exists")
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return setJSON(txn, key, node)
	})
	return translate("node", node.ID, err)
}

func (s *Store) FindNodeByID(ctx context.Context, ownerID, nodeID string) (*domain.Node, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	var n domain.Node
	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		found, err = getJSON(txn, ownedKey(prefixNode, ownerID, nodeID), &n)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, repository.NewNotFound("node", nodeID, ownerID)
	}
	return &n, nil
}

func (s *Store) FindNodes(ctx context.Context, query repository.NodeQuery) ([]*domain.Node, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}

	result := make([]*domain.Node, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		return scan(txn, ownerPrefix(prefixNode, query.OwnerID), func(val []byte) error {
			var n domain.Node
			if err := json.Unmarshal(val, &n); err != nil {
				return err
			}
			if query.Matches(n) {
				result = append(result, &n)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	repository.SortNodes(result)
	return repository.Limit(result, query.Limit), nil
}

func (s *Store) UpdateNode(ctx context.Context, node *domain.Node, expectedVersion int) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	key := ownedKey(prefixNode, node.OwnerID, node.ID)
	err := s.db.Update(func(txn *badger.Txn) error {
		var current domain.Node
		found, err := getJSON(txn, key, &current)
		if err != nil {
			return err
		}
		if !found {
			return repository.NewNotFound("node", node.ID, node.OwnerID)
		}
		if current.Version != expectedVersion {
			return repository.VersionMismatch("node", node.ID, expectedVersion, current.Version)
		}
		return setJSON(txn, key, node)
	})
	return translate("node", node.ID, err)
}

func (s *Store) DeleteNode(ctx context.Context, ownerID, nodeID string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	key := ownedKey(prefixNode, ownerID, nodeID)
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return repository.NewNotFound("node", nodeID, ownerID)
		} else if err != nil {
			return err
		}
		return txn.Delete(key)
	})
	return translate("node", nodeID, err)
}

// Edge operations

func (s *Store) CreateEdge(ctx context.Context, edge *domain.Edge) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	key := ownedKey(prefixEdge, edge.OwnerID, edge.ID)
	pairKey := ownedKey(prefixEdgePair, edge.OwnerID, edge.From, edge.To)
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return repository.NewConflict("edge", edge.ID, "already exists")
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if item, err := txn.Get(pairKey); err == nil {
			existing, _ := item.ValueCopy(nil)
			return repository.NewConflict("edge", string(existing), "an edge between these nodes already exists")
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := setJSON(txn, key, edge); err != nil {
			return err
		}
		return txn.Set(pairKey, []byte(edge.ID))
	})
	return translate("edge", edge.ID, err)
}

func (s *Store) FindEdgeByID(ctx context.Context, ownerID, edgeID string) (*domain.Edge, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	var e domain.Edge
	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		found, err = getJSON(txn, ownedKey(prefixEdge, ownerID, edgeID), &e)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, repository.NewNotFound("edge", edgeID, ownerID)
	}
	return &e, nil
}

func (s *Store) FindEdges(ctx context.Context, query repository.EdgeQuery) ([]*domain.Edge, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var result []*domain.Edge
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		result, err = s.scanEdges(txn, query)
		return err
	})
	if err != nil {
		return nil, err
	}
	repository.SortEdges(result)
	return result, nil
}

func (s *Store) scanEdges(txn *badger.Txn, query repository.EdgeQuery) ([]*domain.Edge, error) {
	result := make([]*domain.Edge, 0)
	err := scan(txn, ownerPrefix(prefixEdge, query.OwnerID), func(val []byte) error {
		var e domain.Edge
		if err := json.Unmarshal(val, &e); err != nil {
			return err
		}
		if query.Matches(e) {
			result = append(result, &e)
		}
		return nil
	})
	return result, err
}

func deleteEdgeInTxn(txn *badger.Txn, e *domain.Edge) error {
	if err := txn.Delete(ownedKey(prefixEdge, e.OwnerID, e.ID)); err != nil {
		return err
	}
	return txn.Delete(ownedKey(prefixEdgePair, e.OwnerID, e.From, e.To))
}

func (s *Store) DeleteEdge(ctx context.Context, ownerID, edgeID string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		var e domain.Edge
		found, err := getJSON(txn, ownedKey(prefixEdge, ownerID, edgeID), &e)
		if err != nil {
			return err
		}
		if !found {
			return repository.NewNotFound("edge", edgeID, ownerID)
		}
		return deleteEdgeInTxn(txn, &e)
	})
	return translate("edge", edgeID, err)
}

func (s *Store) DeleteEdgesForNode(ctx context.Context, ownerID, nodeID string) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	removed := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		edges, err := s.scanEdges(txn, repository.EdgeQuery{OwnerID: ownerID, Touching: nodeID})
		if err != nil {
			return err
		}
		for _, e := range edges {
			if err := deleteEdgeInTxn(txn, e); err != nil {
				return err
			}
		}
		removed = len(edges)
		return nil
	})
	if err != nil {
		return 0, translate("edge", nodeID, err)
	}
	return removed, nil
}

// Flashcard operations

func (s *Store) CreateFlashcard(ctx context.Context, card *domain.Flashcard) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	key := ownedKey(prefixFlashcard, card.OwnerID, card.ID)
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return repository.NewConflict("flashcard", card.ID, "already exists")
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return setJSON(txn, key, card)
	})
	return translate("flashcard", card.ID, err)
}

func (s *Store) FindFlashcardByID(ctx context.Context, ownerID, cardID string) (*domain.Flashcard, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	var f domain.Flashcard
	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		found, err = getJSON(txn, ownedKey(prefixFlashcard, ownerID, cardID), &f)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, repository.NewNotFound("flashcard", cardID, ownerID)
	}
	return &f, nil
}

func (s *Store) scanFlashcards(txn *badger.Txn, query repository.FlashcardQuery) ([]*domain.Flashcard, error) {
	result := make([]*domain.Flashcard, 0)
	err := scan(txn, ownerPrefix(prefixFlashcard, query.OwnerID), func(val []byte) error {
		var f domain.Flashcard
		if err := json.Unmarshal(val, &f); err != nil {
			return err
		}
		if query.Matches(f) {
			result = append(result, &f)
		}
		return nil
	})
	return result, err
}

func (s *Store) FindFlashcards(ctx context.Context, query repository.FlashcardQuery) ([]*domain.Flashcard, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}
	var result []*domain.Flashcard
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		result, err = s.scanFlashcards(txn, query)
		return err
	})
	if err != nil {
		return nil, err
	}
	repository.SortFlashcards(result)
	return result, nil
}

func (s *Store) UpdateFlashcard(ctx context.Context, card *domain.Flashcard, expectedRevision int) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	key := ownedKey(prefixFlashcard, card.OwnerID, card.ID)
	err := s.db.Update(func(txn *badger.Txn) error {
		var current domain.Flashcard
		found, err := getJSON(txn, key, &current)
		if err != nil {
			return err
		}
		if !found {
			return repository.NewNotFound("flashcard", card.ID, card.OwnerID)
		}
		if current.Revision != expectedRevision {
			return repository.VersionMismatch("flashcard", card.ID, expectedRevision, current.Revision)
		}
		return setJSON(txn, key, card)
	})
	return translate("flashcard", card.ID, err)
}

func (s *Store) DeleteFlashcard(ctx context.Context, ownerID, cardID string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	key := ownedKey(prefixFlashcard, ownerID, cardID)
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return repository.NewNotFound("flashcard", cardID, ownerID)
		} else if err != nil {
			return err
		}
		return txn.Delete(key)
	})
	return translate("flashcard", cardID, err)
}

func (s *Store) DeleteFlashcardsForNode(ctx context.Context, ownerID, nodeID string) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	removed := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		cards, err := s.scanFlashcards(txn, repository.FlashcardQuery{OwnerID: ownerID, NodeID: nodeID})
		if err != nil {
			return err
		}
		for _, c := range cards {
			if err := txn.Delete(ownedKey(prefixFlashcard, ownerID, c.ID)); err != nil {
				return err
			}
		}
		removed = len(cards)
		return nil
	})
	if err != nil {
		return 0, translate("flashcard", nodeID, err)
	}
	return removed, nil
}

func (s *Store) CountFlashcards(ctx context.Context, ownerID string, dueAsOf time.Time) (domain.FlashcardStats, error) {
	if err := s.checkOpen(); err != nil {
		return domain.FlashcardStats{}, err
	}
	var stats domain.FlashcardStats
	err := s.db.View(func(txn *badger.Txn) error {
		cards, err := s.scanFlashcards(txn, repository.FlashcardQuery{OwnerID: ownerID})
		if err != nil {
			return err
		}
		stats.Total = len(cards)
		for _, c := range cards {
			if c.IsDue(dueAsOf) {
				stats.Due++
			}
		}
		return nil
	})
	return stats, err
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.db.View(func(txn *badger.Txn) error { return nil })
}

// Close flushes and closes the database. Further calls return ErrStorageClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// hasOwnerPrefix reports whether key belongs to ownerID under prefix.
func hasOwnerPrefix(key []byte, prefix byte, ownerID string) bool {
	return bytes.HasPrefix(key, ownerPrefix(prefix, ownerID))
}
