package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docquery/core"
	"github.com/poiesic/docquery/storage"
)

// ConversationRepository implements storage.ConversationRepository for BadgerDB.
type ConversationRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ConversationRepository = (*ConversationRepository)(nil)

// NewConversationRepository creates a new ConversationRepository.
func NewConversationRepository(backend *Backend) (*ConversationRepository, error) {
	idSeq, err := backend.GetSequence(conversationIDSeq)
	if err != nil {
		return nil, err
	}

	return &ConversationRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ConversationRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *ConversationRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddConversation adds a conversation to storage.
func (r *ConversationRepository) AddConversation(ctx context.Context, conversation *core.Conversation) (*core.Conversation, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		nextID, err := nextSequenceID(r.idSeq)
		if err != nil {
			return err
		}
		conversation.Id = core.ID(nextID)

		if conversation.CreatedAt.IsZero() {
			conversation.CreatedAt = time.Now().UTC()
		}

		key := makeConversationKey(conversation.Id)
		if err := tx.Set(key, storage.MarshalConversation(conversation)); err != nil {
			return err
		}

		dateKey := makeConversationDateKey(conversation.CreatedAt, conversation.Id)
		if err := tx.Set(dateKey, storage.MarshalID(conversation.Id)); err != nil {
			return err
		}

		return tx.Commit()
	}, true)

	return conversation, err
}

// GetConversation retrieves a single conversation by ID.
func (r *ConversationRepository) GetConversation(ctx context.Context, id core.ID) (*core.Conversation, error) {
	var result *core.Conversation
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readConversation(tx, makeConversationKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetConversations retrieves all conversations, newest first.
func (r *ConversationRepository) GetConversations(ctx context.Context) ([]*core.Conversation, error) {
	var results []*core.Conversation
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		startKey := makeConversationDateKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC), core.ID(^uint64(0)))
		prefix := []byte(conversationDatePrefix + ":")

		for iter.Seek(startKey); iter.ValidForPrefix(prefix); iter.Next() {
			var conversationID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				conversationID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			conversation, err := r.readConversation(tx, makeConversationKey(conversationID))
			if err != nil {
				return err
			}
			if conversation != nil {
				results = append(results, conversation)
			}
		}
		return nil
	}, false)

	return results, err
}

// SetTitle assigns a conversation's title exactly once.
func (r *ConversationRepository) SetTitle(ctx context.Context, id core.ID, title string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeConversationKey(id)
		conversation, err := r.readConversation(tx, key)
		if err != nil {
			return err
		}
		if conversation == nil {
			return storage.ErrNotFound
		}
		if conversation.Title != "" {
			return storage.ErrTitleAlreadySet
		}

		conversation.Title = title
		if err := tx.Set(key, storage.MarshalConversation(conversation)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// readConversation reads a conversation within a transaction.
// Returns nil (not an error) if the key doesn't exist.
func (r *ConversationRepository) readConversation(tx *badger.Txn, key []byte) (*core.Conversation, error) {
	item, err := tx.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var conversation *core.Conversation
	err = item.Value(func(val []byte) error {
		var err error
		conversation, err = storage.UnmarshalConversation(val)
		return err
	})
	return conversation, err
}
