package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docquery/core"
	"github.com/poiesic/docquery/storage"
)

// MessageRepository implements storage.MessageRepository for BadgerDB.
type MessageRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.MessageRepository = (*MessageRepository)(nil)

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(backend *Backend) (*MessageRepository, error) {
	idSeq, err := backend.GetSequence(messageIDSeq)
	if err != nil {
		return nil, err
	}

	return &MessageRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *MessageRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *MessageRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddMessage adds a message to storage.
func (r *MessageRepository) AddMessage(ctx context.Context, message *core.Message) (*core.Message, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		nextID, err := nextSequenceID(r.idSeq)
		if err != nil {
			return err
		}
		message.Id = core.ID(nextID)

		if message.CreatedAt.IsZero() {
			message.CreatedAt = time.Now().UTC()
		}

		key := makeMessageKey(message.Id)
		if err := tx.Set(key, storage.MarshalMessage(message)); err != nil {
			return err
		}

		// Per-conversation index; message IDs preserve arrival order.
		convKey := makeMessageConvKey(message.ConversationId, message.Id)
		if err := tx.Set(convKey, storage.MarshalID(message.Id)); err != nil {
			return err
		}

		return tx.Commit()
	}, true)

	return message, err
}

// GetMessagesByConversation retrieves all messages of a conversation,
// oldest first.
func (r *MessageRepository) GetMessagesByConversation(ctx context.Context, conversationID core.ID) ([]*core.Message, error) {
	var results []*core.Message
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialMessageConvKey(conversationID)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			var messageID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				messageID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			message, err := r.readMessage(tx, makeMessageKey(messageID))
			if err != nil {
				return err
			}
			if message != nil {
				results = append(results, message)
			}
		}
		return nil
	}, false)

	return results, err
}

// CountMessages returns the number of messages in a conversation.
func (r *MessageRepository) CountMessages(ctx context.Context, conversationID core.ID) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialMessageConvKey(conversationID)

		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			count++
		}
		return nil
	}, false)

	return count, err
}

// readMessage reads a message within a transaction.
// Returns nil (not an error) if the key doesn't exist.
func (r *MessageRepository) readMessage(tx *badger.Txn, key []byte) (*core.Message, error) {
	item, err := tx.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var message *core.Message
	err = item.Value(func(val []byte) error {
		var err error
		message, err = storage.UnmarshalMessage(val)
		return err
	})
	return message, err
}
