package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dooriya/WorkflowBot/internal/activity"
)

// Store defines the interface for the notification target store.
// Methods should accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// Upsert inserts a conversation reference if its identity is not yet
	// stored. Existing records are never mutated, so the operation is
	// idempotent: duplicate installs never create duplicate entries.
	Upsert(ctx context.Context, ref *activity.ConversationReference) error

	// Exists reports whether a reference with the same identity is stored.
	Exists(ctx context.Context, ref *activity.ConversationReference) (bool, error)

	// Remove deletes the reference with the same identity, if present.
	Remove(ctx context.Context, ref *activity.ConversationReference) error

	// List returns all stored references in insertion order.
	List(ctx context.Context) ([]*activity.ConversationReference, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Upsert inserts a conversation reference keyed by its identity. The insert
// is a single ON CONFLICT DO NOTHING statement, so concurrent upserts of the
// same key from different turns cannot produce duplicates.
func (s *sqlxStore) Upsert(ctx context.Context, ref *activity.ConversationReference) error {
	record, err := recordOf(ref)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO conversation_references (key, conversation_id, channel_id, conversation_type, reference, created_at)
        VALUES (:key, :conversation_id, :channel_id, :conversation_type, :reference, :created_at)
        ON CONFLICT (key) DO NOTHING;
    `

	result, err := s.db.NamedExecContext(ctx, query, record)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving conversation reference", "key", record.Key, "error", err)
		return fmt.Errorf("failed to save conversation reference %q: %w", record.Key, err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		s.logger.DebugContext(ctx, "Conversation reference already stored", "key", record.Key)
		return nil
	}

	s.logger.DebugContext(ctx, "Conversation reference saved", "key", record.Key,
		"conversation_id", record.ConversationID, "channel_id", record.ChannelID)
	return nil
}

// Exists reports whether a reference with the same identity is stored.
func (s *sqlxStore) Exists(ctx context.Context, ref *activity.ConversationReference) (bool, error) {
	if ref == nil {
		return false, errors.New("cannot check nil conversation reference")
	}

	var count int
	query := `SELECT COUNT(1) FROM conversation_references WHERE key = ?;`
	if err := s.db.GetContext(ctx, &count, query, ref.Key()); err != nil {
		s.logger.ErrorContext(ctx, "Error checking conversation reference", "key", ref.Key(), "error", err)
		return false, fmt.Errorf("failed to check conversation reference %q: %w", ref.Key(), err)
	}

	return count > 0, nil
}

// Remove deletes the reference with the same identity, if present. Removing
// an absent key is not an error.
func (s *sqlxStore) Remove(ctx context.Context, ref *activity.ConversationReference) error {
	if ref == nil {
		return errors.New("cannot remove nil conversation reference")
	}

	query := `DELETE FROM conversation_references WHERE key = ?;`
	result, err := s.db.ExecContext(ctx, query, ref.Key())
	if err != nil {
		s.logger.ErrorContext(ctx, "Error removing conversation reference", "key", ref.Key(), "error", err)
		return fmt.Errorf("failed to remove conversation reference %q: %w", ref.Key(), err)
	}

	if affected, err := result.RowsAffected(); err == nil {
		s.logger.DebugContext(ctx, "Conversation reference removed", "key", ref.Key(), "affected", affected)
	}
	return nil
}

// List returns all stored references in insertion order.
func (s *sqlxStore) List(ctx context.Context) ([]*activity.ConversationReference, error) {
	var records []ConversationReferenceRecord
	query := `SELECT * FROM conversation_references ORDER BY id ASC;`
	if err := s.db.SelectContext(ctx, &records, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		s.logger.ErrorContext(ctx, "Error listing conversation references", "error", err)
		return nil, fmt.Errorf("failed to list conversation references: %w", err)
	}

	references := make([]*activity.ConversationReference, 0, len(records))
	for _, record := range records {
		var ref activity.ConversationReference
		if err := json.Unmarshal([]byte(record.Reference), &ref); err != nil {
			// A corrupt row should not take down the whole listing.
			s.logger.WarnContext(ctx, "Skipping undecodable conversation reference", "key", record.Key, "error", err)
			continue
		}
		references = append(references, &ref)
	}

	return references, nil
}

// RunSQLMaintenance performs VACUUM on the database to reclaim space.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Running SQL maintenance (VACUUM)...")
	if _, err := s.db.ExecContext(ctx, "VACUUM;"); err != nil {
		return fmt.Errorf("failed to run VACUUM: %w", err)
	}
	s.logger.InfoContext(ctx, "SQL maintenance completed.")
	return nil
}

// recordOf validates a reference and builds its persisted form.
func recordOf(ref *activity.ConversationReference) (*ConversationReferenceRecord, error) {
	if ref == nil {
		return nil, errors.New("cannot save nil conversation reference")
	}
	if ref.Conversation == nil || ref.Conversation.ID == "" {
		return nil, errors.New("conversation reference must have a conversation id")
	}

	serialized, err := json.Marshal(ref)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize conversation reference: %w", err)
	}

	return &ConversationReferenceRecord{
		CreatedAt:        time.Now().UTC(),
		Key:              ref.Key(),
		ConversationID:   ref.Conversation.ID,
		ChannelID:        ref.ChannelID,
		ConversationType: ref.Conversation.ConversationType,
		Reference:        string(serialized),
	}, nil
}
