package shared

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExecer struct {
	sql  []string
	args [][]any
	err  error
	tag  pgconn.CommandTag
}

func (e *recordingExecer) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	e.sql = append(e.sql, sql)
	e.args = append(e.args, args)
	return e.tag, e.err
}

func TestAuditLoggerRecord(t *testing.T) {
	db := &recordingExecer{}
	logger := NewAuditLogger(db)

	err := logger.Record(context.Background(), AuditLog{
		ActorID:  3,
		Role:     RoleQuotationOfficer,
		Action:   "REQUEST_ACCEPT",
		Entity:   "quotation_request",
		EntityID: "12",
		Meta:     map[string]any{"from": "Pending"},
	})
	require.NoError(t, err)
	require.Len(t, db.args, 1)
	assert.Equal(t, int64(3), db.args[0][0])
	assert.Equal(t, "QuotationOfficer", db.args[0][1])

	var meta map[string]any
	require.NoError(t, json.Unmarshal(db.args[0][5].([]byte), &meta))
	assert.Equal(t, "Pending", meta["from"])
	assert.Nil(t, db.args[0][6])
}

func TestAuditLoggerRequiresFields(t *testing.T) {
	logger := NewAuditLogger(&recordingExecer{})
	require.Error(t, logger.Record(context.Background(), AuditLog{Action: "X"}))

	var nilLogger *AuditLogger
	require.Error(t, nilLogger.Record(context.Background(), AuditLog{}))
}

func TestIdempotencyStoreConflict(t *testing.T) {
	db := &recordingExecer{err: &pgconn.PgError{Code: "23505"}}
	store := NewIdempotencyStore(db)

	err := store.CheckAndInsert(context.Background(), "abc", "quotation")
	assert.ErrorIs(t, err, ErrIdempotencyConflict)

	db.err = errors.New("connection reset")
	err = store.CheckAndInsert(context.Background(), "abc", "quotation")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrIdempotencyConflict)

	require.Error(t, store.CheckAndInsert(context.Background(), "", "quotation"))
	require.Error(t, store.CheckAndInsert(context.Background(), "abc", ""))
}

func TestIdempotencyStoreDeleteIsModuleScoped(t *testing.T) {
	db := &recordingExecer{}
	store := NewIdempotencyStore(db)

	require.NoError(t, store.Delete(context.Background(), "7:abc", "quotation"))
	require.Len(t, db.sql, 1)
	assert.Contains(t, db.sql[0], "module=$1 AND key=$2")
	assert.Equal(t, []any{"quotation", "7:abc"}, db.args[0])

	require.Error(t, store.Delete(context.Background(), "", "quotation"))
}

func TestIdempotencyStoreCleanup(t *testing.T) {
	db := &recordingExecer{tag: pgconn.NewCommandTag("DELETE 4")}
	store := NewIdempotencyStore(db)

	n, err := store.Cleanup(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	cutoff := db.args[0][0].(time.Time)
	assert.WithinDuration(t, time.Now().Add(-24*time.Hour), cutoff, time.Minute)
}
