package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitDeclaresConcurrencyGuards(t *testing.T) {
	body, err := fs.ReadFile(Files, "0001_init.sql")
	require.NoError(t, err)
	sql := string(body)
	require.True(t, strings.HasPrefix(sql, "-- +goose Up\n"))
	require.Contains(t, sql, "-- +goose Down")
	require.Contains(t, sql, "PRIMARY KEY (module, key)")
	require.Contains(t, sql, "CONSTRAINT quotation_details_quotation_request_id_key UNIQUE (quotation_request_id)")
	require.Contains(t, sql, "PRIMARY KEY (doc_type, period)")
	for _, table := range []string{"quotation_requests", "quotation_details", "quotation_responses", "rate_schedules", "idempotency_keys", "audit_logs"} {
		require.True(t, strings.Contains(sql, "CREATE TABLE IF NOT EXISTS "+table+" ("), table)
	}
}
