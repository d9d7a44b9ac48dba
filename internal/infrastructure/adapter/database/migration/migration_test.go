package migration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaIndexes(t *testing.T) {
	t.Run("External reference index is unique and partial", func(t *testing.T) {
		// Two transactions must never claim the same gateway payment, and
		// manual-channel rows with an empty reference must stay exempt.
		stmt := findIndex(t, "idx_transactions_external_ref")

		assert.Contains(t, stmt, "CREATE UNIQUE INDEX")
		assert.Contains(t, stmt, "ON transactions (external_reference)")
		assert.Contains(t, stmt, "WHERE external_reference <> ''")
	})

	t.Run("Every statement is idempotent", func(t *testing.T) {
		for _, stmt := range schemaIndexes {
			assert.Contains(t, stmt, "IF NOT EXISTS")
		}
	})
}

func findIndex(t *testing.T, name string) string {
	t.Helper()
	for _, stmt := range schemaIndexes {
		if strings.Contains(stmt, name) {
			return normalizeWhitespace(stmt)
		}
	}
	require.Failf(t, "index not found", "no statement defines %s", name)
	return ""
}

func normalizeWhitespace(stmt string) string {
	return strings.Join(strings.Fields(stmt), " ")
}
