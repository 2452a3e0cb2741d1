package postgres

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationNames(t *testing.T) {
	up, err := MigrationNames("up")
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_create_users.up.sql", "000002_create_tasks.up.sql", "000003_add_tasks_seq.up.sql"}, up)

	down, err := MigrationNames("down")
	require.NoError(t, err)
	assert.Equal(t, []string{"000003_add_tasks_seq.down.sql", "000002_create_tasks.down.sql", "000001_create_users.down.sql"}, down)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(assert.AnError))
}
