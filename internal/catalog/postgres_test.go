package catalog

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresRepository(mock), mock
}

func TestPostgresRepository_ListServices(t *testing.T) {
	repo, mock := newMockRepo(t)
	forty := 40.0
	rows := pgxmock.NewRows([]string{"id", "name", "category", "duration_minutes", "price"}).
		AddRow("svc-1", "Haircut", "Hair", 30, &forty).
		AddRow("svc-2", "Consultation", "Hair", 15, (*float64)(nil))
	mock.ExpectQuery(`SELECT (.+) FROM services WHERE is_active = \$1 ORDER BY category, name`).
		WithArgs(true).
		WillReturnRows(rows)

	got, err := repo.ListServices(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Haircut", got[0].Name)
	assert.Equal(t, 30, got[0].DurationMinutes)
	require.NotNil(t, got[0].Price)
	assert.Equal(t, 40.0, *got[0].Price)
	assert.Nil(t, got[1].Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListLocations(t *testing.T) {
	repo, mock := newMockRepo(t)
	rows := pgxmock.NewRows([]string{"id", "name", "address", "external_branch_ref"}).
		AddRow("loc-1", "Downtown", "1 Main St", "branch-9")
	mock.ExpectQuery(`SELECT (.+) FROM locations WHERE is_active = \$1 ORDER BY name`).
		WithArgs(true).
		WillReturnRows(rows)

	got, err := repo.ListLocations(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "branch-9", got[0].BranchRef)
	assert.Equal(t, "1 Main St", got[0].Address)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListStylists(t *testing.T) {
	repo, mock := newMockRepo(t)
	rows := pgxmock.NewRows([]string{"id", "external_staff_ref", "name", "photo_url"}).
		AddRow("sty-1", "staff-42", "Ana", "https://cdn.example.com/ana.jpg").
		AddRow("sty-2", "", "Bea", "")
	mock.ExpectQuery(`SELECT (.+) FROM staff WHERE branch_ref = \$1 AND is_active = \$2 AND is_calendar_visible = \$3`).
		WithArgs("branch-9", true, true).
		WillReturnRows(rows)

	got, err := repo.ListStylists(context.Background(), "branch-9")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "staff-42", got[0].StaffRef)
	assert.Equal(t, "https://cdn.example.com/ana.jpg", got[0].PhotoURL)
	assert.Empty(t, got[1].StaffRef)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_QueryError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`FROM locations`).WithArgs(true).WillReturnError(errors.New("connection reset"))

	_, err := repo.ListLocations(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog: list locations")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPostgresRepository_RequiresPool(t *testing.T) {
	assert.Panics(t, func() { NewPostgresRepository(nil) })
}
