package addresses

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var addressCols = []string{"id", "user_id", "label", "recipient", "phone", "line1", "line2", "city", "state", "postal_code", "country", "is_default", "created_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestListByUser_OrdersDefaultFirst(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	now := time.Now()
	mock.ExpectQuery(`(?s)FROM\s+addresses\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+is_default\s+DESC,\s*created_at\s+DESC,\s*id\s+DESC`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(addressCols).
			AddRow(int64(2), int64(1), "Home", "Ann", "", "1 Main", "", "Riga", "", "LV-1", "LV", true, now).
			AddRow(int64(3), int64(1), "Work", "Ann", "", "2 Main", "", "Riga", "", "LV-1", "LV", false, now))

	got, err := repo.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].IsDefault)
	assert.Equal(t, "Work", got[1].Label)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`FROM\s+addresses\s+WHERE\s+id`).WithArgs(int64(5)).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 5)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestLockOwner(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`SELECT\s+id\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s+FOR\s+UPDATE`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	require.NoError(t, repo.LockOwner(context.Background(), 1))
}

func TestLockOwner_UnknownUser(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`FOR\s+UPDATE`).WithArgs(int64(1)).WillReturnError(sql.ErrNoRows)

	assert.ErrorIs(t, repo.LockOwner(context.Background(), 1), common.ErrorNotFound)
}

func TestClearDefault(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(`UPDATE\s+addresses\s+SET\s+is_default\s*=\s*FALSE\s+WHERE\s+user_id\s*=\s*\$1`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ClearDefault(context.Background(), 1))
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT\s+INTO\s+addresses`).
		WithArgs(int64(1), "Home", "Ann", "", "1 Main", "", "Riga", "", "LV-1", "LV", true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(9), time.Now()))

	a, err := repo.Create(context.Background(), &models.Address{
		UserID: 1, Label: "Home", Recipient: "Ann", Line1: "1 Main", City: "Riga", PostalCode: "LV-1", Country: "LV", IsDefault: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), a.ID)
}

func TestCreate_SecondDefaultRejectedByIndex(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`INSERT\s+INTO\s+addresses`).WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.Address{UserID: 1, IsDefault: true})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`UPDATE\s+addresses\s+SET\s+label`).WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), &models.Address{ID: 5})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDeleteAndSetDefault_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(`DELETE\s+FROM\s+addresses`).WithArgs(int64(5)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE\s+addresses\s+SET\s+is_default\s*=\s*TRUE\s+WHERE\s+id\s*=\s*\$1`).WithArgs(int64(5)).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 5), common.ErrorNotFound)
	assert.ErrorIs(t, repo.SetDefault(context.Background(), 5), common.ErrorNotFound)
}

func TestPromoteLatest(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)UPDATE\s+addresses\s+SET\s+is_default\s*=\s*TRUE.*ORDER\s+BY\s+created_at\s+DESC,\s*id\s+DESC\s+LIMIT\s+1`
	mock.ExpectExec(q).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs(int64(2)).WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.PromoteLatest(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.PromoteLatest(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}
