package teams

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaftdelgado/aureum-services/internal/common"
	"github.com/jaftdelgado/aureum-services/internal/dbx"
	"github.com/jaftdelgado/aureum-services/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

var (
	teamColumns = []string{"team_id", "public_id", "professor_id", "name", "description", "team_pic", "access_code", "created_at"}
	publicID    = uuid.MustParse("0b7f2a4e-3c55-4f4e-9a43-1d2f6e7c8a90")
	professorID = uuid.MustParse("5a1c9d3e-7b2f-4c8a-8e6d-2f4a1b3c5d7e")
	createdAt   = time.Date(2025, 11, 13, 10, 0, 0, 0, time.UTC)
)

func teamRows(pic any) *sqlmock.Rows {
	return sqlmock.NewRows(teamColumns).
		AddRow(int64(1), publicID.String(), professorID.String(), "Algoritmos", nil, pic, "AB12CD34", createdAt)
}

const insertQ = `(?s)^INSERT\s+INTO\s+teams\s+AS\s+t\s*\(public_id,\s*professor_id,\s*name,\s*description,\s*team_pic,\s*access_code\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)\s*RETURNING\s+t\.team_id`

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	pic := "blob-1"

	mock.ExpectQuery(insertQ).
		WithArgs(publicID, professorID, "Algoritmos", nil, "blob-1", "AB12CD34").
		WillReturnRows(teamRows("blob-1"))

	got, err := repo.Create(context.Background(), &models.Team{
		PublicID: publicID, ProfessorID: professorID, Name: "Algoritmos", TeamPic: &pic, AccessCode: "AB12CD34",
	})
	require.NoError(t, err)
	assert.Equal(t, publicID, got.PublicID)
	assert.Equal(t, professorID, got.ProfessorID)
	require.NotNil(t, got.TeamPic)
	assert.Equal(t, "blob-1", *got.TeamPic)
	assert.Nil(t, got.Description)
}

func TestCreate_AccessCodeCollision(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQ).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: AccessCodeConstraint})

	_, err := repo.Create(context.Background(), &models.Team{PublicID: publicID, ProfessorID: professorID, AccessCode: "AB12CD34"})
	require.ErrorIs(t, err, common.ErrorConflict)
	assert.True(t, dbx.IsConstraint(err, AccessCodeConstraint))
}

func TestGetByAccessCode(t *testing.T) {
	q := `(?s)FROM\s+teams\s+t\s+WHERE\s+t\.access_code\s*=\s*\$1$`

	t.Run("found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs("AB12CD34").WillReturnRows(teamRows(nil))

		got, err := repo.GetByAccessCode(context.Background(), "AB12CD34")
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.TeamID)
		assert.Nil(t, got.TeamPic)
	})

	t.Run("invalid code", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs("ZZZZZZZZ").WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByAccessCode(context.Background(), "ZZZZZZZZ")
		require.ErrorIs(t, err, common.ErrorNotFound)
	})
}

func TestGetByPublicID_TwiceIsStable(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := `(?s)FROM\s+teams\s+t\s+WHERE\s+t\.public_id\s*=\s*\$1$`
	mock.ExpectQuery(q).WithArgs(publicID).WillReturnRows(teamRows("blob-1"))
	mock.ExpectQuery(q).WithArgs(publicID).WillReturnRows(teamRows("blob-1"))

	first, err := repo.GetByPublicID(context.Background(), publicID)
	require.NoError(t, err)
	second, err := repo.GetByPublicID(context.Background(), publicID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestListByMember_JoinsMemberships(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	userID := uuid.New()

	mock.ExpectQuery(`(?s)JOIN\s+team_memberships\s+m\s+ON\s+m\.team_id\s*=\s*t\.team_id\s+WHERE\s+m\.user_id\s*=\s*\$1`).
		WithArgs(userID).
		WillReturnRows(teamRows(nil))

	got, err := repo.ListByMember(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestList_EmptyAndError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`FROM\s+teams\s+t\s+ORDER\s+BY`).WillReturnRows(sqlmock.NewRows(teamColumns))
	mock.ExpectQuery(`WHERE\s+t\.professor_id`).WithArgs(professorID).WillReturnError(errors.New("db err"))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	_, err = repo.ListByProfessor(context.Background(), professorID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}

func TestUpdateAndSetTeamPic(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	name := "Algoritmos II"

	mock.ExpectQuery(`(?s)^UPDATE\s+teams\s+AS\s+t\s+SET\s+name\s*=\s*COALESCE`).
		WithArgs(publicID, "Algoritmos II", nil).
		WillReturnRows(teamRows(nil))
	mock.ExpectQuery(`(?s)^UPDATE\s+teams\s+AS\s+t\s+SET\s+team_pic\s*=\s*\$2`).
		WithArgs(publicID, "blob-9").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), publicID, models.TeamPatch{Name: &name})
	require.NoError(t, err)

	_, err = repo.SetTeamPic(context.Background(), publicID, "blob-9")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(`^DELETE\s+FROM\s+teams\s+WHERE\s+public_id\s*=\s*\$1$`).WithArgs(publicID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^DELETE\s+FROM\s+teams`).WithArgs(publicID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), publicID))
	require.ErrorIs(t, repo.Delete(context.Background(), publicID), common.ErrorNotFound)
}
