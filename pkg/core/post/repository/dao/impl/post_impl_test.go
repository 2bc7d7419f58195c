package dao

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apperrors "mini-twitter/pkg/common/errors"
	"mini-twitter/pkg/core/post/model"
)

func newRepoWithMock(t *testing.T) (*GormPostRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return NewGormPostRepository(db), mock
}

var postColumns = []string{"id", "content", "author", "created_at", "modified_at"}

func TestCreate_AssignsID(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `posts`").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	p := &model.Post{Content: "hello", Author: "alice", CreatedAt: time.Now()}
	require.NoError(t, repo.Create(context.Background(), p))
	assert.Equal(t, int64(42), p.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	created := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT \\* FROM `posts` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows(postColumns).AddRow(int64(5), "hello", "alice", created, nil))

	p, err := repo.FindByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "hello", p.Content)
	assert.Equal(t, "alice", p.Author)
	assert.Nil(t, p.ModifiedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery("SELECT \\* FROM `posts` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows(postColumns))

	_, err := repo.FindByID(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrRecordNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindPage(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `posts`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(15)))
	mock.ExpectQuery("SELECT \\* FROM `posts` ORDER BY created_at DESC, id DESC LIMIT").
		WillReturnRows(sqlmock.NewRows(postColumns).
			AddRow(int64(5), "five", "alice", now.Add(-5*time.Minute), nil).
			AddRow(int64(4), "four", "alice", now.Add(-6*time.Minute), nil))

	posts, total, err := repo.FindPage(context.Background(), 10, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(15), total)
	require.Len(t, posts, 2)
	assert.Equal(t, int64(5), posts[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindPage_EmptyTableSkipsSelect(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `posts`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))

	posts, total, err := repo.FindPage(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, posts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	at := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `posts` SET .* WHERE id = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), model.Post{ID: 3, Content: "new", ModifiedAt: &at})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_NoRowsIsNotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	at := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `posts` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), model.Post{ID: 3, Content: "new", ModifiedAt: &at})
	assert.ErrorIs(t, err, apperrors.ErrRecordNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `posts` WHERE `posts`.`id` = \\?").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `posts`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), 3)
	assert.ErrorIs(t, err, apperrors.ErrRecordNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_DatabaseError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `posts`").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 3)
	assert.ErrorIs(t, err, apperrors.ErrDatabaseInternal)
	require.NoError(t, mock.ExpectationsWereMet())
}
