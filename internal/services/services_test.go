package services

import (
	"bytes"
	"errors"
	"mime/multipart"
	"testing"
	"time"

	"fitfeed-backend/internal/repository"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

var (
	errDB   = errors.New("db error")
	fixedTS = time.Date(2024, 3, 9, 8, 30, 0, 0, time.UTC)
)

var userCols = []string{
	"id", "email", "username", "password_hash", "height", "weight", "body_fat", "push_token", "created_at",
}

var postCols = []string{"id", "author_id", "username", "content", "location", "timestamp"}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

type repos struct {
	users    *repository.UserRepository
	follows  *repository.FollowRepository
	posts    *repository.PostRepository
	comments *repository.CommentRepository
	likes    *repository.LikeRepository
}

func newRepos(mock pgxmock.PgxPoolIface) repos {
	return repos{
		users:    repository.NewUserRepository(mock),
		follows:  repository.NewFollowRepository(mock),
		posts:    repository.NewPostRepository(mock),
		comments: repository.NewCommentRepository(mock),
		likes:    repository.NewLikeRepository(mock),
	}
}

func userRows(mock pgxmock.PgxPoolIface, id int64, username, hash string, pushToken *string) *pgxmock.Rows {
	return mock.NewRows(userCols).AddRow(
		id, username+"@example.com", username, hash,
		(*float64)(nil), (*float64)(nil), (*float64)(nil), pushToken, fixedTS,
	)
}

func expectUserByID(mock pgxmock.PgxPoolIface, id int64, username string) {
	mock.ExpectQuery(`FROM users WHERE id = \$1`).WithArgs(id).
		WillReturnRows(userRows(mock, id, username, "hash", nil))
}

func expectUserByName(mock pgxmock.PgxPoolIface, id int64, username string) {
	mock.ExpectQuery(`FROM users WHERE username = \$1`).WithArgs(username).
		WillReturnRows(userRows(mock, id, username, "hash", nil))
}

func expectPostAuthor(mock pgxmock.PgxPoolIface, postID, authorID int64) {
	mock.ExpectQuery(`SELECT author_id FROM posts`).WithArgs(postID).
		WillReturnRows(mock.NewRows([]string{"author_id"}).AddRow(authorID))
}

func expectEmptyRelations(mock pgxmock.PgxPoolIface) {
	mock.ExpectQuery(`FROM workouts WHERE post_id = ANY`).
		WillReturnRows(mock.NewRows([]string{"id", "post_id", "type", "subtype"}))
	mock.ExpectQuery(`FROM images WHERE post_id = ANY`).
		WillReturnRows(mock.NewRows([]string{"id", "post_id", "path"}))
	mock.ExpectQuery(`FROM comments c`).
		WillReturnRows(mock.NewRows([]string{"id", "post_id", "author_id", "username", "content", "timestamp"}))
	mock.ExpectQuery(`FROM likes l`).
		WillReturnRows(mock.NewRows([]string{"id", "post_id", "author_id", "username", "timestamp"}))
}

func fileHeader(t *testing.T, name string, body []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("images", name)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["images"][0]
}

func strPtr(s string) *string { return &s }
