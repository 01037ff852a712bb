package services

import (
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostService(t *testing.T, mock pgxmock.PgxPoolIface) (*PostService, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewDiskStore(dir, "/uploads", ".jpg")
	require.NoError(t, err)
	r := newRepos(mock)
	return NewPostService(r.posts, r.users, store), dir
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestParseWorkouts(t *testing.T) {
	workouts, err := ParseWorkouts(`[{"type":"run","subtype":"interval","exercises":[{"name":"400m","distance":0.4}]},{"type":"lift"}]`)
	require.NoError(t, err)
	require.Len(t, workouts, 2)
	assert.Equal(t, "interval", *workouts[0].Subtype)
	assert.Equal(t, 0.4, *workouts[0].Exercises[0].Distance)
	assert.NotNil(t, workouts[1].Exercises)

	empty, err := ParseWorkouts("  ")
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, raw := range []string{
		`{"type":"run"}`,
		`[{"subtype":"x"}]`,
		`[{"type":"run","exercises":[{"sets":3}]}]`,
		`not json`,
	} {
		_, err := ParseWorkouts(raw)
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr, raw)
	}
}

func TestCreatePost(t *testing.T) {
	mock := newMock(t)
	svc, dir := newPostService(t, mock)

	expectUserByID(mock, 1, "ann")
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO posts`).WithArgs(int64(1), "morning run", pgxmock.AnyArg()).
		WillReturnRows(mock.NewRows([]string{"id", "timestamp"}).AddRow(int64(10), fixedTS))
	mock.ExpectQuery(`INSERT INTO workouts`).WithArgs(int64(10), "run", pgxmock.AnyArg()).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow(int64(20)))
	mock.ExpectQuery(`INSERT INTO images`).WithArgs(int64(10), pgxmock.AnyArg()).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow(int64(30)))
	mock.ExpectCommit()

	post, err := svc.Create(context.Background(), CreatePostInput{
		AuthorID: 1,
		Content:  "morning run",
		Location: "park",
		Workouts: `[{"type":"run"}]`,
		Images:   []*multipart.FileHeader{fileHeader(t, "photo.PNG", []byte("png"))},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), post.ID)
	assert.Equal(t, "ann", post.Author.Username)
	assert.Equal(t, "park", *post.Location)
	require.Len(t, post.Images, 1)
	assert.Equal(t, ".png", filepath.Ext(post.Images[0].Path))
	assert.Contains(t, post.Images[0].Path, "/uploads/")
	assert.Len(t, listDir(t, dir), 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePostRemovesFilesOnFailure(t *testing.T) {
	mock := newMock(t)
	svc, dir := newPostService(t, mock)

	expectUserByID(mock, 1, "ann")
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO posts`).WillReturnError(errDB)
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), CreatePostInput{
		AuthorID: 1,
		Content:  "hello",
		Images: []*multipart.FileHeader{
			fileHeader(t, "a.jpg", []byte("a")),
			fileHeader(t, "b", []byte("b")),
		},
	})
	assert.ErrorIs(t, err, errDB)
	assert.Empty(t, listDir(t, dir))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePostValidation(t *testing.T) {
	mock := newMock(t)
	svc, _ := newPostService(t, mock)

	_, err := svc.Create(context.Background(), CreatePostInput{AuthorID: 1})
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)

	mock.ExpectQuery(`FROM users WHERE id = \$1`).WithArgs(int64(9)).WillReturnError(pgx.ErrNoRows)
	_, err = svc.Create(context.Background(), CreatePostInput{AuthorID: 9, Content: "hi"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFeed(t *testing.T) {
	mock := newMock(t)
	svc, _ := newPostService(t, mock)

	expectUserByID(mock, 1, "ann")
	mock.ExpectQuery(`SELECT following_id FROM follows`).WithArgs(int64(1)).
		WillReturnRows(mock.NewRows(postCols))
	_, err := svc.Feed(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNoPosts)

	expectUserByID(mock, 1, "ann")
	mock.ExpectQuery(`SELECT following_id FROM follows`).WithArgs(int64(1)).
		WillReturnRows(mock.NewRows(postCols).AddRow(int64(10), int64(2), "bob", "run", (*string)(nil), fixedTS))
	expectEmptyRelations(mock)
	posts, err := svc.Feed(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "bob", posts[0].Author.Username)

	mock.ExpectQuery(`FROM users WHERE id = \$1`).WithArgs(int64(9)).WillReturnError(pgx.ErrNoRows)
	_, err = svc.Feed(context.Background(), 9)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePost(t *testing.T) {
	mock := newMock(t)
	svc, dir := newPostService(t, mock)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.jpg"), []byte("a"), 0o600))

	expectPost := func() {
		mock.ExpectQuery(`FROM posts p`).WithArgs(int64(10)).
			WillReturnRows(mock.NewRows(postCols).AddRow(int64(10), int64(1), "ann", "run", (*string)(nil), fixedTS))
		mock.ExpectQuery(`FROM workouts WHERE post_id = ANY`).
			WillReturnRows(mock.NewRows([]string{"id", "post_id", "type", "subtype"}))
		mock.ExpectQuery(`FROM images WHERE post_id = ANY`).
			WillReturnRows(mock.NewRows([]string{"id", "post_id", "path"}).AddRow(int64(30), int64(10), "/uploads/a.jpg"))
		mock.ExpectQuery(`FROM comments c`).
			WillReturnRows(mock.NewRows([]string{"id", "post_id", "author_id", "username", "content", "timestamp"}))
		mock.ExpectQuery(`FROM likes l`).
			WillReturnRows(mock.NewRows([]string{"id", "post_id", "author_id", "username", "timestamp"}))
	}

	expectPost()
	assert.ErrorIs(t, svc.Delete(context.Background(), 2, 10), ErrForbidden)

	expectPost()
	mock.ExpectExec(`DELETE FROM posts`).WithArgs(int64(10)).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, svc.Delete(context.Background(), 1, 10))
	assert.Empty(t, listDir(t, dir))

	mock.ExpectQuery(`FROM posts p`).WithArgs(int64(11)).WillReturnError(pgx.ErrNoRows)
	assert.ErrorIs(t, svc.Delete(context.Background(), 1, 11), ErrPostNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
