package services

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFollowService(mock pgxmock.PgxPoolIface) *FollowService {
	r := newRepos(mock)
	return NewFollowService(r.follows, r.users, nil)
}

func TestFollow(t *testing.T) {
	mock := newMock(t)
	svc := newFollowService(mock)

	expectUserByName(mock, 2, "bob")
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM follows`).WithArgs(int64(1), int64(2)).
		WillReturnRows(mock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`INSERT INTO follows`).WithArgs(int64(1), int64(2)).
		WillReturnRows(mock.NewRows([]string{"id", "created_at"}).AddRow(int64(5), fixedTS))

	follow, err := svc.Follow(context.Background(), 1, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), follow.FollowerID)
	assert.Equal(t, int64(2), follow.FollowingID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRejectsSelfAndDuplicate(t *testing.T) {
	mock := newMock(t)
	svc := newFollowService(mock)

	expectUserByName(mock, 1, "ann")
	_, err := svc.Follow(context.Background(), 1, "ann")
	assert.ErrorIs(t, err, ErrSelfFollow)

	expectUserByName(mock, 2, "bob")
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM follows`).WithArgs(int64(1), int64(2)).
		WillReturnRows(mock.NewRows([]string{"exists"}).AddRow(true))
	_, err = svc.Follow(context.Background(), 1, "bob")
	assert.ErrorIs(t, err, ErrAlreadyFollowing)

	mock.ExpectQuery(`FROM users WHERE username = \$1`).WithArgs("ghost").WillReturnError(pgx.ErrNoRows)
	_, err = svc.Follow(context.Background(), 1, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnfollowTwice(t *testing.T) {
	mock := newMock(t)
	svc := newFollowService(mock)

	expectUserByName(mock, 2, "bob")
	mock.ExpectExec(`DELETE FROM follows`).WithArgs(int64(1), int64(2)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	expectUserByName(mock, 2, "bob")
	mock.ExpectExec(`DELETE FROM follows`).WithArgs(int64(1), int64(2)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, svc.Unfollow(context.Background(), 1, "bob"))
	assert.ErrorIs(t, svc.Unfollow(context.Background(), 1, "bob"), ErrNotFollowing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowLists(t *testing.T) {
	mock := newMock(t)
	svc := newFollowService(mock)

	expectUserByName(mock, 1, "ann")
	mock.ExpectQuery(`JOIN users u ON u.id = f.follower_id`).WithArgs(int64(1)).
		WillReturnRows(mock.NewRows([]string{"username"}).AddRow("bob").AddRow("cat"))

	names, err := svc.Followers(context.Background(), "ann")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "cat"}, names)
}
