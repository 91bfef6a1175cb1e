package feed_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yatube/yatube/internal/db"
	"github.com/yatube/yatube/internal/db/dbtest"
	"github.com/yatube/yatube/internal/feed"
	"github.com/yatube/yatube/internal/models"
)

type fixture struct {
	svc   *feed.Service
	d     *db.DB
	alice *models.User
	bob   *models.User
	carol *models.User
	cats  *models.Group
	dogs  *models.Group
}

func setup(t *testing.T, pageSize int) *fixture {
	t.Helper()
	d := dbtest.New(t)
	return &fixture{
		svc:   feed.NewService(db.NewRepository(d.DB), pageSize),
		d:     d,
		alice: dbtest.User(t, d, "alice"),
		bob:   dbtest.User(t, d, "bob"),
		carol: dbtest.User(t, d, "carol"),
		cats:  dbtest.Group(t, d, "cats"),
		dogs:  dbtest.Group(t, d, "dogs"),
	}
}

func ids(page feed.PostPage) []int64 {
	out := make([]int64, 0, len(page.Items))
	for _, p := range page.Items {
		out = append(out, p.ID)
	}
	return out
}

func assertNewestFirst(t *testing.T, page feed.PostPage) {
	t.Helper()
	for i := 1; i < len(page.Items); i++ {
		prev, cur := page.Items[i-1], page.Items[i]
		assert.False(t, cur.PubDate.After(prev.PubDate), "post %d after post %d", cur.ID, prev.ID)
		if cur.PubDate.Equal(prev.PubDate) {
			assert.Less(t, cur.ID, prev.ID)
		}
	}
}

func TestGlobal_PaginatesNewestFirst(t *testing.T) {
	f := setup(t, 10)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 13; i++ {
		dbtest.Post(t, f.d, f.alice, nil, fmt.Sprintf("post %d", i), base.Add(time.Duration(i)*time.Minute))
	}

	first, err := f.svc.Global(ctx, "")
	require.NoError(t, err)
	assert.Len(t, first.Items, 10)
	assert.Equal(t, 2, first.NumPages)
	assert.Equal(t, "post 12", first.Items[0].Text)
	assertNewestFirst(t, first)

	second, err := f.svc.Global(ctx, "2")
	require.NoError(t, err)
	assert.Len(t, second.Items, 3)
	assert.Equal(t, "post 0", second.Items[2].Text)

	clamped, err := f.svc.Global(ctx, "40")
	require.NoError(t, err)
	assert.Equal(t, 2, clamped.Number)
	assert.Equal(t, ids(second), ids(clamped))

	junk, err := f.svc.Global(ctx, "last")
	require.NoError(t, err)
	assert.Equal(t, 1, junk.Number)
}

func TestGlobal_Empty(t *testing.T) {
	f := setup(t, 10)

	page, err := f.svc.Global(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 1, page.NumPages)
	assert.Empty(t, page.Items)
}

func TestNewPostAppearsOnlyInItsScopes(t *testing.T) {
	f := setup(t, 10)
	ctx := context.Background()

	dbtest.Post(t, f.d, f.bob, f.dogs, "unrelated", time.Now().UTC().Add(-time.Hour))
	post := dbtest.Post(t, f.d, f.alice, f.cats, "hello cats", time.Now().UTC())

	global, err := f.svc.Global(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, ids(global), post.ID)

	cats, err := f.svc.Group(ctx, "cats", "")
	require.NoError(t, err)
	assert.Equal(t, []int64{post.ID}, ids(cats.Page))
	assert.Equal(t, "cats", cats.Group.Slug)

	dogs, err := f.svc.Group(ctx, "dogs", "")
	require.NoError(t, err)
	assert.NotContains(t, ids(dogs.Page), post.ID)

	alice, err := f.svc.Profile(ctx, nil, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, []int64{post.ID}, ids(alice.Page))

	bob, err := f.svc.Profile(ctx, nil, "bob", "")
	require.NoError(t, err)
	assert.NotContains(t, ids(bob.Page), post.ID)
}

func TestNotFound(t *testing.T) {
	f := setup(t, 10)
	ctx := context.Background()

	_, err := f.svc.Group(ctx, "nope", "")
	assert.ErrorIs(t, err, feed.ErrNotFound)

	_, err = f.svc.Profile(ctx, f.alice, "nobody", "")
	assert.ErrorIs(t, err, feed.ErrNotFound)
}

func TestProfile_ViewerFlags(t *testing.T) {
	f := setup(t, 10)
	ctx := context.Background()

	dbtest.Post(t, f.d, f.alice, nil, "one", time.Now().UTC())
	dbtest.Post(t, f.d, f.alice, nil, "two", time.Now().UTC())
	dbtest.Follow(t, f.d, f.bob, f.alice)

	tests := []struct {
		name      string
		viewer    *models.User
		following bool
		isSelf    bool
	}{
		{"anonymous", nil, false, false},
		{"follower", f.bob, true, false},
		{"stranger", f.carol, false, false},
		{"author", f.alice, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile, err := f.svc.Profile(ctx, tt.viewer, "alice", "")
			require.NoError(t, err)
			assert.Equal(t, int64(2), profile.PostCount)
			assert.Equal(t, tt.following, profile.Following)
			assert.Equal(t, tt.isSelf, profile.IsSelf)
			assert.Equal(t, "alice", profile.Author.Username)
		})
	}
}

func TestFollowed(t *testing.T) {
	f := setup(t, 10)
	ctx := context.Background()

	_, err := f.svc.Followed(ctx, nil, "")
	assert.ErrorIs(t, err, feed.ErrUnauthenticated)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a1 := dbtest.Post(t, f.d, f.alice, nil, "a1", base)
	dbtest.Post(t, f.d, f.bob, nil, "b1", base.Add(time.Minute))
	a2 := dbtest.Post(t, f.d, f.alice, f.cats, "a2", base.Add(2*time.Minute))

	empty, err := f.svc.Followed(ctx, f.carol, "")
	require.NoError(t, err)
	assert.False(t, empty.HasPosts)
	assert.Empty(t, empty.Page.Items)

	dbtest.Follow(t, f.d, f.carol, f.alice)

	followed, err := f.svc.Followed(ctx, f.carol, "")
	require.NoError(t, err)
	assert.True(t, followed.HasPosts)
	assert.Equal(t, []int64{a2.ID, a1.ID}, ids(followed.Page))
	assertNewestFirst(t, followed.Page)

	// following is directed
	reverse, err := f.svc.Followed(ctx, f.alice, "")
	require.NoError(t, err)
	assert.False(t, reverse.HasPosts)
}
