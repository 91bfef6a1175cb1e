package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yatube/yatube/internal/db"
	"github.com/yatube/yatube/internal/db/dbtest"
	"github.com/yatube/yatube/internal/models"
)

func postIDs(posts []models.Post) []int64 {
	ids := make([]int64, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestPostRepository_List(t *testing.T) {
	d := dbtest.New(t)
	ctx := context.Background()
	repo := db.NewPostRepository(db.NewRepository(d.DB))

	alice := dbtest.User(t, d, "alice")
	bob := dbtest.User(t, d, "bob")
	carol := dbtest.User(t, d, "carol")
	cats := dbtest.Group(t, d, "cats")

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	p1 := dbtest.Post(t, d, alice, cats, "first", base)
	p2 := dbtest.Post(t, d, bob, nil, "second", base.Add(time.Minute))
	p3 := dbtest.Post(t, d, alice, nil, "third", base.Add(2*time.Minute))
	// same timestamp as p3, later id
	p4 := dbtest.Post(t, d, carol, cats, "fourth", base.Add(2*time.Minute))

	tests := []struct {
		name   string
		filter db.PostFilter
		want   []int64
	}{
		{"all", db.PostFilter{}, []int64{p4.ID, p3.ID, p2.ID, p1.ID}},
		{"group", db.PostFilter{GroupID: &cats.ID}, []int64{p4.ID, p1.ID}},
		{"author", db.PostFilter{AuthorID: &alice.ID}, []int64{p3.ID, p1.ID}},
		{"any of authors", db.PostFilter{AuthorIDs: []int64{alice.ID, bob.ID}}, []int64{p3.ID, p2.ID, p1.ID}},
		{"empty author set", db.PostFilter{AuthorIDs: []int64{}}, []int64{}},
		{"group and author", db.PostFilter{GroupID: &cats.ID, AuthorID: &carol.ID}, []int64{p4.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, err := repo.Count(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.want)), count)

			posts, err := repo.List(ctx, tt.filter, 0, 10)
			require.NoError(t, err)
			assert.Equal(t, tt.want, postIDs(posts))
			for _, p := range posts {
				require.NotNil(t, p.Author)
				assert.Equal(t, p.AuthorID, p.Author.ID)
			}
		})
	}

	t.Run("window", func(t *testing.T) {
		posts, err := repo.List(ctx, db.PostFilter{}, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, []int64{p3.ID, p2.ID}, postIDs(posts))
	})
}

func TestPostRepository_UpdateContent(t *testing.T) {
	d := dbtest.New(t)
	ctx := context.Background()
	repo := db.NewPostRepository(db.NewRepository(d.DB))

	alice := dbtest.User(t, d, "alice")
	cats := dbtest.Group(t, d, "cats")
	pubDate := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	post := dbtest.Post(t, d, alice, cats, "before", pubDate)

	require.NoError(t, repo.UpdateContent(ctx, &models.Post{ID: post.ID, Text: "after", Image: "posts/x.png"}))

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "after", got.Text)
	assert.Equal(t, "posts/x.png", got.Image)
	assert.Nil(t, got.GroupID)
	assert.Equal(t, alice.ID, got.AuthorID)
	assert.True(t, pubDate.Equal(got.PubDate))
}

func TestPostRepository_GetByIDMissing(t *testing.T) {
	d := dbtest.New(t)
	repo := db.NewPostRepository(db.NewRepository(d.DB))

	got, err := repo.GetByID(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFollowRepository(t *testing.T) {
	d := dbtest.New(t)
	ctx := context.Background()
	repo := db.NewFollowRepository(db.NewRepository(d.DB))

	alice := dbtest.User(t, d, "alice")
	bob := dbtest.User(t, d, "bob")

	created, err := repo.Create(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Create(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, created, "second insert of the same edge is a no-op")

	assert.Equal(t, int64(1), dbtest.Count(t, d, &models.Follow{}))

	exists, err := repo.Exists(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	ids, err := repo.AuthorIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{bob.ID}, ids)

	removed, err := repo.Delete(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestFollowRepository_RejectsSelfFollowRow(t *testing.T) {
	d := dbtest.New(t)
	repo := db.NewFollowRepository(db.NewRepository(d.DB))
	alice := dbtest.User(t, d, "alice")

	_, err := repo.Create(context.Background(), alice.ID, alice.ID)
	assert.Error(t, err)
	assert.Equal(t, int64(0), dbtest.Count(t, d, &models.Follow{}))
}

func TestCommentRepository_ListByPost(t *testing.T) {
	d := dbtest.New(t)
	ctx := context.Background()
	repo := db.NewCommentRepository(db.NewRepository(d.DB))

	alice := dbtest.User(t, d, "alice")
	post := dbtest.Post(t, d, alice, nil, "post", time.Now().UTC())
	other := dbtest.Post(t, d, alice, nil, "other", time.Now().UTC())

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c1 := &models.Comment{PostID: post.ID, AuthorID: alice.ID, Text: "one", Created: base}
	c2 := &models.Comment{PostID: post.ID, AuthorID: alice.ID, Text: "two", Created: base.Add(time.Second)}
	c3 := &models.Comment{PostID: other.ID, AuthorID: alice.ID, Text: "elsewhere", Created: base}
	for _, c := range []*models.Comment{c1, c2, c3} {
		require.NoError(t, repo.Create(ctx, c))
	}

	comments, err := repo.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, c2.ID, comments[0].ID)
	assert.Equal(t, c1.ID, comments[1].ID)
	require.NotNil(t, comments[0].Author)
	assert.Equal(t, "alice", comments[0].Author.Username)
}
