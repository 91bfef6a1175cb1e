package objects

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/internal/pagination"
)

func TestBuilder_Post(t *testing.T) {
	b := NewBuilder(func(ref string) string { return "/media/" + ref })
	groupID := int64(3)
	post := &models.Post{
		ID:       7,
		Text:     "hello",
		PubDate:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		AuthorID: 1,
		GroupID:  &groupID,
		Image:    "posts/a.gif",
		Author:   &models.User{ID: 1, Username: "alice"},
		Group:    &models.Group{ID: 3, Title: "Cats", Slug: "cats"},
	}

	obj := b.Post(post)
	assert.Equal(t, int64(7), obj["id"])
	assert.Equal(t, "2024-05-01T10:00:00Z", obj["pub_date"])
	assert.Equal(t, "/media/posts/a.gif", obj["image"])
	assert.Equal(t, "/posts/7/", obj["url"])

	author, ok := obj["author"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "alice", author["username"])
	assert.Equal(t, "/profile/alice/", author["url"])

	group, ok := obj["group"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "/group/cats/", group["url"])
}

func TestBuilder_PostWithoutGroupOrImage(t *testing.T) {
	b := NewBuilder(nil)
	obj := b.Post(&models.Post{ID: 1, Author: &models.User{ID: 1, Username: "bob"}})

	assert.Nil(t, obj["image"])
	assert.Nil(t, obj["group"])
}

func TestBuilder_Page(t *testing.T) {
	b := NewBuilder(nil)
	posts := []models.Post{{ID: 2}, {ID: 1}}
	page := pagination.NewPage(posts, pagination.NewWindow(12, 2, "2"))

	obj := b.Page(page)
	assert.Equal(t, 2, obj["number"])
	assert.Equal(t, 6, obj["num_pages"])
	assert.Equal(t, true, obj["has_next"])
	assert.Equal(t, true, obj["has_previous"])
	assert.Equal(t, 3, obj["next_page_number"])
	assert.Len(t, obj["object_list"], 2)
}
