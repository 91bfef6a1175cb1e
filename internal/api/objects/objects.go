// Package objects builds the JSON view objects handed to templates.
package objects

import (
	"fmt"
	"time"

	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/internal/pagination"
)

// Builder turns models into view objects
type Builder struct {
	imageURL func(ref string) string
}

// NewBuilder creates a builder; imageURL maps stored media references to
// public URLs
func NewBuilder(imageURL func(ref string) string) *Builder {
	if imageURL == nil {
		imageURL = func(ref string) string { return ref }
	}
	return &Builder{imageURL: imageURL}
}

// User builds a user object
func (b *Builder) User(u *models.User) map[string]interface{} {
	if u == nil {
		return nil
	}
	return map[string]interface{}{
		"id":       u.ID,
		"username": u.Username,
		"url":      ProfileURL(u.Username),
	}
}

// Group builds a group object
func (b *Builder) Group(g *models.Group) map[string]interface{} {
	if g == nil {
		return nil
	}
	return map[string]interface{}{
		"id":          g.ID,
		"title":       g.Title,
		"slug":        g.Slug,
		"description": g.Description,
		"url":         fmt.Sprintf("/group/%s/", g.Slug),
	}
}

// Post builds a post object with its author and group
func (b *Builder) Post(p *models.Post) map[string]interface{} {
	obj := map[string]interface{}{
		"id":       p.ID,
		"text":     p.Text,
		"pub_date": p.PubDate.UTC().Format(time.RFC3339),
		"author":   b.User(p.Author),
		"group":    b.Group(p.Group),
		"image":    nil,
		"url":      PostURL(p.ID),
	}
	if p.Image != "" {
		obj["image"] = b.imageURL(p.Image)
	}
	return obj
}

// Comment builds a comment object
func (b *Builder) Comment(c *models.Comment) map[string]interface{} {
	return map[string]interface{}{
		"id":      c.ID,
		"text":    c.Text,
		"created": c.Created.UTC().Format(time.RFC3339),
		"author":  b.User(c.Author),
	}
}

// Comments builds a list of comment objects
func (b *Builder) Comments(comments []models.Comment) []map[string]interface{} {
	result := make([]map[string]interface{}, 0, len(comments))
	for i := range comments {
		result = append(result, b.Comment(&comments[i]))
	}
	return result
}

// Page builds the page_obj of a post listing
func (b *Builder) Page(p pagination.Page[models.Post]) map[string]interface{} {
	posts := pagination.Map(p, func(post models.Post) map[string]interface{} {
		return b.Post(&post)
	})
	return map[string]interface{}{
		"object_list":          posts.Items,
		"number":               p.Number,
		"num_pages":            p.NumPages,
		"count":                p.Count,
		"per_page":             p.PerPage,
		"has_next":             p.HasNext(),
		"has_previous":         p.HasPrevious(),
		"next_page_number":     p.NextNumber(),
		"previous_page_number": p.PreviousNumber(),
	}
}

// Form builds a form object from submitted values and field errors
func Form(data map[string]string, errs map[string][]string) map[string]interface{} {
	if data == nil {
		data = map[string]string{}
	}
	if errs == nil {
		errs = map[string][]string{}
	}
	return map[string]interface{}{
		"data":   data,
		"errors": errs,
	}
}

// PostURL is the detail path of a post
func PostURL(id int64) string {
	return fmt.Sprintf("/posts/%d/", id)
}

// ProfileURL is the profile path of a user
func ProfileURL(username string) string {
	return fmt.Sprintf("/profile/%s/", username)
}
