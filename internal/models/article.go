package models

import (
	"slices"
	"time"
)

// DeleteResult is the outcome of removing a comment from an article.
type DeleteResult int

const (
	CommentNotFound DeleteResult = iota
	CommentForbidden
	CommentDeleted
)

// Deleted reports whether the comment was removed.
func (r DeleteResult) Deleted() bool {
	return r == CommentDeleted
}

func (r DeleteResult) String() string {
	switch r {
	case CommentDeleted:
		return "deleted"
	case CommentForbidden:
		return "forbidden"
	default:
		return "not_found"
	}
}

// Article is the aggregate root owning its comments. Comments are kept in
// display order and only change through AddComment and
// DeleteCommentByIDAndUser.
type Article struct {
	ID          uint       `json:"-" gorm:"primaryKey"`
	Slug        string     `json:"slug" gorm:"size:255;uniqueIndex;not null"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description"`
	Body        string     `json:"body" gorm:"type:text"`
	AuthorID    uint       `json:"-" gorm:"index;not null"`
	Author      *User      `json:"-" gorm:"foreignKey:AuthorID"`
	Comments    []*Comment `json:"-" gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	removedCommentIDs []uint
}

// NewArticle builds an unsaved article whose slug is derived from title.
func NewArticle(author *User, title, description, body string) *Article {
	return &Article{
		Slug:        Slugify(title),
		Title:       title,
		Description: description,
		Body:        body,
		AuthorID:    author.ID,
		Author:      author,
	}
}

// AddComment appends c to the article. The id is assigned when the
// enclosing unit of work saves the article.
func (a *Article) AddComment(c *Comment) *Comment {
	now := time.Now().UTC()
	c.ID = 0
	c.ArticleID = a.ID
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = c.CreatedAt
	a.Comments = append(a.Comments, c)
	return c
}

// DeleteCommentByIDAndUser removes the comment with the given id if user
// wrote it. Only this article's own comments are considered.
func (a *Article) DeleteCommentByIDAndUser(id uint, user *User) DeleteResult {
	if id == 0 || user == nil {
		return CommentNotFound
	}
	for i, c := range a.Comments {
		if c.ID != id {
			continue
		}
		if c.AuthorID != user.ID {
			return CommentForbidden
		}
		a.Comments = slices.Delete(a.Comments, i, i+1)
		a.removedCommentIDs = append(a.removedCommentIDs, id)
		return CommentDeleted
	}
	return CommentNotFound
}

// PendingComments returns comments added since the article was loaded.
func (a *Article) PendingComments() []*Comment {
	var pending []*Comment
	for _, c := range a.Comments {
		if c.ID == 0 {
			pending = append(pending, c)
		}
	}
	return pending
}

// RemovedCommentIDs returns ids deleted since the article was loaded.
func (a *Article) RemovedCommentIDs() []uint {
	return a.removedCommentIDs
}

// MarkPersisted clears the change set after a store has flushed it.
func (a *Article) MarkPersisted() {
	a.removedCommentIDs = nil
}
