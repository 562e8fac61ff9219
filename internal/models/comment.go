package models

import "time"

// Comment belongs to exactly one article. AuthorID never changes once the
// comment is created.
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ArticleID uint      `json:"-" gorm:"index;not null"`
	AuthorID  uint      `json:"-" gorm:"index;not null"`
	Author    *User     `json:"-" gorm:"foreignKey:AuthorID"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewComment builds an unsaved comment written by author.
func NewComment(author *User, body string) *Comment {
	return &Comment{
		AuthorID: author.ID,
		Author:   author,
		Body:     body,
	}
}

// CommentView is a comment as displayed to one particular viewer.
type CommentView struct {
	ID        uint      `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Body      string    `json:"body"`
	Author    Profile   `json:"author"`
}

// ViewComment projects c for viewer. The following flag is computed from
// viewer's followed set on every call and never stored on the comment.
func ViewComment(c *Comment, viewer *User) CommentView {
	author := c.Author
	if author == nil {
		author = &User{ID: c.AuthorID}
	}
	return CommentView{
		ID:        c.ID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Body:      c.Body,
		Author:    viewer.ViewProfile(author),
	}
}

// CommentBody is the inner object of a comment creation request.
type CommentBody struct {
	Body string `json:"body" validate:"required,min=1,max=2000"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Comment CommentBody `json:"comment"`
}
