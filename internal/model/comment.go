package model

import "time"

// Comment is a user remark attached to a published event.
type Comment struct {
	ID        int64
	Text      string
	Author    UserShort
	EventID   int64
	CreatedOn time.Time
	UpdatedOn *time.Time
}

// CommentInput is the payload for adding or editing a comment.
type CommentInput struct {
	Text string `json:"text"`
}

// CommentView is the wire view of a comment.
type CommentView struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Author    UserShort `json:"author"`
	CreatedOn string    `json:"createdOn"`
	UpdatedOn *string   `json:"updatedOn"`
}

// View maps c to its wire representation.
func (c *Comment) View() CommentView {
	return CommentView{
		ID:        c.ID,
		Text:      c.Text,
		Author:    c.Author,
		CreatedOn: FormatTime(c.CreatedOn),
		UpdatedOn: FormatTimePtr(c.UpdatedOn),
	}
}
