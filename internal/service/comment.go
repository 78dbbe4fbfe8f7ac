package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
)

// CommentService manages comments on published events.
type CommentService struct {
	Deps
}

// NewCommentService constructs a CommentService.
func NewCommentService(d Deps) *CommentService {
	return &CommentService{Deps: d.withDefaults()}
}

func validateComment(in model.CommentInput) error {
	return checkLen("text", in.Text, 1, 2000)
}

// Add posts a comment by the caller on a published event.
func (s *CommentService) Add(ctx context.Context, caller model.Caller, eventID int64, in model.CommentInput) (*model.CommentView, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	if err := validateComment(in); err != nil {
		return nil, err
	}
	user, err := s.Store.Users().GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, storage(err, "user with id=%d", caller.UserID)
	}
	e, err := s.Store.Events().GetByID(ctx, eventID)
	if err != nil {
		return nil, storage(err, "event with id=%d", eventID)
	}
	if e.State != model.StatePublished {
		return nil, notFound("cannot comment on unpublished event with id=%d", eventID)
	}

	c := &model.Comment{
		Text:      in.Text,
		Author:    user.Short(),
		EventID:   eventID,
		CreatedOn: s.now(),
	}
	if err := s.Store.Comments().Create(ctx, c); err != nil {
		return nil, storage(err, "create comment")
	}

	s.log(ctx).WithFields(logrus.Fields{
		"comment_id": c.ID,
		"event_id":   eventID,
	}).Info("comment added")
	view := c.View()
	return &view, nil
}

// owned loads a comment and checks that it belongs to eventID and, unless
// admin is set, to the caller.
func (s *CommentService) owned(ctx context.Context, caller model.Caller, eventID, commentID int64, admin bool) (*model.Comment, error) {
	c, err := s.Store.Comments().GetByID(ctx, commentID)
	if err != nil {
		return nil, storage(err, "comment with id=%d", commentID)
	}
	if !admin && c.Author.ID != caller.UserID {
		return nil, forbidden("user with id=%d is not the author of comment %d", caller.UserID, commentID)
	}
	if c.EventID != eventID {
		return nil, badRequest("comment %d does not belong to event %d", commentID, eventID)
	}
	return c, nil
}

// Edit replaces the text of the caller's comment.
func (s *CommentService) Edit(ctx context.Context, caller model.Caller, eventID, commentID int64, in model.CommentInput) (*model.CommentView, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	if err := validateComment(in); err != nil {
		return nil, err
	}
	c, err := s.owned(ctx, caller, eventID, commentID, false)
	if err != nil {
		return nil, err
	}

	now := s.now()
	c.Text = in.Text
	c.UpdatedOn = &now
	if err := s.Store.Comments().Update(ctx, c); err != nil {
		return nil, storage(err, "comment with id=%d", commentID)
	}
	view := c.View()
	return &view, nil
}

// Delete removes the caller's comment.
func (s *CommentService) Delete(ctx context.Context, caller model.Caller, eventID, commentID int64) error {
	if err := requireUser(caller); err != nil {
		return err
	}
	if _, err := s.owned(ctx, caller, eventID, commentID, false); err != nil {
		return err
	}
	if err := s.Store.Comments().Delete(ctx, commentID); err != nil {
		return storage(err, "comment with id=%d", commentID)
	}
	return nil
}

// AdminDelete removes any comment of an event.
func (s *CommentService) AdminDelete(ctx context.Context, caller model.Caller, eventID, commentID int64) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if _, err := s.owned(ctx, caller, eventID, commentID, true); err != nil {
		return err
	}
	if err := s.Store.Comments().Delete(ctx, commentID); err != nil {
		return storage(err, "comment with id=%d", commentID)
	}
	s.log(ctx).WithFields(logrus.Fields{
		"comment_id": commentID,
		"event_id":   eventID,
	}).Info("comment removed by admin")
	return nil
}

// Get returns one comment.
func (s *CommentService) Get(ctx context.Context, commentID int64) (*model.CommentView, error) {
	c, err := s.Store.Comments().GetByID(ctx, commentID)
	if err != nil {
		return nil, storage(err, "comment with id=%d", commentID)
	}
	view := c.View()
	return &view, nil
}

// List returns a page of an event's comments ordered by last change.
// direction is ASC or DESC, case-insensitively; empty means ASC.
func (s *CommentService) List(ctx context.Context, eventID int64, page Page, direction string) ([]model.CommentView, error) {
	if err := page.validate(); err != nil {
		return nil, err
	}
	var desc bool
	switch strings.ToUpper(direction) {
	case "", "ASC":
	case "DESC":
		desc = true
	default:
		return nil, badRequest("direction must be ASC or DESC, got %q", direction)
	}

	comments, err := s.Store.Comments().ListByEvent(ctx, eventID, page.offset(), page.Size, desc)
	if err != nil {
		return nil, storage(err, "list comments of event with id=%d", eventID)
	}
	views := make([]model.CommentView, 0, len(comments))
	for i := range comments {
		views = append(views, comments[i].View())
	}
	return views, nil
}
