package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
)

func TestCommentLifecycle(t *testing.T) {
	h := newHarness(t)
	e := h.publishedEvent(h.user(), 0, true)
	author := h.user()

	c, err := h.comments.Add(h.ctx, author, e.ID, model.CommentInput{Text: "See you there"})
	require.NoError(t, err)
	assert.Equal(t, author.UserID, c.Author.ID)
	assert.Nil(t, c.UpdatedOn)

	h.now = h.now.Add(time.Minute)
	edited, err := h.comments.Edit(h.ctx, author, e.ID, c.ID, model.CommentInput{Text: "See you all there"})
	require.NoError(t, err)
	assert.Equal(t, "See you all there", edited.Text)
	require.NotNil(t, edited.UpdatedOn)
	assert.Equal(t, model.FormatTime(h.now), *edited.UpdatedOn)
	assert.Equal(t, c.CreatedOn, edited.CreatedOn)

	got, err := h.comments.Get(h.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "See you all there", got.Text)

	require.NoError(t, h.comments.Delete(h.ctx, author, e.ID, c.ID))
	_, err = h.comments.Get(h.ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCommentRules(t *testing.T) {
	h := newHarness(t)
	owner := h.user()
	author := h.user()
	e := h.publishedEvent(owner, 0, true)
	other := h.publishedEvent(owner, 0, true)
	pending := h.pendingEvent(owner, 0, true)

	_, err := h.comments.Add(h.ctx, author, pending.ID, model.CommentInput{Text: "Early bird"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = h.comments.Add(h.ctx, author, e.ID, model.CommentInput{Text: strings.Repeat("x", 2001)})
	assert.ErrorIs(t, err, ErrBadRequest)

	_, err = h.comments.Add(h.ctx, model.PublicCaller(), e.ID, model.CommentInput{Text: "Anonymous"})
	assert.ErrorIs(t, err, ErrForbidden)

	c, err := h.comments.Add(h.ctx, author, e.ID, model.CommentInput{Text: "Looks great"})
	require.NoError(t, err)

	_, err = h.comments.Edit(h.ctx, owner, e.ID, c.ID, model.CommentInput{Text: "Hijacked"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = h.comments.Edit(h.ctx, author, other.ID, c.ID, model.CommentInput{Text: "Moved"})
	assert.ErrorIs(t, err, ErrBadRequest)

	assert.ErrorIs(t, h.comments.Delete(h.ctx, owner, e.ID, c.ID), ErrForbidden)
	assert.ErrorIs(t, h.comments.AdminDelete(h.ctx, owner, e.ID, c.ID), ErrForbidden)
	assert.ErrorIs(t, h.comments.AdminDelete(h.ctx, admin, other.ID, c.ID), ErrBadRequest)

	require.NoError(t, h.comments.AdminDelete(h.ctx, admin, e.ID, c.ID))
	assert.ErrorIs(t, h.comments.AdminDelete(h.ctx, admin, e.ID, c.ID), ErrNotFound)
}

func TestCommentList_Ordering(t *testing.T) {
	h := newHarness(t)
	e := h.publishedEvent(h.user(), 0, true)
	author := h.user()

	var ids []int64
	for _, text := range []string{"first", "second", "third"} {
		c, err := h.comments.Add(h.ctx, author, e.ID, model.CommentInput{Text: text})
		require.NoError(t, err)
		ids = append(ids, c.ID)
		h.now = h.now.Add(time.Minute)
	}
	_, err := h.comments.Edit(h.ctx, author, e.ID, ids[0], model.CommentInput{Text: "first, edited"})
	require.NoError(t, err)

	commentIDs := func(views []model.CommentView) []int64 {
		out := make([]int64, 0, len(views))
		for _, v := range views {
			out = append(out, v.ID)
		}
		return out
	}

	desc, err := h.comments.List(h.ctx, e.ID, DefaultPage, "desc")
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[0], ids[2], ids[1]}, commentIDs(desc))

	asc, err := h.comments.List(h.ctx, e.ID, DefaultPage, "")
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[1], ids[2], ids[0]}, commentIDs(asc))

	page, err := h.comments.List(h.ctx, e.ID, Page{From: 2, Size: 2}, "DESC")
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[1]}, commentIDs(page))

	_, err = h.comments.List(h.ctx, e.ID, DefaultPage, "SIDEWAYS")
	assert.ErrorIs(t, err, ErrBadRequest)
}
