package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
)

func TestRegister(t *testing.T) {
	h := newHarness(t)

	u, err := h.users.Register(h.ctx, admin, model.User{Name: "Ann Lee", Email: " ann@example.com "})
	require.NoError(t, err)
	assert.Positive(t, u.ID)
	assert.Equal(t, "ann@example.com", u.Email)

	_, err = h.users.Register(h.ctx, admin, model.User{Name: "Ann Again", Email: "ann@example.com"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = h.users.Register(h.ctx, model.UserCaller(u.ID), model.User{Name: "Bob", Email: "bob@example.com"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   model.User
	}{
		{"blank name", model.User{Name: "  ", Email: "a@example.com"}},
		{"short name", model.User{Name: "A", Email: "a@example.com"}},
		{"short email", model.User{Name: "Ann", Email: "a@b.c"}},
		{"no at sign", model.User{Name: "Ann", Email: "ann.example.com"}},
		{"no domain dot", model.User{Name: "Ann", Email: "ann@example"}},
		{"empty local part", model.User{Name: "Ann", Email: "@example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			_, err := h.users.Register(h.ctx, admin, tt.in)
			assert.ErrorIs(t, err, ErrBadRequest)
		})
	}
}

func TestUserListAndDelete(t *testing.T) {
	h := newHarness(t)
	a, b, c := h.user(), h.user(), h.user()

	all, err := h.users.List(h.ctx, admin, nil, Page{From: 0, Size: 10})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	some, err := h.users.List(h.ctx, admin, []int64{c.UserID, a.UserID}, DefaultPage)
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, a.UserID, some[0].ID)

	second, err := h.users.List(h.ctx, admin, nil, Page{From: 3, Size: 2})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, c.UserID, second[0].ID)

	require.NoError(t, h.users.Delete(h.ctx, admin, b.UserID))
	assert.ErrorIs(t, h.users.Delete(h.ctx, admin, b.UserID), ErrNotFound)

	_, err = h.users.List(h.ctx, admin, nil, Page{From: -1, Size: 10})
	assert.ErrorIs(t, err, ErrBadRequest)
}
