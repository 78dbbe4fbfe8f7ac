package memstore

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/repository"
)

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// window applies offset and limit; limit <= 0 means no limit.
func window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// ─── Users ───────────────────────────────────────────────────────────────────

type users struct{ v view }

func (r users) Create(_ context.Context, u *model.User) error {
	return r.v.write(func(d *data) error {
		for _, existing := range d.users {
			if existing.Email == u.Email {
				return repository.ErrDuplicate
			}
		}
		u.ID = d.next("users")
		d.users[u.ID] = *u
		return nil
	})
}

func (r users) GetByID(_ context.Context, id int64) (*model.User, error) {
	var out model.User
	err := r.v.read(func(d *data) error {
		u, ok := d.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r users) ExistsByEmail(_ context.Context, email string) (bool, error) {
	var exists bool
	err := r.v.read(func(d *data) error {
		for _, u := range d.users {
			if u.Email == email {
				exists = true
				break
			}
		}
		return nil
	})
	return exists, err
}

func (r users) List(_ context.Context, ids []int64, offset, limit int) ([]model.User, error) {
	out := []model.User{}
	err := r.v.read(func(d *data) error {
		for _, id := range sortedKeys(d.users) {
			if len(ids) > 0 && !containsID(ids, id) {
				continue
			}
			out = append(out, d.users[id])
		}
		return nil
	})
	return window(out, offset, limit), err
}

// Delete cascades to the user's events, requests and comments.
func (r users) Delete(_ context.Context, id int64) error {
	return r.v.write(func(d *data) error {
		if _, ok := d.users[id]; !ok {
			return repository.ErrNotFound
		}
		delete(d.users, id)
		for eid, e := range d.events {
			if e.Initiator.ID == id {
				d.deleteEvent(eid)
			}
		}
		for rid, req := range d.requests {
			if req.RequesterID == id {
				delete(d.requests, rid)
			}
		}
		for cid, c := range d.comments {
			if c.Author.ID == id {
				delete(d.comments, cid)
			}
		}
		return nil
	})
}

func (d *data) deleteEvent(id int64) {
	delete(d.events, id)
	for rid, req := range d.requests {
		if req.EventID == id {
			delete(d.requests, rid)
		}
	}
	for cid, c := range d.comments {
		if c.EventID == id {
			delete(d.comments, cid)
		}
	}
	for cid, comp := range d.compilations {
		kept := comp.EventIDs[:0]
		for _, eid := range comp.EventIDs {
			if eid != id {
				kept = append(kept, eid)
			}
		}
		comp.EventIDs = kept
		d.compilations[cid] = comp
	}
}

// ─── Categories ──────────────────────────────────────────────────────────────

type categories struct{ v view }

func (r categories) Create(_ context.Context, c *model.Category) error {
	return r.v.write(func(d *data) error {
		for _, existing := range d.categories {
			if existing.Name == c.Name {
				return repository.ErrDuplicate
			}
		}
		c.ID = d.next("categories")
		d.categories[c.ID] = *c
		return nil
	})
}

func (r categories) Update(_ context.Context, c *model.Category) error {
	return r.v.write(func(d *data) error {
		if _, ok := d.categories[c.ID]; !ok {
			return repository.ErrNotFound
		}
		for id, existing := range d.categories {
			if id != c.ID && existing.Name == c.Name {
				return repository.ErrDuplicate
			}
		}
		d.categories[c.ID] = *c
		return nil
	})
}

func (r categories) Delete(_ context.Context, id int64) error {
	return r.v.write(func(d *data) error {
		if _, ok := d.categories[id]; !ok {
			return repository.ErrNotFound
		}
		for _, e := range d.events {
			if e.Category.ID == id {
				return repository.ErrReferenced
			}
		}
		delete(d.categories, id)
		return nil
	})
}

func (r categories) GetByID(_ context.Context, id int64) (*model.Category, error) {
	var out model.Category
	err := r.v.read(func(d *data) error {
		c, ok := d.categories[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r categories) GetByName(_ context.Context, name string) (*model.Category, error) {
	var out *model.Category
	err := r.v.read(func(d *data) error {
		for _, c := range d.categories {
			if c.Name == name {
				c := c
				out = &c
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r categories) List(_ context.Context, offset, limit int) ([]model.Category, error) {
	out := []model.Category{}
	err := r.v.read(func(d *data) error {
		for _, id := range sortedKeys(d.categories) {
			out = append(out, d.categories[id])
		}
		return nil
	})
	return window(out, offset, limit), err
}

// ─── Events ──────────────────────────────────────────────────────────────────

type events struct{ v view }

// joined refreshes the embedded category and initiator projections.
func (d *data) joined(e model.Event) model.Event {
	e = copyEvent(e)
	if c, ok := d.categories[e.Category.ID]; ok {
		e.Category = c
	}
	if u, ok := d.users[e.Initiator.ID]; ok {
		e.Initiator = u.Short()
	}
	return e
}

func (d *data) checkEventRefs(e *model.Event) error {
	if _, ok := d.categories[e.Category.ID]; !ok {
		return repository.ErrReferenced
	}
	if _, ok := d.users[e.Initiator.ID]; !ok {
		return repository.ErrReferenced
	}
	if e.Limited() && e.ConfirmedRequests > e.ParticipantLimit {
		return repository.ErrConstraint
	}
	if (e.State == model.StatePublished) != (e.PublishedOn != nil) {
		return repository.ErrConstraint
	}
	return nil
}

func (r events) Create(_ context.Context, e *model.Event) error {
	return r.v.write(func(d *data) error {
		if err := d.checkEventRefs(e); err != nil {
			return err
		}
		e.ID = d.next("events")
		d.events[e.ID] = copyEvent(*e)
		return nil
	})
}

func (r events) Update(_ context.Context, e *model.Event) error {
	return r.v.write(func(d *data) error {
		old, ok := d.events[e.ID]
		if !ok {
			return repository.ErrNotFound
		}
		if err := d.checkEventRefs(e); err != nil {
			return err
		}
		updated := copyEvent(*e)
		updated.Initiator = old.Initiator
		updated.CreatedOn = old.CreatedOn
		d.events[e.ID] = updated
		return nil
	})
}

func (r events) GetByID(_ context.Context, id int64) (*model.Event, error) {
	var out model.Event
	err := r.v.read(func(d *data) error {
		e, ok := d.events[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = d.joined(e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetForUpdate needs no extra locking: transactions already run one at a
// time.
func (r events) GetForUpdate(ctx context.Context, id int64) (*model.Event, error) {
	return r.GetByID(ctx, id)
}

func (r events) ListByIDs(_ context.Context, ids []int64) ([]model.Event, error) {
	out := []model.Event{}
	err := r.v.read(func(d *data) error {
		for _, id := range sortedKeys(d.events) {
			if containsID(ids, id) {
				out = append(out, d.joined(d.events[id]))
			}
		}
		return nil
	})
	return out, err
}

func (r events) Search(_ context.Context, f repository.EventFilter) ([]model.Event, error) {
	fold := cases.Fold()
	text := fold.String(strings.TrimSpace(f.Text))

	out := []model.Event{}
	err := r.v.read(func(d *data) error {
		for _, id := range sortedKeys(d.events) {
			e := d.events[id]
			if len(f.Initiators) > 0 && !containsID(f.Initiators, e.Initiator.ID) {
				continue
			}
			if len(f.States) > 0 && !containsState(f.States, e.State) {
				continue
			}
			if len(f.Categories) > 0 && !containsID(f.Categories, e.Category.ID) {
				continue
			}
			if text != "" &&
				!strings.Contains(fold.String(e.Annotation), text) &&
				!strings.Contains(fold.String(e.Description), text) {
				continue
			}
			if f.Paid != nil && e.Paid != *f.Paid {
				continue
			}
			if f.RangeStart != nil && e.EventDate.Before(*f.RangeStart) {
				continue
			}
			if f.RangeEnd != nil && e.EventDate.After(*f.RangeEnd) {
				continue
			}
			if f.OnlyAvailable && e.IsFull() {
				continue
			}
			out = append(out, d.joined(e))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if f.Sort == repository.SortByEventDate {
		sort.SliceStable(out, func(i, j int) bool { return out[i].EventDate.Before(out[j].EventDate) })
	}
	return window(out, f.Offset, f.Limit), nil
}

func containsState(states []model.EventState, s model.EventState) bool {
	for _, v := range states {
		if v == s {
			return true
		}
	}
	return false
}

func (r events) ExistsByCategory(_ context.Context, categoryID int64) (bool, error) {
	var exists bool
	err := r.v.read(func(d *data) error {
		for _, e := range d.events {
			if e.Category.ID == categoryID {
				exists = true
				break
			}
		}
		return nil
	})
	return exists, err
}

// ─── Requests ────────────────────────────────────────────────────────────────

type requests struct{ v view }

func (r requests) Create(_ context.Context, req *model.ParticipationRequest) error {
	return r.v.write(func(d *data) error {
		if req.Active() {
			for _, existing := range d.requests {
				if existing.Active() && existing.RequesterID == req.RequesterID && existing.EventID == req.EventID {
					return repository.ErrDuplicate
				}
			}
		}
		req.ID = d.next("requests")
		d.requests[req.ID] = *req
		return nil
	})
}

func (r requests) GetByID(_ context.Context, id int64) (*model.ParticipationRequest, error) {
	var out model.ParticipationRequest
	err := r.v.read(func(d *data) error {
		req, ok := d.requests[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r requests) filter(keep func(model.ParticipationRequest) bool) ([]model.ParticipationRequest, error) {
	out := []model.ParticipationRequest{}
	err := r.v.read(func(d *data) error {
		for _, id := range sortedKeys(d.requests) {
			if req := d.requests[id]; keep(req) {
				out = append(out, req)
			}
		}
		return nil
	})
	return out, err
}

func (r requests) ListByIDs(_ context.Context, ids []int64) ([]model.ParticipationRequest, error) {
	return r.filter(func(req model.ParticipationRequest) bool { return containsID(ids, req.ID) })
}

func (r requests) ListByRequester(_ context.Context, requesterID int64) ([]model.ParticipationRequest, error) {
	return r.filter(func(req model.ParticipationRequest) bool { return req.RequesterID == requesterID })
}

func (r requests) ListByEvent(_ context.Context, eventID int64) ([]model.ParticipationRequest, error) {
	return r.filter(func(req model.ParticipationRequest) bool { return req.EventID == eventID })
}

func (r requests) ListByEventAndStatus(_ context.Context, eventID int64, status model.RequestStatus) ([]model.ParticipationRequest, error) {
	return r.filter(func(req model.ParticipationRequest) bool {
		return req.EventID == eventID && req.Status == status
	})
}

func (r requests) ExistsActive(_ context.Context, requesterID, eventID int64) (bool, error) {
	found, err := r.filter(func(req model.ParticipationRequest) bool {
		return req.Active() && req.RequesterID == requesterID && req.EventID == eventID
	})
	return len(found) > 0, err
}

func (r requests) UpdateStatus(_ context.Context, ids []int64, status model.RequestStatus) error {
	return r.v.write(func(d *data) error {
		set := make(map[int64]bool, len(ids))
		for _, id := range ids {
			if _, ok := d.requests[id]; !ok {
				return repository.ErrNotFound
			}
			set[id] = true
		}
		// At most one non-canceled request per requester and event.
		if status != model.StatusCanceled {
			for id := range set {
				req := d.requests[id]
				for _, other := range d.requests {
					if other.ID == id || other.RequesterID != req.RequesterID || other.EventID != req.EventID {
						continue
					}
					if set[other.ID] || other.Active() {
						return repository.ErrDuplicate
					}
				}
			}
		}
		for _, id := range ids {
			req := d.requests[id]
			req.Status = status
			d.requests[id] = req
		}
		return nil
	})
}

// ─── Comments ────────────────────────────────────────────────────────────────

type comments struct{ v view }

func (d *data) joinedComment(c model.Comment) model.Comment {
	c = copyComment(c)
	if u, ok := d.users[c.Author.ID]; ok {
		c.Author = u.Short()
	}
	return c
}

func (r comments) Create(_ context.Context, c *model.Comment) error {
	return r.v.write(func(d *data) error {
		if _, ok := d.users[c.Author.ID]; !ok {
			return repository.ErrReferenced
		}
		if _, ok := d.events[c.EventID]; !ok {
			return repository.ErrReferenced
		}
		c.ID = d.next("comments")
		d.comments[c.ID] = copyComment(*c)
		return nil
	})
}

func (r comments) Update(_ context.Context, c *model.Comment) error {
	return r.v.write(func(d *data) error {
		old, ok := d.comments[c.ID]
		if !ok {
			return repository.ErrNotFound
		}
		old.Text = c.Text
		old.UpdatedOn = copyTime(c.UpdatedOn)
		d.comments[c.ID] = old
		return nil
	})
}

func (r comments) Delete(_ context.Context, id int64) error {
	return r.v.write(func(d *data) error {
		if _, ok := d.comments[id]; !ok {
			return repository.ErrNotFound
		}
		delete(d.comments, id)
		return nil
	})
}

func (r comments) GetByID(_ context.Context, id int64) (*model.Comment, error) {
	var out model.Comment
	err := r.v.read(func(d *data) error {
		c, ok := d.comments[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = d.joinedComment(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r comments) ListByEvent(_ context.Context, eventID int64, offset, limit int, desc bool) ([]model.Comment, error) {
	out := []model.Comment{}
	err := r.v.read(func(d *data) error {
		for _, id := range sortedKeys(d.comments) {
			if c := d.comments[id]; c.EventID == eventID {
				out = append(out, d.joinedComment(c))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	touched := func(c model.Comment) int64 {
		if c.UpdatedOn != nil {
			return c.UpdatedOn.UnixNano()
		}
		return c.CreatedOn.UnixNano()
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := touched(out[i]), touched(out[j])
		if ti == tj {
			if desc {
				return out[i].ID > out[j].ID
			}
			return out[i].ID < out[j].ID
		}
		if desc {
			return ti > tj
		}
		return ti < tj
	})
	return window(out, offset, limit), nil
}

// ─── Compilations ────────────────────────────────────────────────────────────

type compilations struct{ v view }

func dedupe(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !containsID(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func (r compilations) Create(_ context.Context, c *model.Compilation) error {
	return r.v.write(func(d *data) error {
		for _, id := range c.EventIDs {
			if _, ok := d.events[id]; !ok {
				return repository.ErrReferenced
			}
		}
		c.EventIDs = dedupe(c.EventIDs)
		c.ID = d.next("compilations")
		d.compilations[c.ID] = copyCompilation(*c)
		return nil
	})
}

func (r compilations) Update(_ context.Context, c *model.Compilation) error {
	return r.v.write(func(d *data) error {
		if _, ok := d.compilations[c.ID]; !ok {
			return repository.ErrNotFound
		}
		for _, id := range c.EventIDs {
			if _, ok := d.events[id]; !ok {
				return repository.ErrReferenced
			}
		}
		c.EventIDs = dedupe(c.EventIDs)
		d.compilations[c.ID] = copyCompilation(*c)
		return nil
	})
}

func (r compilations) Delete(_ context.Context, id int64) error {
	return r.v.write(func(d *data) error {
		if _, ok := d.compilations[id]; !ok {
			return repository.ErrNotFound
		}
		delete(d.compilations, id)
		return nil
	})
}

func (r compilations) GetByID(_ context.Context, id int64) (*model.Compilation, error) {
	var out model.Compilation
	err := r.v.read(func(d *data) error {
		c, ok := d.compilations[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = copyCompilation(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r compilations) List(_ context.Context, pinned *bool, offset, limit int) ([]model.Compilation, error) {
	out := []model.Compilation{}
	err := r.v.read(func(d *data) error {
		for _, id := range sortedKeys(d.compilations) {
			c := d.compilations[id]
			if pinned != nil && c.Pinned != *pinned {
				continue
			}
			out = append(out, copyCompilation(c))
		}
		return nil
	})
	return window(out, offset, limit), err
}
