// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/logging"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/repository"
)

// StatsClient is the view of the stats service used by the main service.
type StatsClient interface {
	RecordHit(ctx context.Context, hit model.EndpointHit) error
	Stats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]model.ViewStats, error)
}

// Hit describes the inbound request that triggered a public read.
type Hit struct {
	URI string
	IP  string
}

// Deps carries what every service needs.
type Deps struct {
	Store   repository.Store
	Stats   StatsClient
	Logger  logrus.FieldLogger
	Now     func() time.Time
	AppName string
}

func (d Deps) withDefaults() Deps {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Logger == nil {
		d.Logger = logrus.StandardLogger()
	}
	return d
}

// now returns the current time truncated to whole seconds, the precision of
// the wire format.
func (d Deps) now() time.Time {
	return d.Now().Truncate(time.Second)
}

func (d Deps) log(ctx context.Context) logrus.FieldLogger {
	return logging.FromContext(ctx, d.Logger)
}

// Page is a from/size window. Offsets are rounded down to a page boundary.
type Page struct {
	From int
	Size int
}

// DefaultPage is used when the client omits from and size.
var DefaultPage = Page{From: 0, Size: 10}

func (p Page) validate() error {
	if p.From < 0 {
		return badRequest("from must not be negative, got %d", p.From)
	}
	if p.Size <= 0 {
		return badRequest("size must be positive, got %d", p.Size)
	}
	return nil
}

func (p Page) offset() int {
	return (p.From / p.Size) * p.Size
}

func requireAdmin(caller model.Caller) error {
	if !caller.IsAdmin() {
		return forbidden("operation requires the admin role")
	}
	return nil
}

func requireUser(caller model.Caller) error {
	if caller.Role != model.RoleUser || caller.UserID <= 0 {
		return forbidden("operation requires a registered user")
	}
	return nil
}

// checkLen validates the rune length of a required field.
func checkLen(field, v string, min, max int) error {
	if strings.TrimSpace(v) == "" {
		return badRequest("%s must not be blank", field)
	}
	if n := utf8.RuneCountInString(v); n < min || n > max {
		return badRequest("%s length must be between %d and %d, got %d", field, min, max, n)
	}
	return nil
}

// checkOptLen validates an optional field when present.
func checkOptLen(field string, v *string, min, max int) error {
	if v == nil {
		return nil
	}
	return checkLen(field, *v, min, max)
}

// isValidEmail does a basic structural check.
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".") &&
		!strings.HasPrefix(parts[1], ".") && !strings.HasSuffix(parts[1], ".")
}

func parseTime(field, v string) (time.Time, error) {
	t, err := model.ParseTime(v)
	if err != nil {
		return time.Time{}, invalidDate("%s must use format %q, got %q", field, model.TimeLayout, v)
	}
	return t, nil
}

func parseOptTime(field string, v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	t, err := parseTime(field, *v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// storage wraps a repository failure for the object described by format.
// A missing row becomes ErrNotFound.
func storage(err error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("%s was not found", what)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// dedupeIDs drops repeated ids, keeping first occurrences in order.
func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
