package service

import (
	"context"
	"strings"
	"time"

	"rolodex/internal/contact/metrics"
	"rolodex/internal/contact/models"
	dErrors "rolodex/pkg/domain-errors"
)

// SearchQuery holds optional search criteria. A nil field is absent.
type SearchQuery struct {
	Name           *string
	BirthDateStart *models.Date
	BirthDateEnd   *models.Date
}

func (q SearchQuery) empty() bool {
	return q.Name == nil && q.BirthDateStart == nil && q.BirthDateEnd == nil
}

// Search filters the current contacts.
//
// The birth date range applies only when both bounds are given; it is
// inclusive and drops contacts without a birth date. A name keeps contacts
// whose trimmed, lowercased name equals or contains the trimmed, lowercased
// query. Results keep store order; an empty result is a not found failure.
func (s *Service) Search(ctx context.Context, q SearchQuery) models.Outcome[[]*models.Contact] {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "contact.Search")
	defer span.End()

	if q.empty() {
		return models.Fail[[]*models.Contact](s.reject(span, opSearch, metrics.OutcomeBadRequest, start,
			dErrors.New(dErrors.CodeBadRequest, MsgSearchCriteria)))
	}

	all, err := s.snapshot(ctx)
	if err != nil {
		return models.Fail[[]*models.Contact](s.fault(ctx, span, opSearch, start, err))
	}

	matches := make([]*models.Contact, 0, len(all))
	for _, c := range all {
		if q.matchesBirthDate(c) && q.matchesName(c) {
			matches = append(matches, c)
		}
	}
	if len(matches) == 0 {
		return models.Fail[[]*models.Contact](s.reject(span, opSearch, metrics.OutcomeNotFound, start,
			dErrors.New(dErrors.CodeNotFound, MsgNoResults)))
	}

	s.succeed(span, opSearch, start)
	if s.metrics != nil {
		s.metrics.ObserveSearchResults(len(matches))
	}
	return models.Succeed(matches)
}

func (q SearchQuery) matchesBirthDate(c *models.Contact) bool {
	if q.BirthDateStart == nil || q.BirthDateEnd == nil {
		return true
	}
	if c.BirthDate == nil {
		return false
	}
	return c.BirthDate.Within(*q.BirthDateStart, *q.BirthDateEnd)
}

func (q SearchQuery) matchesName(c *models.Contact) bool {
	if q.Name == nil {
		return true
	}
	needle := normalizeName(*q.Name)
	name := normalizeName(c.Name)
	return name == needle || strings.Contains(name, needle)
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
