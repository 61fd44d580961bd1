package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/mlindqvist/snaptree/internal/domain"
)

type consistencyService struct {
	resolver ResolverService
	failFast bool
}

// NewConsistencyService creates a checker on top of the resolver. With
// failFast true (the service default), a resolution failure on any input id
// aborts the whole check; with failFast false, cycle and depth failures are
// collected per id and the remaining inputs still contribute to the report.
// Either way the policy is explicit, never silent.
func NewConsistencyService(resolver ResolverService, failFast bool) ConsistencyService {
	return &consistencyService{resolver: resolver, failFast: failFast}
}

func (s *consistencyService) CheckForDuplicates(ctx context.Context, uniqueIDs []string) ([]string, error) {
	report, err := s.Check(ctx, uniqueIDs)
	if err != nil {
		return nil, err
	}
	return report.Duplicates, nil
}

func (s *consistencyService) Check(ctx context.Context, uniqueIDs []string) (*ConsistencyReport, error) {
	counts := make(map[string]int)
	report := &ConsistencyReport{Duplicates: []string{}}

	for _, id := range uniqueIDs {
		// Raw expansion: every occurrence counts, including duplicates
		// within a single snapshot.
		items, err := s.resolver.Expand(ctx, id)
		if err != nil {
			if !s.failFast && recoverablePerID(err) {
				if report.Failed == nil {
					report.Failed = make(map[string]string)
				}
				report.Failed[id] = err.Error()
				continue
			}
			return nil, fmt.Errorf("expanding %s: %w", id, err)
		}
		for _, item := range items {
			counts[item.PVName]++
		}
	}

	for name, count := range counts {
		if count >= 2 {
			report.Duplicates = append(report.Duplicates, name)
		}
	}
	sort.Strings(report.Duplicates)
	return report, nil
}

// recoverablePerID reports whether a resolution failure is scoped to one
// input id. Absent nodes and structural violations always abort the check.
func recoverablePerID(err error) bool {
	return errors.Is(err, domain.ErrCycle) || errors.Is(err, domain.ErrDepthExceeded)
}
