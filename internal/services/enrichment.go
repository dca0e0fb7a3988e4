package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"photo-points-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// EnrichmentReport summarizes one enrichment run
type EnrichmentReport struct {
	Candidates int
	Named      int
	Skipped    int
	Branded    int
}

// EnrichmentJob names indexed locations and tags them with offered brands
type EnrichmentJob struct {
	index     SearchIndex
	locations LocationStore
	offers    OfferStore
	places    PlaceLookup
	transient func(error) bool
	retry     RetryPolicy
}

// NewEnrichmentJob creates a new enrichment job.
// transient classifies place lookup errors; store and index errors are always retried.
func NewEnrichmentJob(
	index SearchIndex,
	locations LocationStore,
	offers OfferStore,
	places PlaceLookup,
	transient func(error) bool,
	retry RetryPolicy,
) *EnrichmentJob {
	return &EnrichmentJob{
		index:     index,
		locations: locations,
		offers:    offers,
		places:    places,
		transient: transient,
		retry:     retry,
	}
}

// Run resolves names for unnamed locations, then matches named locations to brands
func (j *EnrichmentJob) Run(ctx context.Context) (*EnrichmentReport, error) {
	report := &EnrichmentReport{}
	if err := j.nameLocations(ctx, report); err != nil {
		return report, err
	}
	if err := j.brandLocations(ctx, report); err != nil {
		return report, err
	}

	log.Info().
		Int("candidates", report.Candidates).
		Int("named", report.Named).
		Int("skipped", report.Skipped).
		Int("branded", report.Branded).
		Msg("Location enrichment finished")
	return report, nil
}

func (j *EnrichmentJob) nameLocations(ctx context.Context, report *EnrichmentReport) error {
	var named []string
	err := j.retry.Do(ctx, "list named locations", retryable, func(ctx context.Context) error {
		var err error
		named, err = j.locations.NamedIDs(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to list named locations: %w", err)
	}

	var ids []string
	err = j.retry.Do(ctx, "list indexed locations", retryable, func(ctx context.Context) error {
		var err error
		ids, err = j.index.LocationIDs(ctx, named)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to list indexed locations: %w", err)
	}
	ids = unnamedIDs(ids, named)
	report.Candidates = len(ids)

	var resolved []models.Location
	for _, id := range ids {
		var name string
		err := j.retry.Do(ctx, "place lookup", j.transient, func(ctx context.Context) error {
			var err error
			name, err = j.places.PlaceName(ctx, id)
			return err
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn().Err(err).Str("location_id", id).Msg("Skipping location")
			report.Skipped++
			continue
		}
		resolved = append(resolved, models.Location{ID: id, Name: &name})
	}

	if len(resolved) == 0 {
		return nil
	}
	err = j.retry.Do(ctx, "store location names", retryable, func(ctx context.Context) error {
		return j.locations.UpsertNames(ctx, resolved)
	})
	if err != nil {
		return fmt.Errorf("failed to store location names: %w", err)
	}
	report.Named = len(resolved)
	return nil
}

func (j *EnrichmentJob) brandLocations(ctx context.Context, report *EnrichmentReport) error {
	var brands []string
	err := j.retry.Do(ctx, "list brands", retryable, func(ctx context.Context) error {
		var err error
		brands, err = j.offers.Brands(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to list brands: %w", err)
	}
	if len(brands) == 0 {
		return nil
	}
	sort.Strings(brands)

	var unbranded []models.Location
	err = j.retry.Do(ctx, "list unbranded locations", retryable, func(ctx context.Context) error {
		var err error
		unbranded, err = j.locations.Unbranded(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to list unbranded locations: %w", err)
	}

	var matched []models.Location
	for _, loc := range unbranded {
		if loc.Name == nil {
			continue
		}
		if brand, ok := MatchBrand(*loc.Name, brands); ok {
			matched = append(matched, models.Location{ID: loc.ID, Name: loc.Name, Brand: &brand})
		}
	}
	if len(matched) == 0 {
		return nil
	}

	err = j.retry.Do(ctx, "store location brands", retryable, func(ctx context.Context) error {
		return j.locations.SetBrands(ctx, matched)
	})
	if err != nil {
		return fmt.Errorf("failed to store location brands: %w", err)
	}
	report.Branded = len(matched)
	return nil
}

// MatchBrand returns the first brand contained in name, case-insensitively, in the order given
func MatchBrand(name string, brands []string) (string, bool) {
	lowered := strings.ToLower(name)
	for _, brand := range brands {
		if brand == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(brand)) {
			return brand, true
		}
	}
	return "", false
}

// unnamedIDs dedupes ids, drops the named ones and sorts the rest
func unnamedIDs(ids, named []string) []string {
	skip := make(map[string]struct{}, len(named)+len(ids))
	for _, id := range named {
		skip[id] = struct{}{}
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := skip[id]; ok {
			continue
		}
		skip[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func retryable(err error) bool {
	return !errors.Is(err, context.Canceled)
}
