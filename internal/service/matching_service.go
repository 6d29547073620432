package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/geo"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MatchResult is the outcome of a matching run. Matched=false is a valid
// business outcome ("no supply available"), not an error.
type MatchResult struct {
	Matched    bool                 `json:"matched"`
	ResourceID *uuid.UUID           `json:"resource_id,omitempty"`
	DistanceKm *float64             `json:"distance_km,omitempty"`
	Resource   *model.ResourceStock `json:"resource,omitempty"`
}

// MatcherService assigns approved requests to the nearest compatible stock.
type MatcherService interface {
	Match(ctx context.Context, req *model.ReliefRequest) (MatchResult, error)
}

type matcherService struct {
	requestRepo  repository.RequestRepository
	resourceRepo repository.ResourceRepository
}

func NewMatcherService(requestRepo repository.RequestRepository, resourceRepo repository.ResourceRepository) MatcherService {
	return &matcherService{requestRepo: requestRepo, resourceRepo: resourceRepo}
}

// Match ranks READY stocks compatible with the request's category by distance
// to their center, breaking ties by highest quantity then lowest resource id,
// and persists the outcome on the request. Idempotent: re-running from either
// terminal matching state applies the same policy and overwrites the prior
// result. Only malformed or missing request coordinates are an error.
func (s *matcherService) Match(ctx context.Context, req *model.ReliefRequest) (MatchResult, error) {
	if req.Latitude == nil || req.Longitude == nil {
		return MatchResult{}, fmt.Errorf("request %s has no coordinates: %w", req.ID, apperr.ErrInvalidLocation)
	}
	origin := geo.Point{Lat: req.Latitude.InexactFloat64(), Lng: req.Longitude.InexactFloat64()}
	if !origin.Valid() {
		return MatchResult{}, fmt.Errorf("request %s coordinates out of range: %w", req.ID, apperr.ErrInvalidLocation)
	}

	categories := CompatibleResourceCategories(req.Category)
	candidates, err := s.resourceRepo.ListReadyByCategories(ctx, categories)
	if err != nil {
		return MatchResult{}, err
	}

	var (
		best     *model.ResourceStock
		bestDist float64
	)
	for i := range candidates {
		c := &candidates[i]
		if c.Quantity <= 0 || c.Status != model.ResourceReady {
			continue
		}

		target := geo.Point{Lat: c.Center.Latitude.InexactFloat64(), Lng: c.Center.Longitude.InexactFloat64()}
		dist, distErr := geo.Distance(origin, target)
		if distErr != nil {
			// A miscoded center should not sink the whole run.
			log.Printf("matcher: skipping resource %s, center %s has bad coordinates: %v", c.ID, c.CenterID, distErr)
			continue
		}

		if best == nil || closerCandidate(dist, c, bestDist, best) {
			best = c
			bestDist = dist
		}
	}

	if best == nil {
		if err := s.requestRepo.SetMatchResult(ctx, req.ID, model.MatchingNoMatchFound, nil, nil); err != nil {
			return MatchResult{}, err
		}
		req.MatchingStatus = model.MatchingNoMatchFound
		req.MatchedResourceID = nil
		req.MatchedDistanceKm = nil
		return MatchResult{Matched: false}, nil
	}

	distKm := decimal.NewFromFloat(bestDist).Round(3)
	if err := s.requestRepo.SetMatchResult(ctx, req.ID, model.MatchingMatched, &best.ID, &distKm); err != nil {
		return MatchResult{}, err
	}
	req.MatchingStatus = model.MatchingMatched
	req.MatchedResourceID = &best.ID
	req.MatchedDistanceKm = &distKm

	rounded := distKm.InexactFloat64()
	return MatchResult{Matched: true, ResourceID: &best.ID, DistanceKm: &rounded, Resource: best}, nil
}

// closerCandidate reports whether candidate c at distance d beats the current
// best: strictly closer, or equally close with more quantity, or equal on both
// with the lower id. Deterministic for any candidate ordering.
func closerCandidate(d float64, c *model.ResourceStock, bestDist float64, best *model.ResourceStock) bool {
	if d != bestDist {
		return d < bestDist
	}
	if c.Quantity != best.Quantity {
		return c.Quantity > best.Quantity
	}
	return strings.Compare(c.ID.String(), best.ID.String()) < 0
}
