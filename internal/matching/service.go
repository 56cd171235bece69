package matching

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/tlemaire/jobmarket/internal/domain/models"
	"github.com/tlemaire/jobmarket/internal/events"
	"github.com/tlemaire/jobmarket/internal/logger"
)

// Families of interchangeable contract labels; sources spell the same
// arrangement differently.
var contractEquivalents = map[string][]string{
	"cdi":   {"cdi", "permanent", "contract", "fulltime"},
	"cdd":   {"cdd", "temporary", "interim"},
	"stage": {"stage", "internship"},
}

type batchStore interface {
	LoadCanonical() ([]models.CanonicalOffer, error)
}

// SearchQuery is a free-text relevance search with optional filters.
type SearchQuery struct {
	Query        string
	Location     string
	ContractType string
	Page         int
	PageSize     int
}

// ListQuery is a filtered browse over the whole batch, without scoring.
type ListQuery struct {
	ContractType string
	Location     string
	Sort         string
	Seed         string
	Page         int
	PageSize     int
}

// Page is one page of results plus the size of the filtered set before
// pagination.
type Page struct {
	Results    []models.CanonicalOffer `json:"results"`
	TotalCount int                     `json:"total_count"`
	Page       int                     `json:"page"`
	PageSize   int                     `json:"page_size"`
}

// Service serves relevance searches and browse listings over the latest
// canonical batch. The engine is replaced wholesale on every persisted
// batch; queries running during a swap finish on the engine they
// started with.
type Service struct {
	store          batchStore
	weights        Weights
	candidateLimit int
	scoreThreshold float64

	mu     sync.RWMutex
	engine *Engine
	cache  *gocache.Cache
}

func NewService(store batchStore, bus EventBus.Bus, weights Weights, candidateLimit int, scoreThreshold float64) (*Service, error) {

	s := &Service{
		store:          store,
		weights:        weights,
		candidateLimit: candidateLimit,
		scoreThreshold: scoreThreshold,
		engine:         NewEngine(nil, weights),
		cache:          gocache.New(10*time.Minute, 20*time.Minute),
	}

	err := bus.Subscribe(events.BatchPersistedTopic, func(event events.BatchPersisted) {
		if err := s.Reload(); err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeMatching).
				Errorf("failed to rebuild the matching engine: %v", err)
		}
	})
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Reload builds a fresh engine from the latest canonical batch and
// swaps it in. The old engine keeps serving until the swap.
func (s *Service) Reload() error {

	offers, err := s.store.LoadCanonical()
	if err != nil {
		return errors.Wrap(err, "load canonical batch")
	}

	engine := NewEngine(offers, s.weights)

	s.mu.Lock()
	s.engine = engine
	s.mu.Unlock()
	s.cache.Flush()

	log.Infof("matching engine rebuilt over %d offers", engine.Size())
	return nil
}

func (s *Service) currentEngine() *Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// Search runs a relevance search. Location and contract terms are
// appended to the scored query so they pull matching documents up, then
// applied again as hard filters on the candidates.
func (s *Service) Search(query SearchQuery) Page {

	key := fmt.Sprintf("search|%s|%s|%s|%d|%d",
		query.Query, query.Location, query.ContractType, query.Page, query.PageSize)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(Page)
	}

	composed := query.Query
	if query.Location != "" {
		composed += " " + query.Location
	}
	if query.ContractType != "" {
		composed += " " + query.ContractType
	}

	matches := s.currentEngine().Search(composed, s.candidateLimit, s.scoreThreshold)

	var results []models.CanonicalOffer
	for _, match := range matches {
		if !contractSatisfies(match.Offer.ContractType, query.ContractType) {
			continue
		}
		if query.Location != "" &&
			!strings.Contains(strings.ToLower(match.Offer.Location), strings.ToLower(query.Location)) {
			continue
		}
		results = append(results, match.Offer)
	}

	page := paginate(results, query.Page, query.PageSize)
	s.cache.Set(key, page, gocache.DefaultExpiration)
	return page
}

// List browses the whole batch without scoring. Sort is one of "date",
// "date_asc" or "random"; random uses the seed so the same seed always
// yields the same order.
func (s *Service) List(query ListQuery) Page {

	key := fmt.Sprintf("list|%s|%s|%s|%s|%d|%d",
		query.ContractType, query.Location, query.Sort, query.Seed, query.Page, query.PageSize)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(Page)
	}

	var results []models.CanonicalOffer
	for _, offer := range s.currentEngine().Offers() {
		if !contractEquivalent(offer.ContractType, query.ContractType) {
			continue
		}
		if query.Location != "" &&
			!strings.Contains(strings.ToLower(offer.Location), strings.ToLower(query.Location)) {
			continue
		}
		results = append(results, offer)
	}

	switch query.Sort {
	case "random":
		shuffle(results, query.Seed)
	case "date_asc":
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].CreatedAtOrZero().Before(results[j].CreatedAtOrZero())
		})
	default:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].CreatedAtOrZero().After(results[j].CreatedAtOrZero())
		})
	}

	page := paginate(results, query.Page, query.PageSize)
	s.cache.Set(key, page, gocache.DefaultExpiration)
	return page
}

// contractSatisfies is the loose filter used by relevance search: any
// label of the requested family may appear inside the offer's label, so
// a cdi request keeps offers marked permanent or fulltime. A request
// outside every family falls back to containment of the term itself.
func contractSatisfies(offerContract, requested string) bool {
	if requested == "" {
		return true
	}

	offer := strings.ToLower(offerContract)
	want := strings.ToLower(strings.TrimSpace(requested))

	family, ok := contractEquivalents[want]
	if !ok {
		return strings.Contains(offer, want)
	}
	for _, label := range family {
		if strings.Contains(offer, label) {
			return true
		}
	}
	return false
}

// contractEquivalent is the strict filter used by browse listings: the
// offer's label must belong to the requested family. A request outside
// every family falls back to exact comparison.
func contractEquivalent(offerContract, requested string) bool {
	if requested == "" {
		return true
	}

	offer := strings.ToLower(strings.TrimSpace(offerContract))
	want := strings.ToLower(strings.TrimSpace(requested))

	family, ok := contractEquivalents[want]
	if !ok {
		return offer == want
	}
	for _, label := range family {
		if strings.Contains(offer, label) {
			return true
		}
	}
	return false
}

func shuffle(offers []models.CanonicalOffer, seed string) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))
	rng.Shuffle(len(offers), func(i, j int) {
		offers[i], offers[j] = offers[j], offers[i]
	})
}

func paginate(results []models.CanonicalOffer, page, pageSize int) Page {

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	total := len(results)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return Page{
		Results:    results[start:end],
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	}
}
