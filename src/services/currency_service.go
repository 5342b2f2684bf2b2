package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/pitfolio/backend/src/logger"
	"github.com/username/pitfolio/backend/src/models"
)

// ErrCurrencyFetchFailed wraps any network or decoding failure while
// fetching a year's rate table. One failed year fails the whole step.
var ErrCurrencyFetchFailed = errors.New("failed to fetch currency data")

const (
	ckRateTable = "rates_%s_%s" // currency, year

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

// currencyServiceImpl fetches NBP table A rate tables, with an in-memory
// cache in front of an optional persistent store.
type currencyServiceImpl struct {
	httpClient *http.Client
	baseURL    string
	memCache   *cache.Cache
	store      RateStore
}

// NewCurrencyService creates the NBP client. store may be nil, in which case
// only the in-memory cache is used.
func NewCurrencyService(baseURL string, memCache *cache.Cache, store RateStore) CurrencyService {
	return &currencyServiceImpl{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    baseURL,
		memCache:   memCache,
		store:      store,
	}
}

// RatesForYear returns the rate table for one currency and year, consulting
// the memory cache, then the persistent store, then the provider.
func (s *currencyServiceImpl) RatesForYear(ctx context.Context, currency, year string) (models.CurrencyData, error) {
	cacheKey := fmt.Sprintf(ckRateTable, currency, year)

	if s.memCache != nil {
		if cached, found := s.memCache.Get(cacheKey); found {
			return cached.(models.CurrencyData), nil
		}
	}

	if s.store != nil {
		if data, found := s.store.Get(currency, year); found {
			if s.memCache != nil {
				s.memCache.Set(cacheKey, data, cache.DefaultExpiration)
			}
			return data, nil
		}
	}

	data, err := s.fetchYear(ctx, currency, year)
	if err != nil {
		return models.CurrencyData{}, err
	}

	if s.memCache != nil {
		s.memCache.Set(cacheKey, data, cache.DefaultExpiration)
	}
	if s.store != nil {
		s.store.Put(currency, year, data)
	}
	return data, nil
}

func (s *currencyServiceImpl) fetchYear(ctx context.Context, currency, year string) (models.CurrencyData, error) {
	url := fmt.Sprintf("%s/api/exchangerates/rates/A/%s/%s-01-01/%s-12-31?format=json",
		s.baseURL, currency, year, year)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.CurrencyData{}, fmt.Errorf("%w: %v", ErrCurrencyFetchFailed, err)
	}

	logger.L.Info("Fetching exchange rates", "currency", currency, "year", year)
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return models.CurrencyData{}, fmt.Errorf("%w for %s/%s: %v", ErrCurrencyFetchFailed, currency, year, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.CurrencyData{}, fmt.Errorf("%w for %s/%s: provider returned status %d", ErrCurrencyFetchFailed, currency, year, resp.StatusCode)
	}

	var data models.CurrencyData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return models.CurrencyData{}, fmt.Errorf("%w for %s/%s: decoding response: %v", ErrCurrencyFetchFailed, currency, year, err)
	}

	logger.L.Info("Exchange rates fetched", "currency", currency, "year", year, "rateCount", len(data.Rates))
	return data, nil
}

// RatesForYears fans out one fetch per distinct year and waits for all of
// them. All-or-nothing: the first error wins and no partial map is returned.
func (s *currencyServiceImpl) RatesForYears(ctx context.Context, currency string, years []string) (map[string]models.CurrencyData, error) {
	results := make(map[string]models.CurrencyData, len(years))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for _, year := range years {
		wg.Add(1)
		go func(year string) {
			defer wg.Done()
			data, err := s.RatesForYear(ctx, currency, year)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			results[year] = data
		}(year)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
