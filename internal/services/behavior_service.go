package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"analytics-service/internal/models"
	"analytics-service/internal/repository"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultBehaviorWindowDays is the default behavior lookback window
	DefaultBehaviorWindowDays = 90
	// MaxBehaviorWindowDays bounds the behavior lookback window
	MaxBehaviorWindowDays = 365
)

// BehaviorService derives behavioral profiles from a client's purchase history
type BehaviorService struct {
	catalog repository.CatalogReader
	sales   repository.SaleReader
	logger  *logrus.Entry
}

func NewBehaviorService(catalog repository.CatalogReader, sales repository.SaleReader, logger *logrus.Logger) *BehaviorService {
	return &BehaviorService{
		catalog: catalog,
		sales:   sales,
		logger:  logger.WithField("component", "behavior_service"),
	}
}

// AnalyzeClientBehavior builds a behavioral profile from the client's completed
// sales within the lookback window. A client with no sales in the window gets
// the cold-start sentinel profile, never an error.
func (s *BehaviorService) AnalyzeClientBehavior(ctx context.Context, tenantID, clientID string, daysPeriod int) (*models.BehaviorProfile, error) {
	if daysPeriod == 0 {
		daysPeriod = DefaultBehaviorWindowDays
	}
	if daysPeriod < 1 || daysPeriod > MaxBehaviorWindowDays {
		return nil, fmt.Errorf("%w: daysPeriod must be between 1 and %d", ErrInvalidRequest, MaxBehaviorWindowDays)
	}

	if _, err := s.catalog.GetClient(ctx, tenantID, clientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: client %s", ErrNotFound, clientID)
		}
		return nil, err
	}

	since := time.Now().AddDate(0, 0, -daysPeriod)
	sales, err := s.sales.ListCompletedSalesByClient(ctx, tenantID, clientID, since)
	if err != nil {
		return nil, err
	}

	if len(sales) == 0 {
		return coldStartProfile(clientID), nil
	}

	categories := newWeightedCounter()
	sizes := newWeightedCounter()
	colors := newWeightedCounter()

	var totalAmount float64
	firstPurchase := sales[0].SaleDate
	lastPurchase := sales[0].SaleDate

	for _, sale := range sales {
		totalAmount += sale.Total
		if sale.SaleDate.Before(firstPurchase) {
			firstPurchase = sale.SaleDate
		}
		if sale.SaleDate.After(lastPurchase) {
			lastPurchase = sale.SaleDate
		}

		for _, line := range sale.Lines {
			if line.Variant == nil {
				continue
			}
			if line.Variant.Product != nil {
				categories.Add(line.Variant.Product.Category, line.Quantity)
			}
			sizes.Add(line.Variant.Size, line.Quantity)
			colors.Add(line.Variant.Color, line.Quantity)
		}
	}

	averageOrderValue := totalAmount / float64(len(sales))

	frequency := models.FrequencyLow
	if span := lastPurchase.Sub(firstPurchase).Hours() / 24; span > 0 {
		rate := float64(len(sales)) / span
		if rate > 0.1 {
			frequency = models.FrequencyHigh
		} else if rate > 0.05 {
			frequency = models.FrequencyMedium
		}
	}

	pricePreference := models.PriceBudget
	if averageOrderValue > 200 {
		pricePreference = models.PricePremium
	} else if averageOrderValue > 80 {
		pricePreference = models.PriceMidRange
	}

	s.logger.WithFields(logrus.Fields{
		"tenantId": tenantID,
		"clientId": clientID,
		"sales":    len(sales),
	}).Debug("Client behavior analyzed")

	return &models.BehaviorProfile{
		ClientID:            clientID,
		PreferredCategories: categories.Top(3),
		AverageOrderValue:   averageOrderValue,
		FrequentSizes:       sizes.Top(3),
		FrequentColors:      colors.Top(3),
		LastPurchaseDate:    lastPurchase,
		PurchaseFrequency:   frequency,
		PricePreference:     pricePreference,
	}, nil
}

// AnalyzeClients runs the behavior analysis over a batch of clients and
// aggregates the common traits
func (s *BehaviorService) AnalyzeClients(ctx context.Context, tenantID string, req *models.BulkBehaviorRequest) (*models.BulkBehaviorResponse, error) {
	if len(req.ClientIDs) == 0 {
		return nil, fmt.Errorf("%w: clientIds must not be empty", ErrInvalidRequest)
	}

	analyses := make([]models.BehaviorProfile, 0, len(req.ClientIDs))
	categories := newWeightedCounter()
	sizes := newWeightedCounter()
	colors := newWeightedCounter()
	var totalAOV float64

	for _, clientID := range req.ClientIDs {
		profile, err := s.AnalyzeClientBehavior(ctx, tenantID, clientID, req.DaysPeriod)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, *profile)
		totalAOV += profile.AverageOrderValue
		for _, c := range profile.PreferredCategories {
			categories.Add(c, 1)
		}
		for _, sz := range profile.FrequentSizes {
			sizes.Add(sz, 1)
		}
		for _, c := range profile.FrequentColors {
			colors.Add(c, 1)
		}
	}

	return &models.BulkBehaviorResponse{
		TotalClients: len(analyses),
		Analyses:     analyses,
		Summary: models.BulkBehaviorSummary{
			AverageOrderValue:       totalAOV / float64(len(analyses)),
			MostPreferredCategories: categories.Top(5),
			CommonSizes:             sizes.Top(5),
			CommonColors:            colors.Top(5),
		},
	}, nil
}

func coldStartProfile(clientID string) *models.BehaviorProfile {
	return &models.BehaviorProfile{
		ClientID:            clientID,
		PreferredCategories: []string{},
		AverageOrderValue:   0,
		FrequentSizes:       []string{},
		FrequentColors:      []string{},
		LastPurchaseDate:    time.Now(),
		PurchaseFrequency:   models.FrequencyLow,
		PricePreference:     models.PriceBudget,
	}
}

// weightedCounter accumulates quantity-weighted counts, keeping the first
// encounter order for stable tie breaking
type weightedCounter struct {
	order  []string
	counts map[string]int
}

func newWeightedCounter() *weightedCounter {
	return &weightedCounter{counts: make(map[string]int)}
}

func (c *weightedCounter) Add(key string, weight int) {
	if key == "" {
		return
	}
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key] += weight
}

// Top returns the n highest-weighted keys, ties broken by first encounter
func (c *weightedCounter) Top(n int) []string {
	keys := append([]string(nil), c.order...)
	sort.SliceStable(keys, func(i, j int) bool {
		return c.counts[keys[i]] > c.counts[keys[j]]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	if keys == nil {
		keys = []string{}
	}
	return keys
}
