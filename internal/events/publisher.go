// Package events provides NATS event publishing for stock alerts
package events

import (
	"context"
	"fmt"
	"os"
	"time"

	"analytics-service/internal/models"
	"github.com/Tesseract-Nexus/go-shared/events"
	"github.com/sirupsen/logrus"
)

// Publisher wraps the go-shared events publisher for stock alert events
type Publisher struct {
	publisher *events.Publisher
	logger    *logrus.Entry
}

// NewPublisher creates a new stock alert publisher
func NewPublisher(logger *logrus.Logger) (*Publisher, error) {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		// Default to GKE internal NATS service URL
		natsURL = "nats://nats.nats.svc.cluster.local:4222"
	}

	config := events.DefaultPublisherConfig(natsURL)
	config.Name = "analytics-service"

	publisher, err := events.NewPublisher(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create events publisher: %w", err)
	}

	// Ensure the inventory stream exists
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := publisher.EnsureStream(ctx, events.StreamInventory, []string{"inventory.>"}); err != nil {
		logger.WithError(err).Warn("Failed to ensure inventory stream (may already exist)")
	}

	return &Publisher{
		publisher: publisher,
		logger:    logger.WithField("component", "stock-alert-events"),
	}, nil
}

// Close closes the NATS connection
func (p *Publisher) Close() {
	if p.publisher != nil {
		p.publisher.Close()
	}
}

// PublishLowStockAlert publishes an inventory.low_stock event for the given variants
func (p *Publisher) PublishLowStockAlert(ctx context.Context, tenantID string, items []models.LowStockItem) {
	if len(items) == 0 {
		return
	}

	event := events.NewInventoryEvent(events.InventoryLowStock, tenantID)
	event.Items = alertItems(items)
	event.AlertLevel = "warning"
	event.AlertMessage = fmt.Sprintf("Low stock alert: %d variants at or below their reorder point", len(items))
	event.CalculateSummary()

	p.publish(event, len(items))
}

// PublishOutOfStockAlert publishes an inventory.out_of_stock event for the given variants
func (p *Publisher) PublishOutOfStockAlert(ctx context.Context, tenantID string, items []models.LowStockItem) {
	if len(items) == 0 {
		return
	}

	event := events.NewInventoryEvent(events.InventoryOutOfStock, tenantID)
	event.Items = alertItems(items)
	event.AlertLevel = "critical"
	event.AlertMessage = fmt.Sprintf("Out of stock: %d variants have no units remaining", len(items))
	event.CalculateSummary()

	p.publish(event, len(items))
}

// alertItems maps the report entries onto the shared event item shape
func alertItems(items []models.LowStockItem) []events.InventoryItem {
	eventItems := make([]events.InventoryItem, 0, len(items))
	for _, item := range items {
		eventItems = append(eventItems, events.InventoryItem{
			ProductID:    item.VariantID,
			Name:         fmt.Sprintf("%s %s %s", item.ProductName, item.Size, item.Color),
			CurrentStock: item.CurrentStock,
			ReorderPoint: item.MinimumStock,
		})
	}
	return eventItems
}

// publish sends the event asynchronously so report calls never block on NATS
func (p *Publisher) publish(event *events.InventoryEvent, itemCount int) {
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := p.publisher.PublishInventory(pubCtx, event); err != nil {
			p.logger.WithFields(logrus.Fields{
				"eventType": event.EventType,
				"tenantID":  event.TenantID,
				"items":     itemCount,
			}).WithError(err).Error("Failed to publish stock alert event")
			return
		}

		p.logger.WithFields(logrus.Fields{
			"eventType": event.EventType,
			"tenantID":  event.TenantID,
			"items":     itemCount,
		}).Info("Stock alert event published")
	}()
}
