package events

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Tesseract-Nexus/go-shared/events"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog-cleanup-service/internal/models"
)

// EventBatchCompleted is emitted once per batch pass with the counter
// summary. Routed on the products stream alongside product.deleted.
const EventBatchCompleted = "product.cleanup_batch_completed"

// ActorInfo carries the identity of the admin driving a cleanup run
type ActorInfo struct {
	ActorID    string
	ActorName  string
	ActorEmail string
	ClientIP   string
	UserAgent  string
}

// Publisher wraps the go-shared events publisher for cleanup events
type Publisher struct {
	publisher *events.Publisher
	logger    *logrus.Entry
}

// NewPublisher creates a new cleanup events publisher
func NewPublisher(logger *logrus.Logger) (*Publisher, error) {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		// Default to GKE internal NATS service URL
		natsURL = "nats://nats.nats.svc.cluster.local:4222"
	}

	config := events.DefaultPublisherConfig(natsURL)
	config.Name = "catalog-cleanup-service"

	publisher, err := events.NewPublisher(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create events publisher: %w", err)
	}

	// Ensure the products stream exists
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := publisher.EnsureStream(ctx, events.StreamProducts, []string{"product.>"}); err != nil {
		logger.WithError(err).Warn("Failed to ensure products stream (may already exist)")
	}

	return &Publisher{
		publisher: publisher,
		logger:    logger.WithField("component", "cleanup-events"),
	}, nil
}

// Close closes the NATS connection
func (p *Publisher) Close() {
	if p.publisher != nil {
		p.publisher.Close()
	}
}

// PublishProductDeleted publishes a product.deleted event for one
// successfully removed product
func (p *Publisher) PublishProductDeleted(ctx context.Context, product *models.Product, tenantID string, actor ActorInfo) error {
	event := p.buildProductEvent(events.ProductDeleted, product, tenantID)
	p.applyActor(event, actor)
	event.ChangeType = "deleted"
	return p.publish(ctx, event)
}

// PublishBatchCompleted publishes the per-batch summary after a pass over
// one page of matching products
func (p *Publisher) PublishBatchCompleted(ctx context.Context, tenantID string, actor ActorInfo, filter *models.DeleteFilter, result *models.BatchDeleteResult) error {
	event := events.NewProductEvent(EventBatchCompleted, tenantID)
	event.SourceID = uuid.New().String()
	p.applyActor(event, actor)
	event.ChangeType = "cleanup_batch"
	event.NewValue = map[string]interface{}{
		"deleted":            result.Deleted,
		"images_deleted":     result.ImagesDeleted,
		"variations_deleted": result.VariationsDeleted,
		"remaining":          result.Remaining,
		"filters":            filter.Describe(),
	}
	return p.publish(ctx, event)
}

func (p *Publisher) applyActor(event *events.ProductEvent, actor ActorInfo) {
	event.ActorID = actor.ActorID
	event.ActorName = actor.ActorName
	event.ActorEmail = actor.ActorEmail
	event.ClientIP = actor.ClientIP
	event.UserAgent = actor.UserAgent
}

// buildProductEvent creates a ProductEvent from a product model
func (p *Publisher) buildProductEvent(eventType string, product *models.Product, tenantID string) *events.ProductEvent {
	event := events.NewProductEvent(eventType, tenantID)
	event.SourceID = uuid.New().String()
	event.ProductID = product.ID.String()
	event.ProductName = product.Name
	if product.SKU != nil {
		event.SKU = *product.SKU
	}
	event.Status = string(product.Status)
	if product.Price != nil {
		event.Price = product.Price.InexactFloat64()
	}
	return event
}

// publish is a helper that logs and publishes events asynchronously
func (p *Publisher) publish(ctx context.Context, event *events.ProductEvent) error {
	// Publish asynchronously to not block the deletion loop
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := p.publisher.PublishProduct(pubCtx, event); err != nil {
			p.logger.WithFields(logrus.Fields{
				"eventType": event.EventType,
				"productID": event.ProductID,
				"tenantID":  event.TenantID,
			}).WithError(err).Error("Failed to publish cleanup event")
		} else {
			p.logger.WithFields(logrus.Fields{
				"eventType": event.EventType,
				"productID": event.ProductID,
				"tenantID":  event.TenantID,
			}).Info("Cleanup event published successfully")
		}
	}()

	return nil
}
