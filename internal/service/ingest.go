package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/botwall-io/botwall/internal/classifier"
	"github.com/botwall-io/botwall/internal/httputil"
	"github.com/botwall-io/botwall/internal/logging"
	"github.com/botwall-io/botwall/internal/messaging"
	"github.com/botwall-io/botwall/internal/metrics"
	"github.com/botwall-io/botwall/internal/models"
	"github.com/botwall-io/botwall/internal/repository"
)

// IngestService accepts bot-suspected hits from site plugins, classifies
// them, and appends them to the event log. Acceptance is durable: a hit
// is acknowledged only after the write lands.
type IngestService struct {
	repo       repository.Repository
	validator  *ValidatorService
	classifier classifier.Classifier
	pricing    PricingPolicy
	publisher  messaging.Publisher
	logger     *logging.Logger
}

func NewIngestService(
	repo repository.Repository,
	validator *ValidatorService,
	cls classifier.Classifier,
	pricing PricingPolicy,
	publisher messaging.Publisher,
	logger *logging.Logger,
) *IngestService {
	return &IngestService{
		repo:       repo,
		validator:  validator,
		classifier: cls,
		pricing:    pricing,
		publisher:  publisher,
		logger:     logger,
	}
}

// Ingest validates the key, classifies the hit, and persists it.
// transportIP is the connection-level client address, used when the
// plugin did not report the original visitor IP itself.
func (s *IngestService) Ingest(ctx context.Context, apiKey string, req *models.IngestRequest, transportIP string) (*models.BotRequest, error) {
	verdict, err := s.validator.Validate(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	if !verdict.Valid {
		metrics.IngestRejected.WithLabelValues("unauthorized").Inc()
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, verdict.Reason)
	}
	site := verdict.Site

	if strings.TrimSpace(req.Path) == "" {
		metrics.IngestRejected.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: missing path", ErrInvalidInput)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate event ID: %w", err)
	}

	ts := time.Now().UTC()
	if req.Timestamp != nil && !req.Timestamp.IsZero() {
		ts = req.Timestamp.UTC()
	}

	sourceIP := req.SourceIP
	if sourceIP == "" {
		sourceIP = transportIP
	}

	result := s.classifier.Classify(req.UserAgent, req.Path)

	event := &models.BotRequest{
		ID:             id.String(),
		SiteID:         site.ID,
		Timestamp:      ts,
		UserAgent:      req.UserAgent,
		SourceIP:       httputil.TruncateIP(sourceIP),
		Path:           req.Path,
		Classification: result.Classification,
		BotFamily:      result.BotFamily,
	}

	if err := s.repo.CreateBotRequest(ctx, event); err != nil {
		metrics.IngestRejected.WithLabelValues("storage").Inc()
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	metrics.EventsIngested.WithLabelValues(string(event.Classification)).Inc()

	s.publishDelta(ctx, site, event)

	return event, nil
}

// publishDelta hands the event's rollup contribution to the bus. The
// event is already durable in the log, so a publish failure only delays
// the incremental rollup and is logged rather than surfaced.
func (s *IngestService) publishDelta(ctx context.Context, site *models.Site, event *models.BotRequest) {
	delta := messaging.RollupDelta{
		SiteID:  event.SiteID,
		Day:     event.Timestamp.UTC().Truncate(24 * time.Hour),
		IsBot:   event.IsBot(),
		Revenue: s.pricing.EventRevenue(site, event),
	}
	if err := s.publisher.PublishJSON(ctx, messaging.SubjectRollupDeltas, delta); err != nil {
		s.logger.WarnContext(ctx, "rollup delta publish failed",
			logging.SiteID(event.SiteID),
			logging.EventID(event.ID),
			logging.Error(err),
		)
	}
}
