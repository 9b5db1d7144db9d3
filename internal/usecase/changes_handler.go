package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"FinDash/internal/domain/models"
	domrepo "FinDash/internal/domain/repository"
	icache "FinDash/internal/service/cache"
	svcmetrics "FinDash/internal/service/metrics"
	applogger "FinDash/pkg/logger"
)

// ChangesHandler applies collection change events: it drops the cached
// queries derived from the collection and recomputes the forecast when the
// KPIs changed. It consumes the changes topic and also serves as the
// in-process applier when Kafka is disabled.
type ChangesHandler struct {
	topic    string
	cache    *icache.QueryCache
	forecast *ForecastUseCase
	l        *applogger.Logger
}

func NewChangesHandler(topic string, cache *icache.QueryCache, f *ForecastUseCase, l *applogger.Logger) *ChangesHandler {
	if l == nil {
		l = applogger.Nop()
	}
	svcmetrics.Register()
	return &ChangesHandler{topic: topic, cache: cache, forecast: f, l: l}
}

func (h *ChangesHandler) Topic() string { return h.topic }

func (h *ChangesHandler) Handle(ctx context.Context, payload []byte) error {
	var ev models.ChangeEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		// A malformed event cannot succeed on retry.
		h.l.Warn("discarding malformed change event", applogger.Error(err))
		return nil
	}
	return h.Apply(ctx, ev)
}

func (h *ChangesHandler) Apply(ctx context.Context, ev models.ChangeEvent) error {
	if !ev.Collection.Valid() {
		h.l.Warn("change event for unknown collection", applogger.String("collection", string(ev.Collection)))
		return nil
	}

	tag := ev.Collection.Tag()
	n, err := h.cache.Invalidate(ctx, tag)
	if err != nil {
		return fmt.Errorf("invalidate %s: %w", tag, err)
	}
	svcmetrics.ChangesApplied.WithLabelValues(string(ev.Collection)).Inc()
	svcmetrics.InvalidatedEntries.WithLabelValues(tag).Add(float64(n))
	h.l.Info("change applied",
		applogger.String("collection", string(ev.Collection)),
		applogger.String("reason", ev.Reason),
		applogger.Int("invalidated", n),
	)

	if ev.Collection != models.CollectionKPIs || h.forecast == nil {
		return nil
	}
	if _, err := h.forecast.Refresh(ctx); err != nil {
		if errors.Is(err, domrepo.ErrUnavailable) {
			h.l.Warn("forecast refresh skipped, no revenue data", applogger.Error(err))
			return nil
		}
		return fmt.Errorf("refresh forecast: %w", err)
	}
	return nil
}
