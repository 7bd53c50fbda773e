package events

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/camp-scoreboard/internal/platform/logging"
	"github.com/riskibarqy/camp-scoreboard/internal/platform/resilience"
	"github.com/riskibarqy/camp-scoreboard/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var errWebhookTransient = crerr.New("event webhook transient failure")

const (
	headerEventType    = "X-Scoreboard-Event"
	headerDeliveryID   = "X-Scoreboard-Delivery"
	maxErrorBodyLength = 4096
)

type WebhookPublisherConfig struct {
	URL            string
	Token          string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// WebhookPublisher posts change events to a single subscriber URL. Network
// errors, 408, 429 and 5xx count against the circuit breaker. Other 4xx
// answers are the subscriber rejecting the payload and do not trip it.
type WebhookPublisher struct {
	client         *http.Client
	url            string
	token          string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewWebhookPublisher(cfg WebhookPublisherConfig, logger *logging.Logger) (*WebhookPublisher, error) {
	target, err := validateHTTPURL(cfg.URL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid EVENTS_WEBHOOK_URL")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)
	breaker := resilience.NewCircuitBreakerFromConfig(breakerCfg)
	breaker.OnStateChange(func(from, to resilience.CircuitState) {
		logger.Warn("event webhook circuit changed state", "from", string(from), "to", string(to))
	})

	return &WebhookPublisher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		url:            target,
		token:          strings.TrimSpace(cfg.Token),
		logger:         logger,
		breaker:        breaker,
		circuitEnabled: breakerCfg.Enabled,
	}, nil
}

var _ usecase.EventPublisher = (*WebhookPublisher)(nil)

func (p *WebhookPublisher) Publish(ctx context.Context, event usecase.ChangeEvent) error {
	if p.circuitEnabled {
		if err := p.breaker.Allow(); err != nil {
			p.logger.WarnContext(ctx, "event webhook circuit rejected delivery",
				"event_type", event.Type,
				"state", string(p.breaker.State()),
			)
			return crerr.Wrap(err, "event webhook is temporarily unavailable")
		}
	}

	err := p.deliver(ctx, event)
	p.recordCircuitResult(ctx, err)
	return err
}

func (p *WebhookPublisher) deliver(ctx context.Context, event usecase.ChangeEvent) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(event); err != nil {
		return crerr.Wrap(err, "encode change event")
	}

	deliveryID := deliveryKey(event)
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("scoreboard.event.type", event.Type),
			attribute.String("scoreboard.event.delivery_id", deliveryID),
			attribute.Int("scoreboard.event.size", buf.Len()),
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return crerr.Wrap(err, "create event webhook request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerEventType, event.Type)
	req.Header.Set(headerDeliveryID, deliveryID)
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return crerr.WithSecondaryError(crerr.Wrapf(errWebhookTransient, "post %s event", event.Type), err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLength))
		body := strings.TrimSpace(string(raw))
		if isRetryableStatus(resp.StatusCode) {
			return crerr.Wrapf(errWebhookTransient, "post %s event status=%d body=%s", event.Type, resp.StatusCode, body)
		}
		return crerr.Newf("post %s event status=%d body=%s", event.Type, resp.StatusCode, body)
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	p.logger.DebugContext(ctx, "change event delivered",
		"event_type", event.Type,
		"delivery_id", deliveryID,
	)
	return nil
}

func (p *WebhookPublisher) recordCircuitResult(ctx context.Context, err error) {
	if !p.circuitEnabled {
		return
	}
	switch {
	case err == nil:
		p.breaker.RecordSuccess()
	case ctx.Err() != nil:
		// caller went away; says nothing about the subscriber
	case crerr.Is(err, errWebhookTransient):
		p.breaker.RecordFailure()
	default:
		p.breaker.RecordSuccess()
	}
}

// deliveryKey is stable for a given event so subscribers can drop repeats.
func deliveryKey(event usecase.ChangeEvent) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(event.Type)
	if event.TeamID != "" {
		_ = buf.WriteByte(':')
		_, _ = buf.WriteString(event.TeamID)
	}
	if !event.Day.IsZero() {
		_ = buf.WriteByte(':')
		_, _ = buf.WriteString(event.Day.String())
	}
	if len(event.EntryIDs) > 0 {
		_ = buf.WriteByte(':')
		_, _ = buf.WriteString(event.EntryIDs[0])
	} else {
		_ = buf.WriteByte(':')
		_, _ = buf.WriteString(strconv.FormatInt(event.OccurredAt.UnixNano(), 10))
	}
	return buf.String()
}

func validateHTTPURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return candidate, nil
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}
