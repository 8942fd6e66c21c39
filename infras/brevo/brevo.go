package brevo

//go:generate go run go.uber.org/mock/mockgen -source=./brevo.go -destination=./mocks/brevo_mock.go -package=mocks

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"aspen/config"
	"aspen/infras/metrics"
	"aspen/infras/otel"
	"aspen/shared/constant"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	serviceName     = "brevo"
	endpointSend    = "/smtp/email"
	headerAPIKey    = "api-key"
	headerAccept    = "Accept"
	maxAttempts     = 4
	requestTimeout  = 20 * time.Second
	errorBodyLimit  = 4096
	otelAttrSubject = "subject"
)

var (
	ErrUnauthorized  = errors.New("brevo: unauthorized")
	ErrMissingSender = errors.New("brevo: sender email is not configured")
)

type Recipient struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type Email struct {
	To      Recipient
	Subject string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, email Email) (messageID string, err error)
}

type sendRequest struct {
	Sender      Recipient   `json:"sender"`
	To          []Recipient `json:"to"`
	Bcc         []Recipient `json:"bcc,omitempty"`
	Subject     string      `json:"subject"`
	HTMLContent string      `json:"htmlContent"`
}

type sendResponse struct {
	MessageID string `json:"messageId"`
}

type mailerImpl struct {
	config  *config.Config
	otel    otel.Otel
	client  *http.Client
	limiter *rate.Limiter
}

func New(cfg *config.Config, otel otel.Otel) Mailer {
	rps := cfg.External.Brevo.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}

	return &mailerImpl{
		config:  cfg,
		otel:    otel,
		client:  &http.Client{Timeout: requestTimeout},
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// Send delivers a transactional email. The hotel inbox is copied in production.
func (m *mailerImpl) Send(ctx context.Context, email Email) (messageID string, err error) {
	ctx, scope := m.otel.NewScope(ctx, constant.OtelExternalScopeName, constant.OtelExternalScopeName+".brevo.Send")
	defer scope.End()
	defer scope.TraceIfError(&err)

	scope.SetAttribute(otelAttrSubject, email.Subject)

	brevoCfg := m.config.External.Brevo
	if brevoCfg.SenderEmail == constant.Empty {
		return constant.Empty, ErrMissingSender
	}

	req := sendRequest{
		Sender:      Recipient{Email: brevoCfg.SenderEmail, Name: brevoCfg.SenderName},
		To:          []Recipient{email.To},
		Subject:     email.Subject,
		HTMLContent: email.HTML,
	}

	if m.config.Server.Env == constant.ServerEnvProduction && m.config.Booking.HotelEmail != constant.Empty {
		req.Bcc = []Recipient{{Email: m.config.Booking.HotelEmail}}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return constant.Empty, fmt.Errorf("failed to marshal email: %w", err)
	}

	if err = m.limiter.Wait(ctx); err != nil {
		return constant.Empty, fmt.Errorf("rate limiter: %w", err)
	}

	var res sendResponse
	if err = m.post(ctx, strings.TrimRight(brevoCfg.BaseURL, "/")+endpointSend, body, &res); err != nil {
		log.Error().Err(err).Str("subject", email.Subject).Msg("failed to send email")

		return constant.Empty, err
	}

	return res.MessageID, nil
}

// post retries on 429 and transient 5xx, honoring Retry-After.
func (m *mailerImpl) post(ctx context.Context, url string, body []byte, out any) error {
	var lastErr error

	for attempt := range maxAttempts {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}

		req.Header.Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
		req.Header.Set(headerAccept, constant.ContentTypeJSON)
		req.Header.Set(headerAPIKey, m.config.External.Brevo.APIKey)

		start := time.Now()
		resp, err := m.client.Do(req)

		if err != nil {
			metrics.ObserveExternal(serviceName, endpointSend, 0, time.Since(start))

			if ctx.Err() != nil {
				return ctx.Err() //nolint:wrapcheck
			}

			lastErr = err
			if attempt < maxAttempts-1 && sleepCtx(ctx, backoff(attempt)) {
				continue
			}

			return fmt.Errorf("failed to reach brevo: %w", lastErr)
		}

		metrics.ObserveExternal(serviceName, endpointSend, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated, http.StatusAccepted:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()

			if err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("failed to decode brevo response: %w", err)
			}

			return nil
		case http.StatusUnauthorized, http.StatusForbidden:
			resp.Body.Close()

			return ErrUnauthorized
		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()

			if wait == 0 {
				wait = backoff(attempt)
			}

			lastErr = fmt.Errorf("brevo responded %d", resp.StatusCode)
			if attempt < maxAttempts-1 && sleepCtx(ctx, wait) {
				continue
			}

			if ctx.Err() != nil {
				return ctx.Err() //nolint:wrapcheck
			}

			return lastErr
		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
			resp.Body.Close()

			return fmt.Errorf("brevo responded %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After in seconds or HTTP-date form.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == constant.Empty {
		return 0
	}

	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}

	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}

	return 0
}

// backoff doubles from 200ms with up to 50% jitter.
func backoff(attempt int) time.Duration {
	base := time.Duration(1<<attempt) * 200 * time.Millisecond

	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}

	jitter := time.Duration(0.5 * float64(b[0]) / 255.0 * float64(base))

	return base + jitter
}
