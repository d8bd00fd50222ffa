// Package dgii resolves RNCs against the DGII web consultation form: fetch
// the page, lift its anti-forgery tokens, submit the query, and read the
// result labels.
package dgii

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/rnc-cli/internal/metrics"
	"github.com/sells-group/rnc-cli/internal/resilience"
	"github.com/sells-group/rnc-cli/internal/rnc"
)

const (
	// DefaultTimeout bounds the whole fetch+submit sequence.
	DefaultTimeout = 30 * time.Second

	defaultUserAgent = "Mozilla/5.0 (compatible; rnc-cli/1.0)"
	maxBodyBytes     = 4 << 20
)

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Form      Form
	Extractor Extractor
	Transport http.RoundTripper
	Guard     *resilience.Guard
	Metrics   *metrics.Metrics
}

// Client performs one fetch+submit cycle per Resolve call. It holds no
// per-request state and is safe for concurrent use.
type Client struct {
	baseURL   string
	timeout   time.Duration
	userAgent string
	form      Form
	extractor Extractor
	transport http.RoundTripper
	guard     *resilience.Guard
	metrics   *metrics.Metrics
}

// New creates a Client, filling unset options with DGII defaults.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Form == (Form{}) {
		opts.Form = DefaultForm()
	}
	if opts.Extractor == nil {
		opts.Extractor = GoqueryExtractor{}
	}
	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}
	return &Client{
		baseURL:   opts.BaseURL,
		timeout:   opts.Timeout,
		userAgent: opts.UserAgent,
		form:      opts.Form,
		extractor: opts.Extractor,
		transport: opts.Transport,
		guard:     opts.Guard,
		metrics:   opts.Metrics,
	}
}

// Resolve queries the DGII form for identifier. Every failure is a
// *rnc.ResolutionError. No retries are made.
func (c *Client) Resolve(ctx context.Context, identifier string) (*rnc.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.guard.Admit(ctx); err != nil {
		if errors.Is(err, resilience.ErrBreakerOpen) || errors.Is(err, resilience.ErrRateLimited) {
			return nil, rnc.WrapError(rnc.KindServiceUnavailable, "dgii calls are being throttled locally", err)
		}
		return nil, classify(ctx, err, "admit")
	}

	rec, err := c.resolve(ctx, identifier)
	c.guard.Done(err)
	return rec, err
}

func (c *Client) resolve(ctx context.Context, identifier string) (*rnc.Record, error) {
	log := zap.L().With(zap.String("component", "dgii"), zap.String("rnc", identifier))

	sess, err := c.fetchForm(ctx, log)
	if err != nil {
		return nil, err
	}

	page, err := c.submit(ctx, sess, identifier, log)
	if err != nil {
		return nil, err
	}

	name, okName := page.Field(c.form.NameID)
	status, okStatus := page.Field(c.form.StatusID)
	if !okName || !okStatus {
		return nil, rnc.NewError(rnc.KindNotFound, "no DGII record for "+identifier)
	}

	return &rnc.Record{
		RNC:    identifier,
		Name:   name,
		Status: status,
		Source: rnc.SourceRemote,
	}, nil
}

// fetchForm GETs the consultation page and lifts the hidden tokens.
func (c *Client) fetchForm(ctx context.Context, log *zap.Logger) (*formSession, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, rnc.WrapError(rnc.KindInternal, "create cookie jar", err)
	}
	sess := &formSession{client: &http.Client{Transport: c.transport, Jar: jar}}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, rnc.WrapError(rnc.KindInternal, "create form request", err)
	}
	c.setHeaders(req)

	body, err := c.roundTrip(ctx, sess.client, req, "fetch", log)
	if err != nil {
		return nil, err
	}

	page, err := c.extractor.Parse(body)
	if err != nil {
		return nil, rnc.WrapError(rnc.KindInternal, "parse form page", err)
	}

	var missing []string
	lift := func(id string) string {
		v, ok := page.Field(id)
		if !ok {
			missing = append(missing, id)
		}
		return v
	}
	sess.viewState = lift(c.form.ViewStateID)
	sess.viewStateGenerator = lift(c.form.ViewStateGeneratorID)
	sess.eventValidation = lift(c.form.EventValidationID)
	if len(missing) > 0 {
		log.Warn("dgii form page is missing session tokens", zap.Strings("missing", missing))
		return nil, rnc.NewError(rnc.KindTokenExtraction,
			"DGII page is missing hidden fields: "+strings.Join(missing, ", "))
	}
	return sess, nil
}

// submit POSTs the query with the lifted tokens and parses the answer.
func (c *Client) submit(ctx context.Context, sess *formSession, identifier string, log *zap.Logger) (Page, error) {
	form := sess.payload(c.form, identifier).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form))
	if err != nil {
		return nil, rnc.WrapError(rnc.KindInternal, "create query request", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", c.baseURL)

	body, err := c.roundTrip(ctx, sess.client, req, "submit", log)
	if err != nil {
		return nil, err
	}

	page, err := c.extractor.Parse(body)
	if err != nil {
		return nil, rnc.WrapError(rnc.KindInternal, "parse result page", err)
	}
	return page, nil
}

// roundTrip performs req and returns the body of a 200 response. 403 means
// DGII is blocking us; any other non-200 is an upstream fault.
func (c *Client) roundTrip(ctx context.Context, client *http.Client, req *http.Request, phase string, log *zap.Logger) ([]byte, error) {
	start := time.Now()
	resp, err := client.Do(req)
	c.metrics.ObserveRemotePhase(phase, time.Since(start))
	if err != nil {
		return nil, classify(ctx, err, phase)
	}
	defer resp.Body.Close() //nolint:errcheck

	log.Debug("dgii response", zap.String("phase", phase), zap.Int("status", resp.StatusCode))

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return nil, rnc.NewError(rnc.KindServiceUnavailable,
			"DGII is temporarily unavailable ("+phase+" returned 403), try again later")
	case resp.StatusCode != http.StatusOK:
		return nil, rnc.NewError(rnc.KindUpstream,
			"DGII "+phase+" returned status "+strconv.Itoa(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, classify(ctx, err, phase)
	}
	return body, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
}

// classify maps a transport failure to a resolution error kind.
func classify(ctx context.Context, err error, phase string) error {
	wrapped := eris.Wrapf(err, "dgii: %s", phase)
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded) || resilience.IsTimeout(err):
		return rnc.WrapError(rnc.KindTimeout, "timed out talking to DGII", wrapped)
	case resilience.IsConnectError(err):
		return rnc.WrapError(rnc.KindConnection, "could not connect to DGII", wrapped)
	default:
		return rnc.WrapError(rnc.KindInternal, "dgii "+phase, wrapped)
	}
}

// TripsBreaker reports whether err says something about DGII's health. A
// clean "no match" answer or a local bug should not open the breaker.
func TripsBreaker(err error) bool {
	switch rnc.KindOf(err) {
	case rnc.KindServiceUnavailable, rnc.KindUpstream, rnc.KindTimeout, rnc.KindConnection:
		return true
	default:
		return false
	}
}
