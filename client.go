package trustly

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/sebamiro/trustly/fault"
	"github.com/sebamiro/trustly/internal/rpc"
	"github.com/sebamiro/trustly/message"
	"github.com/sebamiro/trustly/payload"
	"github.com/sebamiro/trustly/sign"
)

// APIPath is the path every call is posted to.
const APIPath = "/api/1"

// Fault messages raised while validating a reply.
const (
	SignatureError = "Incoming message signature is not valid"
	UUIDMismatch   = "Incoming response is not related to the request. UUID mismatch."
)

// Reply is the raw answer returned by a Transport.
type Reply = rpc.Reply

// Transport delivers a serialized request and returns the raw reply.
// Failures should be *fault.Error values; anything else is reported as a
// connection fault.
type Transport interface {
	Post(ctx context.Context, path, method string, body []byte) (*Reply, error)
}

// HTTPDoer is the subset of *http.Client used by the default transport.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Signed is any message carrying a signature over (method, uuid, data).
type Signed interface {
	Method() string
	UUID() string
	Data() payload.Value
	Signature() string
}

// Client performs signed calls and handles notifications.
//
// A call assigns a UUID when the request has none, writes the merchant
// credentials into Data, signs the request, posts it, parses the reply and
// checks that the reply echoes the request UUID and carries a valid
// counterparty signature. Every failure is returned as a *fault.Error.
//
// Client is safe for concurrent use when its Transport is.
type Client struct {
	transport Transport
	username  string
	password  string
	signer    sign.Signer
	verifier  sign.Verifier
	logger    *zap.Logger
	metrics   *Metrics
	newUUID   func() string

	httpClient HTTPDoer
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics records calls and notifications in m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTransport replaces the HTTP transport.
func WithTransport(t Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithHTTPClient sets the HTTP client used by the default transport.
func WithHTTPClient(h HTTPDoer) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithUUIDGenerator replaces the generator of request UUIDs.
func WithUUIDGenerator(f func() string) Option {
	return func(c *Client) { c.newUUID = f }
}

// New validates cfg and returns a Client. Keys that are missing or cannot
// be parsed count as not specified; all configuration problems are
// reported together in one configuration fault.
func New(cfg Config, opts ...Option) (*Client, error) {
	c := &Client{
		username: cfg.Username,
		password: cfg.Password,
		logger:   zap.NewNop(),
		newUUID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}

	publicKey, hasPublic := loadKey(c.logger, "public", cfg.PublicKeyPEM, cfg.PublicKeyFile, sign.ParsePublicKey)
	privateKey, hasPrivate := loadKey(c.logger, "private", cfg.PrivateKeyPEM, cfg.PrivateKeyFile, sign.ParsePrivateKey)

	var problems []string
	if cfg.Host == "" {
		problems = append(problems, "Api host not specified")
	}
	if !hasPublic {
		problems = append(problems, "Trustly public key not specified")
	}
	if cfg.Username == "" {
		problems = append(problems, "Username not specified")
	}
	if cfg.Password == "" {
		problems = append(problems, "Password not specified")
	}
	if !hasPrivate {
		problems = append(problems, "Merchant private key not specified")
	}
	if err := fault.Configuration(problems); err != nil {
		return nil, err
	}

	c.verifier = sign.NewRSAVerifier(publicKey)
	c.signer = sign.NewRSASigner(privateKey)
	if c.transport == nil {
		h := c.httpClient
		if h == nil {
			h = &http.Client{Timeout: cfg.Timeout}
		}
		c.transport = rpc.Client{HTTP: h, URL: cfg.BaseURL()}
	}
	return c, nil
}

func loadKey[K any](logger *zap.Logger, which, inline, file string, parse func([]byte) (K, error)) (K, bool) {
	var zero K
	b, err := keyPEM(inline, file)
	if err != nil {
		logger.Warn("could not read key file", zap.String("key", which), zap.String("file", file), zap.Error(err))
		return zero, false
	}
	if len(b) == 0 {
		return zero, false
	}
	key, err := parse(b)
	if err != nil {
		logger.Warn("could not parse key", zap.String("key", which), zap.Error(err))
		return zero, false
	}
	return key, true
}

// Call signs and sends req and returns the validated response. req gets
// a UUID when it has none, the merchant credentials, and its signature.
func (c *Client) Call(ctx context.Context, req *message.Request) (*message.Response, error) {
	start := time.Now()
	resp, err := c.call(ctx, req)
	c.metrics.observeDuration(req.Method(), time.Since(start))
	c.metrics.observeCall(req.Method(), resp, err)
	return resp, err
}

func (c *Client) call(ctx context.Context, req *message.Request) (*message.Response, error) {
	if req.UUID() == "" {
		req.SetUUID(c.newUUID())
	}
	logger := c.logger.With(zap.String("method", req.Method()), zap.String("uuid", req.UUID()))

	if err := c.insertCredentials(req); err != nil {
		return nil, err
	}
	logger.Debug("request signed")

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fault.Wrap(fault.KindData, err)
	}
	reply, err := c.transport.Post(ctx, APIPath, req.Method(), body)
	if err != nil {
		logger.Warn("request failed", zap.Error(err))
		if fault.KindOf(err) == fault.KindUnknown {
			return nil, fault.Wrap(fault.KindConnection, err)
		}
		return nil, err
	}
	logger.Debug("reply received", zap.Int("status", reply.Status))

	v, err := payload.Parse(reply.Body)
	if err != nil {
		err = rpc.ReplyFault(fault.KindData, errors.Wrap(err, "Could not parse response body"), reply, req.Method(), body)
		logger.Warn("invalid reply", zap.Error(err))
		return nil, err
	}
	resp, err := message.NewResponse(reply.Status, reply.Reason, v)
	if err != nil {
		logger.Warn("invalid reply", zap.Error(err))
		return nil, err
	}
	if err := c.checkResponse(req, resp); err != nil {
		logger.Warn("reply rejected", zap.Error(err), zap.String("reply_uuid", resp.UUID()))
		return nil, err
	}
	logger.Debug("reply validated", zap.Bool("success", resp.IsSuccess()))
	return resp, nil
}

func (c *Client) insertCredentials(req *message.Request) error {
	req.UpdateDataAt("Username", payload.String(c.username))
	req.UpdateDataAt("Password", payload.String(c.password))
	sig, err := c.sign(req)
	if err != nil {
		return err
	}
	req.SetSignature(sig)
	return nil
}

func (c *Client) checkResponse(req *message.Request, resp *message.Response) error {
	if resp.UUID() != req.UUID() {
		return fault.New(fault.KindData, UUIDMismatch)
	}
	if !c.Verify(resp) {
		return fault.New(fault.KindSignature, SignatureError)
	}
	return nil
}

func (c *Client) sign(m interface {
	Method() string
	UUID() string
	Data() payload.Value
}) (string, error) {
	data := m.Data()
	if data.IsNull() {
		data = payload.Map(nil)
	}
	sig, err := c.signer.Sign(m.Method(), m.UUID(), data)
	if err != nil {
		return "", fault.Wrap(fault.KindConfiguration, err)
	}
	return sig, nil
}

// Verify reports whether m carries a valid counterparty signature.
func (c *Client) Verify(m Signed) bool {
	return c.verifier.Verify(m.Method(), m.UUID(), m.Data(), m.Signature())
}

// VerifyNotification returns a signature fault unless n carries a valid
// counterparty signature.
func (c *Client) VerifyNotification(n *message.NotificationRequest) error {
	if !c.Verify(n) {
		return fault.New(fault.KindSignature, SignatureError)
	}
	return nil
}

// NotificationResponse builds the signed acknowledgment of req.
func (c *Client) NotificationResponse(req *message.NotificationRequest, success bool) (*message.NotificationResponse, error) {
	resp := message.NewNotificationResponse(req, success)
	sig, err := c.sign(resp)
	if err != nil {
		return nil, err
	}
	resp.SetSignature(sig)
	return resp, nil
}
