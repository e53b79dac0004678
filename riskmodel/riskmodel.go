// Package riskmodel is the client for the financial-distress prediction
// service. The verdict rule, including its probability threshold, lives here
// so the orchestrator never needs to know how the model works.
package riskmodel

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/quarkbyte/finagent/dataset"
	"github.com/quarkbyte/finagent/fault"
)

// ExpectedFeatures are the model's input columns. Missing values are filled
// with zero, the same treatment the model saw in training.
var ExpectedFeatures = []string{
	"marketCap",
	"marginProfit",
	"roe",
	"roic",
	"revenuePerShare",
	"debtToEquity",
	"revenuePerShare_YoY_Growth",
	"earningsYield",
}

// Verdict labels the assessment outcome.
type Verdict = string

const (
	VerdictHighRisk      Verdict = "high_risk"
	VerdictNoExtremeRisk Verdict = "no_extreme_risk"
)

// Assessment is the verdict with its supporting probability.
type Assessment struct {
	Verdict    Verdict `json:"verdict"`
	Confidence float64 `json:"confidence"`
}

// Prediction is the raw service response: the predicted class and the
// per-class probabilities, class 0 being financial distress.
type Prediction struct {
	Class         int       `json:"class"`
	Probabilities []float64 `json:"probabilities"`
}

const (
	defaultThreshold = 0.7
	defaultTimeout   = 30 * time.Second
)

// Config carries client settings.
type Config struct {
	url        string
	threshold  float64
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures the client.
type Option func(*Config)

// WithURL sets the prediction endpoint.
func WithURL(u string) Option {
	return func(c *Config) {
		c.url = u
	}
}

// WithThreshold sets the class-0 probability above which the verdict is
// high risk.
func WithThreshold(v float64) Option {
	return func(c *Config) {
		if v > 0 {
			c.threshold = v
		}
	}
}

// WithTimeout bounds one prediction call.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the transport.
func WithHTTPClient(clt *http.Client) Option {
	return func(c *Config) {
		c.httpClient = clt
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.logger = l
	}
}

// Client calls the prediction service.
type Client struct {
	Config
}

// New returns a configured client.
func New(options ...Option) *Client {
	c := &Client{
		Config: Config{
			threshold: defaultThreshold,
			timeout:   defaultTimeout,
		},
	}
	for _, opt := range options {
		opt(&c.Config)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Predict posts one feature vector and returns the raw prediction.
func (c *Client) Predict(ctx context.Context, features map[string]float64) (*Prediction, error) {
	const op = "riskmodel.Predict"
	payload, err := json.Marshal(map[string]any{"features": features})
	if err != nil {
		return nil, fault.New(fault.Defect, op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fault.New(fault.Defect, op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fault.New(fault.ModelUnavailable, op, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fault.New(fault.ModelUnavailable, op, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fault.Errorf(fault.ModelUnavailable, op, "status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	pred := new(Prediction)
	if err := json.Unmarshal(body, pred); err != nil {
		return nil, fault.Errorf(fault.ModelUnavailable, op, "malformed prediction: %v", err)
	}
	return pred, nil
}

// Assess extracts the newest row's features from a processed dataset and
// turns the prediction into a verdict.
func (c *Client) Assess(ctx context.Context, table *dataset.Table) (*Assessment, error) {
	const op = "riskmodel.Assess"
	if table == nil || table.Len() == 0 {
		return nil, fault.Errorf(fault.Validation, op, "no processed data to assess")
	}
	row := table.RowMap(table.Len() - 1)
	features := make(map[string]float64, len(ExpectedFeatures))
	present := 0
	for _, col := range ExpectedFeatures {
		v, ok := dataset.Float(row[col])
		if ok {
			present++
		} else {
			v = 0
		}
		features[col] = v
	}
	if present == 0 {
		return nil, fault.Errorf(fault.Validation, op, "latest row carries no usable features")
	}

	pred, err := c.Predict(ctx, features)
	if err != nil {
		return nil, err
	}
	var p0 float64
	if len(pred.Probabilities) > 0 {
		p0 = pred.Probabilities[0]
	}
	c.logger.Debug("risk prediction", "class", pred.Class, "p0", p0, "threshold", c.threshold)

	verdict := VerdictNoExtremeRisk
	confidence := 1 - p0
	if pred.Class == 0 && p0 > c.threshold {
		verdict = VerdictHighRisk
		confidence = p0
	}
	return &Assessment{Verdict: verdict, Confidence: confidence}, nil
}
