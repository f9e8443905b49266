package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"arrival-benchmark/internal/benchmark"
	"arrival-benchmark/internal/flight"
)

const flushTimeout = 10 * time.Second

type NATSPublisher struct {
	nc      *nats.Conn
	publish func(subject string, data []byte) error
	prefix  string
	runID   string
	log     *zap.Logger
	metrics PublisherMetrics
}

type PublisherMetrics interface {
	NATSPublishedInc()
	NATSPublishErrInc()
	PublishObserve(d time.Duration)
	NATSSetConnected(connected bool)
}

var _ benchmark.Sink = (*NATSPublisher)(nil)

func NewNATSPublisher(url, subjectPrefix, runID string, log *zap.Logger, m PublisherMetrics) (*NATSPublisher, error) {
	log = log.Named("nats")
	nc, err := nats.Connect(url,
		nats.Name("arrival-benchmark"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(true)
			}
			log.Info("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Info("nats closed")
		}),
	)
	if err != nil {
		return nil, err
	}
	if m != nil {
		m.NATSSetConnected(true)
	}
	p := newPublisher(nc.Publish, subjectPrefix, runID, log, m)
	p.nc = nc
	return p, nil
}

func newPublisher(publish func(string, []byte) error, subjectPrefix, runID string, log *zap.Logger, m PublisherMetrics) *NATSPublisher {
	return &NATSPublisher{
		publish: publish,
		prefix:  subjectPrefix,
		runID:   runID,
		log:     log,
		metrics: m,
	}
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		p.nc.Close()
	}
}

type PredictionMessage struct {
	RunID               string  `json:"runId"`
	FlightHistoryID     int64   `json:"flightHistoryId"`
	ActualRunwayArrival float64 `json:"actualRunwayArrival"`
	ActualGateArrival   float64 `json:"actualGateArrival"`
}

func (p *NATSPublisher) Name() string { return "nats" }

// Write publishes one message per prediction and flushes the connection.
func (p *NATSPublisher) Write(ctx context.Context, preds []flight.DayPrediction) error {
	for _, pr := range preds {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.PublishPrediction(pr); err != nil {
			return fmt.Errorf("publish flight %d: %w", pr.FlightHistoryID, err)
		}
	}
	if p.nc == nil {
		return nil
	}
	// FlushWithContext requires a deadline.
	ctx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()
	return p.nc.FlushWithContext(ctx)
}

func (p *NATSPublisher) PublishPrediction(pr flight.DayPrediction) error {
	subject := Subject(p.prefix, pr.FlightHistoryID)
	b, err := json.Marshal(PredictionMessage{
		RunID:               p.runID,
		FlightHistoryID:     pr.FlightHistoryID,
		ActualRunwayArrival: pr.ActualRunwayArrival,
		ActualGateArrival:   pr.ActualGateArrival,
	})
	if err != nil {
		return err
	}
	p.log.Debug("nats publish", zap.String("subject", subject))
	start := time.Now()
	err = p.publish(subject, b)
	if p.metrics != nil {
		p.metrics.PublishObserve(time.Since(start))
		if err != nil {
			p.metrics.NATSPublishErrInc()
		} else {
			p.metrics.NATSPublishedInc()
		}
	}
	return err
}

// Subject returns <prefix>.<flight_history_id> with every prefix token made
// safe for NATS.
func Subject(prefix string, flightHistoryID int64) string {
	var tokens []string
	for _, t := range strings.Split(prefix, ".") {
		if strings.TrimSpace(t) == "" {
			continue
		}
		tokens = append(tokens, subjectToken(t))
	}
	tokens = append(tokens, strconv.FormatInt(flightHistoryID, 10))
	return strings.Join(tokens, ".")
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS token cannot contain spaces, '>', '*', or trailing '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
