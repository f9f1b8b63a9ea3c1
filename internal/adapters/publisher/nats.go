package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"route-sequencing-service/internal/platform/obs"
	"route-sequencing-service/internal/ports"

	"github.com/nats-io/nats.go"
)

const DefaultSubject = "routes.sequenced"

type PublisherMetrics interface {
	PublishedInc()
	PublishErrInc()
	SetNATSConnected(connected bool)
}

// NATSPublisher emits one JSON message per sequenced route on
// <subject>.<mode>, so consumers can subscribe to <subject>.>.
type NATSPublisher struct {
	nc      *nats.Conn
	subject string
	metrics PublisherMetrics
}

func NewNATSPublisher(url, subject string, m PublisherMetrics) (*NATSPublisher, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("nats publisher: url is required")
	}

	nc, err := nats.Connect(url,
		nats.Name("route-sequencing-service"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if m != nil {
				m.SetNATSConnected(false)
			}
			log.Printf("nats disconnected err=%v", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.SetNATSConnected(true)
			}
			log.Printf("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.SetNATSConnected(false)
			}
			log.Printf("nats closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats publisher: connect %q: %w", url, err)
	}
	if m != nil {
		m.SetNATSConnected(true)
	}

	return newPublisher(nc, subject, m), nil
}

func newPublisher(nc *nats.Conn, subject string, m PublisherMetrics) *NATSPublisher {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSPublisher{nc: nc, subject: subject, metrics: m}
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
		p.nc.Close()
	}
}

func (p *NATSPublisher) PublishRoute(ctx context.Context, event ports.RouteEvent) (err error) {
	defer obs.Time(ctx, "publisher.PublishRoute")(&err)

	if event.RequestID == "" {
		event.RequestID = obs.RequestID(ctx)
	}
	if event.SequencedAt.IsZero() {
		event.SequencedAt = time.Now().UTC()
	}

	b, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("publish route: marshal: %w", err)
	}

	subject := p.subject
	if event.Mode != "" {
		subject += "." + SubjectToken(event.Mode)
	}

	err = p.nc.Publish(subject, b)
	if p.metrics != nil {
		if err != nil {
			p.metrics.PublishErrInc()
		} else {
			p.metrics.PublishedInc()
		}
	}
	if err != nil {
		return fmt.Errorf("publish route subject=%s: %w", subject, err)
	}
	return nil
}

// SubjectToken makes s safe to use as a single NATS subject token.
func SubjectToken(s string) string {
	s = strings.TrimSpace(s)
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
