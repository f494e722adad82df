package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Subjects published by the service
const (
	SubjectUserRegistered      = "user.registered"
	SubjectVendorRegistered    = "vendor.registered"
	SubjectVendorStatusChanged = "vendor.status_changed"
)

// UserRegistered is emitted after a successful registration
type UserRegistered struct {
	UserID      string    `json:"userId"`
	UserType    string    `json:"userType"`
	ServiceType string    `json:"serviceType,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// VendorStatusChanged is emitted after an admin decision
type VendorStatusChanged struct {
	VendorID   string    `json:"vendorId"`
	UserID     string    `json:"userId"`
	Status     string    `json:"status"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher sends domain events to interested parties
type Publisher interface {
	Publish(ctx context.Context, subject string, payload interface{}) error
	Close() error
}

type conn interface {
	Publish(subj string, data []byte) error
	Drain() error
}

// NATSPublisher publishes JSON events on core NATS
type NATSPublisher struct {
	nc     conn
	prefix string
}

// NewNATSPublisher connects to url and publishes under prefix
func NewNATSPublisher(url, prefix string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("seva-kendra"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				zap.L().Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			zap.L().Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	return &NATSPublisher{nc: nc, prefix: prefix}, nil
}

// Subject returns the fully qualified subject for s
func (p *NATSPublisher) Subject(s string) string {
	if p.prefix == "" {
		return s
	}
	return p.prefix + "." + s
}

// Publish sends payload as JSON on the prefixed subject
func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", subject, err)
	}
	if err := p.nc.Publish(p.Subject(subject), data); err != nil {
		return fmt.Errorf("publish %s event: %w", subject, err)
	}
	return nil
}

// Close flushes pending messages and closes the connection
func (p *NATSPublisher) Close() error {
	return p.nc.Drain()
}

// NoopPublisher discards events when no broker is configured
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }
func (NoopPublisher) Close() error                                       { return nil }
