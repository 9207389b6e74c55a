// Package messaging publica en NATS los eventos de ventas y movimientos ya confirmados.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Ventas-api/internal/application/ports"
)

var _ ports.EventPublisher = (*NATSPublisher)(nil)

// Sujetos relativos al prefijo configurado (NATS_SUBJECT_PREFIX).
const (
	SubjectSaleCreated      = "sales.created"
	SubjectMovementRecorded = "inventory.movement.recorded"
	SubjectStockLow         = "inventory.stock.low"
)

// publisher subconjunto de *nats.Conn usado aquí.
type publisher interface {
	Publish(subj string, data []byte) error
}

// NATSPublisher serializa cada evento en JSON y lo publica en prefix.<sujeto>.
type NATSPublisher struct {
	conn   publisher
	prefix string
	log    zerolog.Logger
}

// NewNATSPublisher construye el publicador sobre una conexión abierta.
func NewNATSPublisher(conn *nats.Conn, prefix string, log zerolog.Logger) *NATSPublisher {
	return newPublisher(conn, prefix, log)
}

func newPublisher(conn publisher, prefix string, log zerolog.Logger) *NATSPublisher {
	return &NATSPublisher{conn: conn, prefix: prefix, log: log}
}

func (p *NATSPublisher) PublishSaleCreated(ctx context.Context, ev ports.SaleCreatedEvent) error {
	return p.publish(ctx, SubjectSaleCreated, ev)
}

func (p *NATSPublisher) PublishMovementRecorded(ctx context.Context, ev ports.MovementRecordedEvent) error {
	return p.publish(ctx, SubjectMovementRecorded, ev)
}

func (p *NATSPublisher) PublishLowStock(ctx context.Context, ev ports.LowStockEvent) error {
	return p.publish(ctx, SubjectStockLow, ev)
}

// Subject sujeto completo para un evento.
func (p *NATSPublisher) Subject(name string) string {
	if p.prefix == "" {
		return name
	}
	return p.prefix + "." + name
}

func (p *NATSPublisher) publish(ctx context.Context, name string, ev any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	subject := p.Subject(name)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	p.log.Debug().Str("subject", subject).Int("bytes", len(data)).Msg("evento publicado")
	return nil
}

// Connect abre la conexión a NATS con reconexión automática.
func Connect(url, name string, log zerolog.Logger) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("nats desconectado")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("nats reconectado")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return conn, nil
}
