package events

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/BinLe1988/youcreator.ai-sub001/internal/domain"
	"github.com/BinLe1988/youcreator.ai-sub001/internal/ports"
)

// NATSPublisher emits workflow lifecycle events on WORKFLOW.Events.<type>
// subjects for downstream consumers.
type NATSPublisher struct {
	conn *nats.Conn
}

var _ ports.EventPublisher = (*NATSPublisher)(nil)

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

func (p *NATSPublisher) Publish(event domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	subject := "WORKFLOW.Events." + string(event.Type)
	return p.conn.Publish(subject, payload)
}

func (p *NATSPublisher) Close() {
	p.conn.Close()
}
