package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/alfredjeanlab/widgetfactory/internal/idgen"
)

// MsgIDHeader carries a per-event ID so consumers (and JetStream dedupe)
// can tell redeliveries apart.
const MsgIDHeader = "Nats-Msg-Id"

const (
	closeFlushTimeout = 2 * time.Second
	subscribeBuffer   = 64
)

// NATSPublisher sends each event as a JSON message on its topic subject.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to the server at url.
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("wf"))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	return &NATSPublisher{conn: nc}, nil
}

func (p *NATSPublisher) Publish(_ context.Context, topic string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", topic, err)
	}
	id, err := idgen.EventID()
	if err != nil {
		return err
	}
	msg := &nats.Msg{
		Subject: topic,
		Data:    data,
		Header:  nats.Header{MsgIDHeader: []string{id}},
	}
	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Flush waits until the server has processed everything published so far.
func (p *NATSPublisher) Flush() error {
	return p.conn.Flush()
}

// Close flushes pending events, waiting at most closeFlushTimeout, and
// disconnects.
func (p *NATSPublisher) Close() error {
	_ = p.conn.FlushTimeout(closeFlushTimeout)
	p.conn.Close()
	return nil
}

// NATSSubscriber receives events from NATS subjects. The connection retries
// forever after a disconnect; pass nats options to observe that.
type NATSSubscriber struct {
	conn *nats.Conn
}

// NewNATSSubscriber connects to url. opts are applied after the defaults.
func NewNATSSubscriber(url string, opts ...nats.Option) (*NATSSubscriber, error) {
	all := append([]nats.Option{
		nats.Name("wf-watch"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	}, opts...)
	nc, err := nats.Connect(url, all...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	return &NATSSubscriber{conn: nc}, nil
}

// subscription feeds one NATS subscription into a buffered channel. Messages
// arriving while the channel is full are dropped so the NATS client never
// blocks.
type subscription struct {
	ch chan Message

	mu     sync.Mutex
	closed bool
	sub    *nats.Subscription
	once   sync.Once
}

func (s *subscription) deliver(msg *nats.Msg) {
	m := Message{Topic: msg.Subject, Data: msg.Data}
	if msg.Header != nil {
		m.ID = msg.Header.Get(MsgIDHeader)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- m:
	default:
	}
}

func (s *subscription) cancel() {
	s.once.Do(func() {
		if s.sub != nil {
			_ = s.sub.Unsubscribe()
		}
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
	})
}

// Subscribe delivers events matching topic, which may use NATS wildcards
// such as "widgets.>". The returned func unsubscribes and closes the channel.
func (s *NATSSubscriber) Subscribe(topic string) (<-chan Message, func(), error) {
	sub := &subscription{ch: make(chan Message, subscribeBuffer)}

	ns, err := s.conn.Subscribe(topic, sub.deliver)
	if err != nil {
		sub.cancel()
		return nil, nil, fmt.Errorf("subscribe to %s: %w", topic, err)
	}
	sub.sub = ns

	// The interest must reach the server before we return, or events
	// published right after Subscribe on another connection are missed.
	if err := s.conn.Flush(); err != nil {
		sub.cancel()
		return nil, nil, fmt.Errorf("flush subscription to %s: %w", topic, err)
	}
	return sub.ch, sub.cancel, nil
}

func (s *NATSSubscriber) Close() error {
	s.conn.Close()
	return nil
}
