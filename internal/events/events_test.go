package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafkaGo.Message
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkaGo.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisherRoutesByAggregate(t *testing.T) {
	w := &fakeWriter{}
	pub := &KafkaPublisher{writer: w, topicPrefix: "farmtomarket"}

	bookingID := uuid.New()
	evt := New(BookingTransported, AggregateBooking, bookingID, "tr-1", map[string]interface{}{"kilometers": 120.0})
	require.NoError(t, pub.Publish(context.Background(), evt))

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "farmtomarket.bookings", msg.Topic)
	assert.Equal(t, bookingID.String(), string(msg.Key))
	assert.Equal(t, BookingTransported, string(msg.Headers[0].Value))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, evt.ID, decoded.ID)
	assert.Equal(t, 120.0, decoded.Payload["kilometers"])

	require.NoError(t, pub.Close())
	assert.True(t, w.closed)
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "farmtomarket.requests", Topic("farmtomarket", AggregateRequest))
	assert.Equal(t, "products", Topic("", AggregateProduct))
}

func TestEmitterLogsFailuresAndDrains(t *testing.T) {
	logger, hook := test.NewNullLogger()
	w := &fakeWriter{err: errors.New("broker down")}
	emitter := NewEmitter(&KafkaPublisher{writer: w}, logger)

	emitter.Emit(New(ProductCreated, AggregateProduct, uuid.New(), "farmer-1", nil))
	require.NoError(t, emitter.Close())

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, ProductCreated, hook.LastEntry().Data["event_type"])
	assert.True(t, w.closed)
}

func TestEmitterDeliversEvents(t *testing.T) {
	w := &fakeWriter{}
	emitter := NewEmitter(&KafkaPublisher{writer: w, topicPrefix: "x"}, nil)

	emitter.Emit(
		New(SellerRequestCreated, AggregateRequest, uuid.New(), "farmer-1", nil),
		New(SellerRequestAccepted, AggregateRequest, uuid.New(), "seller-1", nil),
	)
	require.NoError(t, emitter.Close())
	assert.Len(t, w.messages, 2)
}

// slowFirstPublisher stalls its first publish so a racing second publish
// would overtake it.
type slowFirstPublisher struct {
	mu    sync.Mutex
	calls int
	types []string
}

func (p *slowFirstPublisher) Publish(_ context.Context, event Event) error {
	p.mu.Lock()
	p.calls++
	first := p.calls == 1
	p.mu.Unlock()

	if first {
		time.Sleep(50 * time.Millisecond)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, event.Type)
	return nil
}

func (p *slowFirstPublisher) Close() error { return nil }

func TestEmitterPreservesOrder(t *testing.T) {
	pub := &slowFirstPublisher{}
	emitter := NewEmitter(pub, nil)
	productID := uuid.New()

	emitter.Emit(New(ProductCreated, AggregateProduct, productID, "farmer-1", nil))
	emitter.Emit(New(ProductSold, AggregateProduct, productID, "seller-1", nil))
	require.NoError(t, emitter.Close())

	assert.Equal(t, []string{ProductCreated, ProductSold}, pub.types)
}

func TestEmitAfterCloseIsDropped(t *testing.T) {
	logger, hook := test.NewNullLogger()
	pub := &slowFirstPublisher{}
	emitter := NewEmitter(pub, logger)
	require.NoError(t, emitter.Close())
	require.NoError(t, emitter.Close())

	assert.NotPanics(t, func() {
		emitter.Emit(New(ProductCreated, AggregateProduct, uuid.New(), "farmer-1", nil))
	})
	assert.Empty(t, pub.types)
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestNilEmitterIsSafe(t *testing.T) {
	var e *Emitter
	assert.NotPanics(t, func() { e.Emit(Event{}) })
	assert.NoError(t, NewEmitter(nil, nil).Close())
}
