package delivery_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/myvfriend/internal/app/delivery"
	"github.com/PabloGalante/myvfriend/internal/domain"
)

// scriptedSender returns the scripted errors in order, then nil.
type scriptedSender struct {
	mu       sync.Mutex
	script   []error
	attempts int
}

func (s *scriptedSender) Send(_ context.Context, _ domain.Destination, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if len(s.script) == 0 {
		return nil
	}
	err := s.script[0]
	s.script = s.script[1:]
	return err
}

type pauseRecorder struct {
	pauses []time.Duration
}

func (p *pauseRecorder) sleep(_ context.Context, d time.Duration) error {
	p.pauses = append(p.pauses, d)
	return nil
}

var errTransient = errors.New("connection reset")

func TestDeliverSucceedsFirstTry(t *testing.T) {
	sender := &scriptedSender{}
	pauses := &pauseRecorder{}
	d := delivery.NewDeliverer(sender, delivery.WithSleep(pauses.sleep))

	ok := d.Deliver(context.Background(), domain.OneShot("tok"), "hi")

	assert.True(t, ok)
	assert.Equal(t, 1, sender.attempts)
	assert.Empty(t, pauses.pauses)
}

func TestDeliverRetriesThenSucceeds(t *testing.T) {
	sender := &scriptedSender{script: []error{errTransient, errTransient}}
	pauses := &pauseRecorder{}
	d := delivery.NewDeliverer(sender, delivery.WithSleep(pauses.sleep))

	ok := d.Deliver(context.Background(), domain.Durable("U1"), "hi")

	assert.True(t, ok)
	assert.Equal(t, 3, sender.attempts)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, pauses.pauses)
}

func TestDeliverExhaustsAttempts(t *testing.T) {
	sender := &scriptedSender{script: []error{errTransient, errTransient, errTransient, errTransient}}
	pauses := &pauseRecorder{}
	d := delivery.NewDeliverer(sender, delivery.WithSleep(pauses.sleep))

	ok := d.Deliver(context.Background(), domain.OneShot("tok"), "hi")

	assert.False(t, ok)
	assert.Equal(t, 3, sender.attempts)
	assert.Len(t, pauses.pauses, 2, "no pause after the last attempt")
}

func TestDeliverStopsOnUnauthorized(t *testing.T) {
	unauthorized := fmt.Errorf("line push: status 401: %w", domain.ErrDeliveryUnauthorized)
	sender := &scriptedSender{script: []error{unauthorized}}
	pauses := &pauseRecorder{}
	d := delivery.NewDeliverer(sender, delivery.WithSleep(pauses.sleep))

	ok := d.Deliver(context.Background(), domain.Durable("U1"), "hi")

	assert.False(t, ok)
	assert.Equal(t, 1, sender.attempts)
	assert.Empty(t, pauses.pauses)
}

func TestDeliverStopsOnRejected(t *testing.T) {
	rejected := fmt.Errorf("line status 400: Invalid reply token: %w", domain.ErrDeliveryRejected)
	sender := &scriptedSender{script: []error{rejected}}
	pauses := &pauseRecorder{}
	d := delivery.NewDeliverer(sender, delivery.WithSleep(pauses.sleep))

	ok := d.Deliver(context.Background(), domain.OneShot("expired"), "hi")

	assert.False(t, ok)
	assert.Equal(t, 1, sender.attempts)
	assert.Empty(t, pauses.pauses)
}

func TestDeliverStopsWhenContextCancelledDuringPause(t *testing.T) {
	sender := &scriptedSender{script: []error{errTransient, errTransient}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := delivery.NewDeliverer(sender, delivery.WithPolicy(3, 50*time.Millisecond))

	ok := d.Deliver(ctx, domain.OneShot("tok"), "hi")

	assert.False(t, ok)
	assert.Equal(t, 1, sender.attempts)
}

func TestDeliverRealPause(t *testing.T) {
	sender := &scriptedSender{script: []error{errTransient}}
	d := delivery.NewDeliverer(sender, delivery.WithPolicy(2, 10*time.Millisecond))

	start := time.Now()
	ok := d.Deliver(context.Background(), domain.OneShot("tok"), "hi")

	require.True(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}
