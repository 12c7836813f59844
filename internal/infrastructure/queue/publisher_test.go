package queue

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/pscafe-console/internal/domain/entity"
)

// silentBroker accepts connections and never answers the AMQP handshake.
func silentBroker(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var mu sync.Mutex
	var held []net.Conn
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range held {
			_ = c.Close()
		}
	})

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			held = append(held, conn)
			mu.Unlock()
		}
	}()
	return ln.Addr().String()
}

func TestPublishGivesUpOnSilentBroker(t *testing.T) {
	p := NewPublisher("amqp://guest:guest@"+silentBroker(t)+"/", "sales", nil)
	p.dialTimeout = 200 * time.Millisecond

	start := time.Now()
	err := p.PublishSaleConfirmed(context.Background(), entity.SaleConfirmedEvent{OrderNumber: "ORD-000001"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestPublishHonoursContextDeadline(t *testing.T) {
	p := NewPublisher("amqp://guest:guest@"+silentBroker(t)+"/", "sales", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := p.PublishSaleConfirmed(ctx, entity.SaleConfirmedEvent{OrderNumber: "ORD-000002"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), defaultDialTimeout)
}

func TestNoopPublisher(t *testing.T) {
	assert.NoError(t, NoopPublisher{}.PublishSaleConfirmed(context.Background(), entity.SaleConfirmedEvent{}))
}
