package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderbookv1 "github.com/kahshiuhtang/Sticker-Market/internal/domain/orderbook/v1"
)

// Test helper to capture what happens in runOrderProcessor
type orderProcessorTestHelper struct {
	messages []kafka.Message
	requests []orderbookv1.OrderRequest
	errors   []error
	mu       sync.Mutex
}

func (h *orderProcessorTestHelper) addMessage(msg kafka.Message, request orderbookv1.OrderRequest, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msg)
	h.requests = append(h.requests, request)
	h.errors = append(h.errors, err)
}

func (h *orderProcessorTestHelper) getCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

func TestEngine_RunOrderProcessor_Basic(t *testing.T) {
	testCases := []struct {
		name             string
		setupMocks       func(*testFixture, *orderProcessorTestHelper, context.CancelFunc)
		expectedMessages int
		expectedOffset   int64
		expectedTrades   int64
		waitTime         time.Duration
	}{
		{
			name: "process single resting order",
			setupMocks: func(f *testFixture, helper *orderProcessorTestHelper, cancel context.CancelFunc) {
				f.mockSnapshotStore.EXPECT().
					LoadStore(gomock.Any()).
					Return(nil, nil).
					Times(1)

				f.mockOrderReader.EXPECT().
					SetOffset(int64(-1)).
					Return(nil).
					Times(1)

				msg := kafka.Message{Offset: 1}
				request := createTestOrderRequest(orderbookv1.RequestTypePlace, "ask1", "sticker-1", "user1", orderbookv1.SideAsk, 50, 1)

				f.mockOrderReader.EXPECT().
					ReadMessage(gomock.Any()).
					DoAndReturn(func(ctx context.Context) (kafka.Message, orderbookv1.OrderRequest, error) {
						helper.addMessage(msg, request, nil)
						return msg, request, nil
					}).
					Times(1)

				f.mockOrderReader.EXPECT().
					CommitMessages(gomock.Any(), msg).
					Return(nil).
					Times(1)

				// Second call will be cancelled
				f.mockOrderReader.EXPECT().
					ReadMessage(gomock.Any()).
					DoAndReturn(func(ctx context.Context) (kafka.Message, orderbookv1.OrderRequest, error) {
						<-ctx.Done()
						return kafka.Message{}, orderbookv1.OrderRequest{}, ctx.Err()
					}).
					Times(1)

				f.mockOrderReader.EXPECT().
					Close().
					Times(1)

				go func() {
					time.Sleep(50 * time.Millisecond)
					cancel()
				}()
			},
			expectedMessages: 1,
			expectedOffset:   1,
			expectedTrades:   0,
			waitTime:         200 * time.Millisecond,
		},
		{
			name: "process crossing orders into a trade",
			setupMocks: func(f *testFixture, helper *orderProcessorTestHelper, cancel context.CancelFunc) {
				f.mockSnapshotStore.EXPECT().
					LoadStore(gomock.Any()).
					Return(nil, nil).
					Times(1)

				f.mockOrderReader.EXPECT().
					SetOffset(int64(-1)).
					Return(nil).
					Times(1)

				msg1 := kafka.Message{Offset: 1}
				request1 := createTestOrderRequest(orderbookv1.RequestTypePlace, "ask1", "sticker-1", "seller", orderbookv1.SideAsk, 50, 1)

				msg2 := kafka.Message{Offset: 2}
				request2 := createTestOrderRequest(orderbookv1.RequestTypePlace, "bid1", "sticker-1", "buyer", orderbookv1.SideBid, 60, 2)

				callCount := 0
				f.mockOrderReader.EXPECT().
					ReadMessage(gomock.Any()).
					DoAndReturn(func(ctx context.Context) (kafka.Message, orderbookv1.OrderRequest, error) {
						callCount++
						if callCount == 1 {
							helper.addMessage(msg1, request1, nil)
							return msg1, request1, nil
						} else if callCount == 2 {
							helper.addMessage(msg2, request2, nil)
							return msg2, request2, nil
						}
						<-ctx.Done()
						return kafka.Message{}, orderbookv1.OrderRequest{}, ctx.Err()
					}).
					Times(3)

				f.mockOrderReader.EXPECT().
					CommitMessages(gomock.Any(), msg1).
					Return(nil).
					Times(1)

				f.mockOrderReader.EXPECT().
					CommitMessages(gomock.Any(), msg2).
					Return(nil).
					Times(1)

				f.mockTradePublisher.EXPECT().
					PublishTradeEvent(gomock.Any(), gomock.Any()).
					Return(nil).
					Times(1)

				f.mockOrderReader.EXPECT().
					Close().
					Times(1)

				go func() {
					time.Sleep(100 * time.Millisecond)
					cancel()
				}()
			},
			expectedMessages: 2,
			expectedOffset:   2,
			expectedTrades:   1,
			waitTime:         250 * time.Millisecond,
		},
		{
			name: "handle read error with backoff",
			setupMocks: func(f *testFixture, helper *orderProcessorTestHelper, cancel context.CancelFunc) {
				f.mockSnapshotStore.EXPECT().
					LoadStore(gomock.Any()).
					Return(nil, nil).
					Times(1)

				f.mockOrderReader.EXPECT().
					SetOffset(int64(-1)).
					Return(nil).
					Times(1)

				callCount := 0
				f.mockOrderReader.EXPECT().
					ReadMessage(gomock.Any()).
					DoAndReturn(func(ctx context.Context) (kafka.Message, orderbookv1.OrderRequest, error) {
						callCount++
						if callCount == 1 {
							helper.addMessage(kafka.Message{}, orderbookv1.OrderRequest{}, errors.New("kafka error"))
							return kafka.Message{}, orderbookv1.OrderRequest{}, errors.New("kafka error")
						}
						<-ctx.Done()
						return kafka.Message{}, orderbookv1.OrderRequest{}, ctx.Err()
					}).
					Times(2)

				f.mockOrderReader.EXPECT().
					Close().
					Times(1)

				go func() {
					time.Sleep(150 * time.Millisecond) // Allow time for backoff
					cancel()
				}()
			},
			expectedMessages: 1,
			expectedOffset:   -1, // No successful processing
			expectedTrades:   0,
			waitTime:         250 * time.Millisecond,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fixture := setupTestFixture(t)
			defer fixture.teardown()
			helper := &orderProcessorTestHelper{}
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			tc.setupMocks(fixture, helper, cancel)

			engine := createTestEngine(fixture)

			err := engine.Start(ctx)
			require.NoError(t, err)

			// Wait for processing
			time.Sleep(tc.waitTime)

			stopCtx, stopCancel := context.WithTimeout(context.Background(), 1*time.Second)
			defer stopCancel()

			err = engine.Stop(stopCtx)
			assert.NoError(t, err)

			assert.Equal(t, tc.expectedMessages, helper.getCount())
			assert.Equal(t, tc.expectedOffset, engine.GetOrderOffset())
			assert.Equal(t, tc.expectedTrades, engine.GetTotalTrades())
		})
	}
}

func TestEngine_RunOrderProcessor_ErrorHandling(t *testing.T) {
	testCases := []struct {
		name       string
		setupMocks func(*testFixture, context.CancelFunc)
	}{
		{
			name: "commit error should not stop processing",
			setupMocks: func(f *testFixture, cancel context.CancelFunc) {
				f.mockSnapshotStore.EXPECT().
					LoadStore(gomock.Any()).
					Return(nil, nil).
					Times(1)

				f.mockOrderReader.EXPECT().
					SetOffset(int64(-1)).
					Return(nil).
					Times(1)

				msg := kafka.Message{Offset: 1}
				request := createTestOrderRequest(orderbookv1.RequestTypePlace, "ask1", "sticker-1", "user1", orderbookv1.SideAsk, 50, 1)

				f.mockOrderReader.EXPECT().
					ReadMessage(gomock.Any()).
					Return(msg, request, nil).
					Times(1)

				// Commit fails
				f.mockOrderReader.EXPECT().
					CommitMessages(gomock.Any(), msg).
					Return(errors.New("commit failed")).
					Times(1)

				// Should continue reading
				f.mockOrderReader.EXPECT().
					ReadMessage(gomock.Any()).
					DoAndReturn(func(ctx context.Context) (kafka.Message, orderbookv1.OrderRequest, error) {
						<-ctx.Done()
						return kafka.Message{}, orderbookv1.OrderRequest{}, ctx.Err()
					}).
					Times(1)

				f.mockOrderReader.EXPECT().
					Close().
					Times(1)

				go func() {
					time.Sleep(50 * time.Millisecond)
					cancel()
				}()
			},
		},
		{
			name: "processing error should not stop engine",
			setupMocks: func(f *testFixture, cancel context.CancelFunc) {
				f.mockSnapshotStore.EXPECT().
					LoadStore(gomock.Any()).
					Return(nil, nil).
					Times(1)

				f.mockOrderReader.EXPECT().
					SetOffset(int64(-1)).
					Return(nil).
					Times(1)

				// Invalid order (negative price)
				msg := kafka.Message{Offset: 1}
				request := createTestOrderRequest(orderbookv1.RequestTypePlace, "bad1", "sticker-1", "user1", orderbookv1.SideBid, -1, 1)

				f.mockOrderReader.EXPECT().
					ReadMessage(gomock.Any()).
					Return(msg, request, nil).
					Times(1)

				f.mockOrderReader.EXPECT().
					CommitMessages(gomock.Any(), msg).
					Return(nil).
					Times(1)

				f.mockOrderReader.EXPECT().
					ReadMessage(gomock.Any()).
					DoAndReturn(func(ctx context.Context) (kafka.Message, orderbookv1.OrderRequest, error) {
						<-ctx.Done()
						return kafka.Message{}, orderbookv1.OrderRequest{}, ctx.Err()
					}).
					Times(1)

				f.mockOrderReader.EXPECT().
					Close().
					Times(1)

				go func() {
					time.Sleep(50 * time.Millisecond)
					cancel()
				}()
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fixture := setupTestFixture(t)
			defer fixture.teardown()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			tc.setupMocks(fixture, cancel)

			engine := createTestEngine(fixture)

			err := engine.Start(ctx)
			require.NoError(t, err)

			time.Sleep(100 * time.Millisecond)

			stopCtx, stopCancel := context.WithTimeout(context.Background(), 1*time.Second)
			defer stopCancel()

			err = engine.Stop(stopCtx)
			assert.NoError(t, err)
		})
	}
}

// Integration test with a realistic message flow
func TestEngine_RunOrderProcessor_Integration(t *testing.T) {
	fixture := setupTestFixture(t)
	defer fixture.teardown()

	fixture.mockSnapshotStore.EXPECT().
		LoadStore(gomock.Any()).
		Return(nil, nil).
		Times(1)

	fixture.mockOrderReader.EXPECT().
		SetOffset(int64(-1)).
		Return(nil).
		Times(1)

	messages := []struct {
		msg     kafka.Message
		request orderbookv1.OrderRequest
	}{
		{
			msg:     kafka.Message{Offset: 1},
			request: createTestOrderRequest(orderbookv1.RequestTypePlace, "ask1", "sticker-1", "seller1", orderbookv1.SideAsk, 50, 1),
		},
		{
			msg:     kafka.Message{Offset: 2},
			request: createTestOrderRequest(orderbookv1.RequestTypePlace, "bid1", "sticker-1", "buyer1", orderbookv1.SideBid, 45, 2),
		},
		{
			msg:     kafka.Message{Offset: 3},
			request: createTestOrderRequest(orderbookv1.RequestTypePlace, "bid2", "sticker-1", "buyer2", orderbookv1.SideBid, 55, 3),
		},
	}

	messageIndex := 0
	fixture.mockOrderReader.EXPECT().
		ReadMessage(gomock.Any()).
		DoAndReturn(func(ctx context.Context) (kafka.Message, orderbookv1.OrderRequest, error) {
			if messageIndex < len(messages) {
				msg := messages[messageIndex]
				messageIndex++
				return msg.msg, msg.request, nil
			}
			// Block until cancelled after all messages
			<-ctx.Done()
			return kafka.Message{}, orderbookv1.OrderRequest{}, ctx.Err()
		}).
		Times(len(messages) + 1)

	for _, msg := range messages {
		fixture.mockOrderReader.EXPECT().
			CommitMessages(gomock.Any(), msg.msg).
			Return(nil).
			Times(1)
	}

	// bid2 crosses ask1
	fixture.mockTradePublisher.EXPECT().
		PublishTradeEvent(gomock.Any(), gomock.Any()).
		Return(nil).
		Times(1)

	fixture.mockOrderReader.EXPECT().
		Close().
		Times(1)

	engine := createTestEngine(fixture)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := engine.Start(ctx)
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer stopCancel()

	err = engine.Stop(stopCtx)
	assert.NoError(t, err)

	assert.Equal(t, int64(3), engine.GetOrderOffset())
	assert.Equal(t, int64(1), engine.GetTotalTrades())

	// bid1 at 45 is the only resting order left
	summary, ok := fixture.registry.Peek("sticker-1", orderbookv1.SideBid)
	require.True(t, ok)
	assert.Equal(t, "bid1", summary.OrderID)
	_, ok = fixture.registry.Peek("sticker-1", orderbookv1.SideAsk)
	assert.False(t, ok)
}
