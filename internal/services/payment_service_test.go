package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"pos-service/internal/domain"
	"pos-service/internal/infra"
	"pos-service/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestPaymentService_Checkout(t *testing.T) {
	server := domain.Actor{ID: "s-1", Role: domain.RoleServer}

	t.Run("approved charge recorded as completed", func(t *testing.T) {
		payments := new(mocks.MockPaymentRepository)
		orders := new(mocks.MockOrderRepository)
		proc := new(mocks.MockProcessorClient)

		order := mockOrder("o-1", domain.TypeTakeout, domain.StatusReady, nil)
		orders.On("FindByID", mock.Anything, "o-1").Return(order, nil)
		payments.On("SumCompleted", mock.Anything, "o-1").Return(int64(0), nil)
		proc.On("Charge", mock.Anything, order.Total, "CREDIT_CARD").
			Return(&infra.ChargeResult{Approved: true, TransactionID: "tx-9"}, nil)
		payments.On("SaveGuarded", mock.Anything, mock.AnythingOfType("*domain.Payment"), order.Total).Return(nil)

		svc := NewPaymentService(payments, orders, proc)
		p, err := svc.Checkout(context.Background(), server, "o-1", domain.MethodCreditCard, order.Total)
		assert.NoError(t, err)
		assert.Equal(t, domain.PaymentCompleted, p.Status)
		if assert.NotNil(t, p.TransactionID) {
			assert.Equal(t, "tx-9", *p.TransactionID)
		}
		payments.AssertExpectations(t)
		proc.AssertExpectations(t)
	})

	t.Run("declined charge recorded as failed", func(t *testing.T) {
		payments := new(mocks.MockPaymentRepository)
		orders := new(mocks.MockOrderRepository)
		proc := new(mocks.MockProcessorClient)

		order := mockOrder("o-1", domain.TypeTakeout, domain.StatusReady, nil)
		orders.On("FindByID", mock.Anything, "o-1").Return(order, nil)
		payments.On("SumCompleted", mock.Anything, "o-1").Return(int64(0), nil)
		proc.On("Charge", mock.Anything, order.Total, "CREDIT_CARD").
			Return(&infra.ChargeResult{Approved: false, Reason: "insufficient funds"}, nil)
		payments.On("Save", mock.Anything, mock.AnythingOfType("*domain.Payment")).Return(nil)

		svc := NewPaymentService(payments, orders, proc)
		p, err := svc.Checkout(context.Background(), server, "o-1", domain.MethodCreditCard, order.Total)
		assert.NoError(t, err)
		assert.Equal(t, domain.PaymentFailed, p.Status)
		assert.Nil(t, p.TransactionID)
	})

	t.Run("overpayment rejected before the processor is called", func(t *testing.T) {
		payments := new(mocks.MockPaymentRepository)
		orders := new(mocks.MockOrderRepository)
		proc := new(mocks.MockProcessorClient)

		order := mockOrder("o-1", domain.TypeTakeout, domain.StatusReady, nil)
		orders.On("FindByID", mock.Anything, "o-1").Return(order, nil)
		payments.On("SumCompleted", mock.Anything, "o-1").Return(order.Total, nil)

		svc := NewPaymentService(payments, orders, proc)
		_, err := svc.Checkout(context.Background(), server, "o-1", domain.MethodCash, 100)
		var ve *domain.ValidationError
		assert.ErrorAs(t, err, &ve)
		proc.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cancelled order cannot be paid", func(t *testing.T) {
		payments := new(mocks.MockPaymentRepository)
		orders := new(mocks.MockOrderRepository)
		orders.On("FindByID", mock.Anything, "o-1").
			Return(mockOrder("o-1", domain.TypeTakeout, domain.StatusCancelled, nil), nil)

		svc := NewPaymentService(payments, orders, new(mocks.MockProcessorClient))
		_, err := svc.Checkout(context.Background(), server, "o-1", domain.MethodCash, 100)
		var ve *domain.ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("unknown method rejected", func(t *testing.T) {
		svc := NewPaymentService(new(mocks.MockPaymentRepository), new(mocks.MockOrderRepository), new(mocks.MockProcessorClient))
		_, err := svc.Checkout(context.Background(), server, "o-1", domain.PaymentMethod("BARTER"), 100)
		var ve *domain.ValidationError
		assert.ErrorAs(t, err, &ve)
	})
}

// Two checkouts race past the advisory pre-check with the same stale sum;
// the guarded insert serializes them so exactly one completed row lands.
func TestPaymentService_ConcurrentCheckouts(t *testing.T) {
	server := domain.Actor{ID: "s-1", Role: domain.RoleServer}

	payments := new(mocks.MockPaymentRepository)
	orders := new(mocks.MockOrderRepository)
	proc := new(mocks.MockProcessorClient)

	order := mockOrder("o-1", domain.TypeTakeout, domain.StatusReady, nil)
	order.Total = 1000

	orders.On("FindByID", mock.Anything, "o-1").Twice().Return(order, nil)
	payments.On("SumCompleted", mock.Anything, "o-1").Twice().Return(int64(0), nil)
	proc.On("Charge", mock.Anything, int64(600), "CASH").Twice().
		Return(&infra.ChargeResult{Approved: true, TransactionID: "tx-1"}, nil)

	// the repository guard admits the first insert and rejects the second
	payments.On("SaveGuarded", mock.Anything, mock.AnythingOfType("*domain.Payment"), int64(1000)).
		Once().Return(nil)
	payments.On("SaveGuarded", mock.Anything, mock.AnythingOfType("*domain.Payment"), int64(1000)).
		Once().Return(&domain.ValidationError{Field: "amount", Reason: "payment would exceed order total"})

	svc := NewPaymentService(payments, orders, proc)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Checkout(context.Background(), server, "o-1", domain.MethodCash, 600)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var completed, rejected int
	for err := range errs {
		if err == nil {
			completed++
		} else {
			var ve *domain.ValidationError
			assert.ErrorAs(t, err, &ve)
			rejected++
		}
	}
	assert.Equal(t, 1, completed)
	assert.Equal(t, 1, rejected)
	payments.AssertExpectations(t)
}

func TestPaymentService_Refund(t *testing.T) {
	admin := domain.Actor{ID: "a-1", Role: domain.RoleAdmin}

	completed := &domain.Payment{
		ID:      "p-1",
		OrderID: "o-1",
		Amount:  2596,
		Method:  domain.MethodCreditCard,
		Status:  domain.PaymentCompleted,
	}

	t.Run("refund is a new refunded row", func(t *testing.T) {
		payments := new(mocks.MockPaymentRepository)
		payments.On("FindByID", mock.Anything, "p-1").Return(completed, nil)
		payments.On("Save", mock.Anything, mock.AnythingOfType("*domain.Payment")).Return(nil).
			Run(func(args mock.Arguments) {
				refund := args.Get(1).(*domain.Payment)
				assert.NotEqual(t, "p-1", refund.ID)
				assert.Equal(t, domain.PaymentRefunded, refund.Status)
				assert.Equal(t, completed.Amount, refund.Amount)
			})

		svc := NewPaymentService(payments, new(mocks.MockOrderRepository), new(mocks.MockProcessorClient))
		refund, err := svc.Refund(context.Background(), admin, "p-1")
		assert.NoError(t, err)
		assert.Equal(t, domain.PaymentRefunded, refund.Status)
		payments.AssertExpectations(t)
	})

	t.Run("only completed payments are refundable", func(t *testing.T) {
		payments := new(mocks.MockPaymentRepository)
		payments.On("FindByID", mock.Anything, "p-2").
			Return(&domain.Payment{ID: "p-2", Status: domain.PaymentFailed}, nil)

		svc := NewPaymentService(payments, new(mocks.MockOrderRepository), new(mocks.MockProcessorClient))
		_, err := svc.Refund(context.Background(), admin, "p-2")
		var ve *domain.ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("servers cannot refund", func(t *testing.T) {
		svc := NewPaymentService(new(mocks.MockPaymentRepository), new(mocks.MockOrderRepository), new(mocks.MockProcessorClient))
		_, err := svc.Refund(context.Background(), domain.Actor{ID: "s-1", Role: domain.RoleServer}, "p-1")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestPaymentService_DailySummary(t *testing.T) {
	admin := domain.Actor{ID: "a-1", Role: domain.RoleAdmin}

	t.Run("rolls up revenue since midnight and counts per status", func(t *testing.T) {
		payments := new(mocks.MockPaymentRepository)
		orders := new(mocks.MockOrderRepository)

		now := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
		midnight := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
		payments.On("RevenueSince", mock.Anything, midnight).Return(int64(125000), nil)
		orders.On("CountByStatus", mock.Anything).Return(map[domain.OrderStatus]int64{
			domain.StatusPlaced:    3,
			domain.StatusPreparing: 2,
			domain.StatusCompleted: 41,
		}, nil)

		svc := NewPaymentService(payments, orders, new(mocks.MockProcessorClient))
		svc.now = func() time.Time { return now }

		report, err := svc.DailySummary(context.Background(), admin)
		assert.NoError(t, err)
		assert.Equal(t, midnight, report.Since)
		assert.Equal(t, int64(125000), report.Revenue)
		assert.Equal(t, int64(2), report.OrdersByStatus[domain.StatusPreparing])
		payments.AssertExpectations(t)
		orders.AssertExpectations(t)
	})

	t.Run("servers cannot read the summary", func(t *testing.T) {
		svc := NewPaymentService(new(mocks.MockPaymentRepository), new(mocks.MockOrderRepository), new(mocks.MockProcessorClient))
		_, err := svc.DailySummary(context.Background(), domain.Actor{ID: "s-1", Role: domain.RoleServer})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}
