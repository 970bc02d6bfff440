package domain

import "time"

type PaymentMethod string

const (
	MethodCash          PaymentMethod = "CASH"
	MethodCreditCard    PaymentMethod = "CREDIT_CARD"
	MethodDebitCard     PaymentMethod = "DEBIT_CARD"
	MethodMobilePayment PaymentMethod = "MOBILE_PAYMENT"
	MethodGiftCard      PaymentMethod = "GIFT_CARD"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodCash, MethodCreditCard, MethodDebitCard, MethodMobilePayment, MethodGiftCard:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

// Payment records the outcome of a checkout attempt. Rows are immutable once
// the status is COMPLETED, FAILED or REFUNDED; a refund is a separate
// REFUNDED row, never an amount mutation.
type Payment struct {
	ID            string        `json:"id" gorm:"primaryKey;type:char(36)"`
	OrderID       string        `json:"orderId" gorm:"type:char(36);not null;index"`
	Amount        int64         `json:"amount" gorm:"not null"`
	Method        PaymentMethod `json:"method" gorm:"size:16;not null"`
	Status        PaymentStatus `json:"status" gorm:"size:16;not null"`
	TransactionID *string       `json:"transactionId,omitempty" gorm:"size:64"`
	ProcessedBy   string        `json:"processedBy" gorm:"type:char(36);not null"`
	CreatedAt     time.Time     `json:"createdAt" gorm:"autoCreateTime"`
}
