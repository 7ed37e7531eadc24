package domain

import (
	"context"
	"time"
)

type AccountType string

const (
	AccountTypeBank       AccountType = "bank"
	AccountTypeCash       AccountType = "cash"
	AccountTypeEwallet    AccountType = "ewallet"
	AccountTypeCreditCard AccountType = "credit_card"
	AccountTypeOther      AccountType = "other"
)

// AccountTypes lists the accepted account types in display order
var AccountTypes = []AccountType{
	AccountTypeBank,
	AccountTypeCash,
	AccountTypeEwallet,
	AccountTypeCreditCard,
	AccountTypeOther,
}

// Valid reports whether t is a known account type
func (t AccountType) Valid() bool {
	for _, known := range AccountTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Account is a place money lives. A nil OwnerID marks a shared household account.
type Account struct {
	ID          string      `json:"id"`
	DisplayName string      `json:"displayName"`
	Type        AccountType `json:"type"`
	Currency    string      `json:"currency"`
	OwnerID     *string     `json:"ownerId,omitempty"`
	IsActive    bool        `json:"isActive"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// AccountBalance is the derived balance of one account
type AccountBalance struct {
	AccountID   string  `json:"accountId"`
	DisplayName string  `json:"displayName"`
	OwnerID     *string `json:"ownerId,omitempty"`
	Currency    string  `json:"currency"`
	Balance     int64   `json:"balance"`
}

// AccountFilter narrows account listings. Results are ordered by owner
// (shared accounts first) and then by display name.
type AccountFilter struct {
	OwnerID    *string
	IDs        []string
	ActiveOnly bool
}

type AccountRepository interface {
	Create(ctx context.Context, account *Account) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	List(ctx context.Context, filter AccountFilter) ([]*Account, error)
}
