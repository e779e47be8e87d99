// Package domain contains persistence models for the tenant directory.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// SubscriptionTier represents the plan a tenant is on.
type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "free"
	TierStarter SubscriptionTier = "starter"
	TierGrowth  SubscriptionTier = "growth"
	TierPro     SubscriptionTier = "pro"
)

// AccountStatus represents lifecycle states for a linked account.
type AccountStatus string

const (
	AccountStatusConnected    AccountStatus = "connected"
	AccountStatusPending      AccountStatus = "pending"
	AccountStatusDisconnected AccountStatus = "disconnected"
)

// ProviderBilling is the provider type report generation targets.
const ProviderBilling = "billing"

// Tenant represents a customer organization.
type Tenant struct {
	ID               snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name             string            `gorm:"type:text;not null" json:"name"`
	Slug             string            `gorm:"type:text;not null;uniqueIndex:ux_tenants_slug" json:"slug"`
	SubscriptionTier SubscriptionTier  `gorm:"type:text;not null;column:subscription_tier" json:"subscription_tier"`
	Metadata         datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`
	CreatedAt        time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Tenant) TableName() string { return "tenants" }

// LinkedAccount is a tenant's connection to an external billing provider.
type LinkedAccount struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	TenantID    snowflake.ID      `gorm:"not null;index" json:"tenant_id"`
	Provider    string            `gorm:"type:text;not null" json:"provider"`
	Status      AccountStatus     `gorm:"type:text;not null" json:"status"`
	AccessToken string            `gorm:"type:text;not null;column:access_token" json:"-"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (LinkedAccount) TableName() string { return "linked_accounts" }

// TenantWithAccounts pairs a tenant with its report-eligible accounts.
type TenantWithAccounts struct {
	Tenant   Tenant
	Accounts []LinkedAccount
}
