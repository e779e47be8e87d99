package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/finvue/finvue/internal/tenant/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.Exec(`
		CREATE TABLE tenants (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL,
			subscription_tier TEXT NOT NULL,
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME,
			updated_at DATETIME
		)
	`).Error; err != nil {
		t.Fatalf("create tenants table: %v", err)
	}
	if err := db.Exec(`
		CREATE TABLE linked_accounts (
			id INTEGER PRIMARY KEY,
			tenant_id INTEGER NOT NULL,
			provider TEXT NOT NULL,
			status TEXT NOT NULL,
			access_token TEXT NOT NULL DEFAULT '',
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME,
			updated_at DATETIME
		)
	`).Error; err != nil {
		t.Fatalf("create linked_accounts table: %v", err)
	}
	return db
}

func seedTenant(t *testing.T, db *gorm.DB, id int64, slug string, tier domain.SubscriptionTier, createdAt time.Time) {
	t.Helper()
	err := db.Exec(
		`INSERT INTO tenants (id, name, slug, subscription_tier, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, '{}', ?, ?)`,
		id, slug, slug, tier, createdAt, createdAt,
	).Error
	if err != nil {
		t.Fatalf("seed tenant %s: %v", slug, err)
	}
}

func seedAccount(t *testing.T, db *gorm.DB, id, tenantID int64, provider string, status domain.AccountStatus) {
	t.Helper()
	now := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	err := db.Exec(
		`INSERT INTO linked_accounts (id, tenant_id, provider, status, access_token, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, '{}', ?, ?)`,
		id, tenantID, provider, status, "tok", now, now,
	).Error
	if err != nil {
		t.Fatalf("seed account %d: %v", id, err)
	}
}

func TestListTenantsWithAccounts(t *testing.T) {
	db := openTestDB(t)
	repo := Provide()
	base := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	seedTenant(t, db, 100, "acme", domain.TierGrowth, base)
	seedTenant(t, db, 200, "globex", domain.TierStarter, base.Add(time.Hour))
	seedTenant(t, db, 300, "initech", domain.TierFree, base.Add(2*time.Hour))
	seedTenant(t, db, 400, "hooli", domain.TierPro, base.Add(3*time.Hour))

	seedAccount(t, db, 1001, 100, domain.ProviderBilling, domain.AccountStatusConnected)
	seedAccount(t, db, 1002, 100, domain.ProviderBilling, domain.AccountStatusDisconnected)
	seedAccount(t, db, 2001, 200, domain.ProviderBilling, domain.AccountStatusConnected)
	seedAccount(t, db, 2002, 200, "payments", domain.AccountStatusConnected)
	seedAccount(t, db, 3001, 300, domain.ProviderBilling, domain.AccountStatusConnected)
	// hooli has no accounts at all

	got, err := repo.ListTenantsWithAccounts(context.Background(), db,
		[]domain.SubscriptionTier{domain.TierStarter, domain.TierGrowth, domain.TierPro},
		domain.ProviderBilling,
	)
	assert.NoError(t, err)

	// initech is on the free tier and hooli has no eligible account,
	// so only acme and globex remain, in creation order.
	assert.Len(t, got, 2)
	assert.Equal(t, "acme", got[0].Tenant.Name)
	assert.Len(t, got[0].Accounts, 1)
	assert.Equal(t, snowflake.ID(1001), got[0].Accounts[0].ID)
	assert.Equal(t, "globex", got[1].Tenant.Name)
	assert.Len(t, got[1].Accounts, 1)
	assert.Equal(t, snowflake.ID(2001), got[1].Accounts[0].ID)
}

func TestListTenantsWithAccounts_NoTiers(t *testing.T) {
	db := openTestDB(t)
	repo := Provide()

	got, err := repo.ListTenantsWithAccounts(context.Background(), db, nil, domain.ProviderBilling)
	assert.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindByID(t *testing.T) {
	db := openTestDB(t)
	repo := Provide()
	seedTenant(t, db, 100, "acme", domain.TierGrowth, time.Now().UTC())

	tenant, err := repo.FindByID(context.Background(), db, snowflake.ID(100))
	assert.NoError(t, err)
	assert.NotNil(t, tenant)
	assert.Equal(t, "acme", tenant.Name)

	missing, err := repo.FindByID(context.Background(), db, snowflake.ID(999))
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestList_OrdersNewestFirst(t *testing.T) {
	db := openTestDB(t)
	repo := Provide()
	base := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	seedTenant(t, db, 100, "older", domain.TierStarter, base)
	seedTenant(t, db, 200, "newer", domain.TierStarter, base.Add(time.Hour))

	got, err := repo.List(context.Background(), db)
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "newer", got[0].Name)
	assert.Equal(t, "older", got[1].Name)
}
