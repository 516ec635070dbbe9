package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS organizations (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	// org_id is nullable: platform admins browsing globally are not pinned
	// to a tenant until they pick one to manage.
	`CREATE TABLE IF NOT EXISTS profiles (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		org_id UUID REFERENCES organizations(id) ON DELETE CASCADE,
		email VARCHAR(255) UNIQUE NOT NULL,
		full_name VARCHAR(255) NOT NULL,
		role VARCHAR(50) NOT NULL DEFAULT 'shop_user',
		password_hash VARCHAR(255) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS devices (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		org_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		pin VARCHAR(20) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS organization_features (
		org_id UUID PRIMARY KEY REFERENCES organizations(id) ON DELETE CASCADE,
		flags JSONB NOT NULL DEFAULT '{}',
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	// Refresh tokens are keyed by (subject, kind) rather than a user FK:
	// device-PIN sessions have no profile row behind them.
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		subject_id UUID NOT NULL,
		subject_kind VARCHAR(20) NOT NULL DEFAULT 'profile',
		token_hash VARCHAR(255) NOT NULL UNIQUE,
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_profiles_org_id ON profiles(org_id)`,
	`CREATE INDEX IF NOT EXISTS idx_profiles_email ON profiles(email)`,
	`CREATE INDEX IF NOT EXISTS idx_devices_org_id ON devices(org_id)`,
	`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_subject_id ON refresh_tokens(subject_id)`,

	// Directory lookup RPC. Kept alongside the direct profiles query so
	// deployments that restrict table reads can still resolve principals.
	`CREATE OR REPLACE FUNCTION lookup_profile(principal UUID)
	RETURNS TABLE(id UUID, org_id UUID, email VARCHAR, full_name VARCHAR, role VARCHAR) AS $$
		SELECT p.id, p.org_id, p.email, p.full_name, p.role
		FROM profiles p
		WHERE p.id = principal
	$$ LANGUAGE sql STABLE`,

	// Migration: legacy deployments named the tenant column shop_id.
	`DO $$
	BEGIN
		IF EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_name = 'profiles' AND column_name = 'shop_id'
		) THEN
			UPDATE profiles SET org_id = shop_id WHERE org_id IS NULL AND shop_id IS NOT NULL;
			ALTER TABLE profiles DROP COLUMN shop_id;
		END IF;
	END $$`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
