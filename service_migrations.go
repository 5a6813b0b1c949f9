package eventkit

import (
	"github.com/fernandezvara/dbkit"
)

// MigrationService provides migration management functionality as an extension
// to Service.
type MigrationService struct {
	*Service
}

// NewMigrationService creates a new migration service extension.
func NewMigrationService(service *Service) *MigrationService {
	return &MigrationService{Service: service}
}

// Migrations returns all database migrations required for EventKit.
// Use dbkit.Migrate(ctx, db, service.Migrations()) to run migrations.
// Use dbkit.MigrationStatus(ctx, db, service.Migrations()) to check status.
func (ms *MigrationService) Migrations() []dbkit.Migration {
	return []dbkit.Migration{
		{
			ID:          "eventkit-001",
			Description: "Create users and organizations tables",
			SQL: `
                CREATE TABLE IF NOT EXISTS users (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    name TEXT NOT NULL,
                    status INT NOT NULL DEFAULT 1,
                    likely_throwaway BOOLEAN NOT NULL DEFAULT FALSE,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                );
                CREATE TABLE IF NOT EXISTS organizations (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    name TEXT NOT NULL,
                    status INT NOT NULL DEFAULT 1,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "eventkit-002",
			Description: "Create profiles table",
			SQL: `
                CREATE TABLE IF NOT EXISTS profiles (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    name TEXT NOT NULL UNIQUE,
                    user_id UUID UNIQUE REFERENCES users (id),
                    organization_id UUID UNIQUE REFERENCES organizations (id),
                    reserved BOOLEAN NOT NULL DEFAULT FALSE,
                    state INT NOT NULL DEFAULT 1,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    CONSTRAINT profiles_owner_check CHECK (
                        (user_id IS NOT NULL)::int + (organization_id IS NOT NULL)::int + reserved::int = 1
                    )
                )`,
		},
		{
			ID:          "eventkit-003",
			Description: "Create commentsets and comments tables",
			SQL: `
                CREATE TABLE IF NOT EXISTS commentsets (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    set_type INT NOT NULL,
                    state INT NOT NULL DEFAULT 2,
                    count INT NOT NULL DEFAULT 0,
                    last_comment_at TIMESTAMPTZ,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                );
                CREATE TABLE IF NOT EXISTS comments (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    commentset_id UUID NOT NULL REFERENCES commentsets (id),
                    user_id UUID REFERENCES users (id),
                    in_reply_to_id UUID REFERENCES comments (id),
                    message TEXT NOT NULL,
                    state INT NOT NULL DEFAULT 1,
                    edited_at TIMESTAMPTZ,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                );
                CREATE INDEX IF NOT EXISTS comments_commentset_idx ON comments (commentset_id);
                CREATE INDEX IF NOT EXISTS comments_in_reply_to_idx ON comments (in_reply_to_id)`,
		},
		{
			ID:          "eventkit-004",
			Description: "Create projects, proposals and sessions tables",
			SQL: `
                CREATE TABLE IF NOT EXISTS projects (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    profile_id UUID NOT NULL REFERENCES profiles (id),
                    user_id UUID NOT NULL REFERENCES users (id),
                    title TEXT NOT NULL,
                    tagline TEXT NOT NULL DEFAULT '',
                    instructions TEXT NOT NULL DEFAULT '',
                    state INT NOT NULL DEFAULT 1,
                    cfp_state INT NOT NULL DEFAULT 1,
                    start_at TIMESTAMPTZ,
                    end_at TIMESTAMPTZ,
                    cfp_start_at TIMESTAMPTZ,
                    cfp_end_at TIMESTAMPTZ,
                    first_published_at TIMESTAMPTZ,
                    published_at TIMESTAMPTZ,
                    commentset_id UUID NOT NULL REFERENCES commentsets (id),
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                );
                CREATE INDEX IF NOT EXISTS projects_profile_idx ON projects (profile_id);
                CREATE INDEX IF NOT EXISTS projects_commentset_idx ON projects (commentset_id);
                CREATE TABLE IF NOT EXISTS proposals (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    project_id UUID NOT NULL REFERENCES projects (id),
                    user_id UUID NOT NULL REFERENCES users (id),
                    title TEXT NOT NULL,
                    body TEXT NOT NULL DEFAULT '',
                    seq INT NOT NULL,
                    commentset_id UUID NOT NULL REFERENCES commentsets (id),
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                );
                CREATE INDEX IF NOT EXISTS proposals_project_idx ON proposals (project_id);
                CREATE INDEX IF NOT EXISTS proposals_commentset_idx ON proposals (commentset_id);
                CREATE TABLE IF NOT EXISTS sessions (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    project_id UUID NOT NULL REFERENCES projects (id),
                    title TEXT NOT NULL,
                    start_at TIMESTAMPTZ,
                    end_at TIMESTAMPTZ,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                );
                CREATE INDEX IF NOT EXISTS sessions_project_idx ON sessions (project_id)`,
		},
		{
			ID:          "eventkit-005",
			Description: "Create project_crew_memberships table",
			SQL: `
                CREATE TABLE IF NOT EXISTS project_crew_memberships (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    record_type INT NOT NULL,
                    granted_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    granted_by_id UUID,
                    revoked_at TIMESTAMPTZ,
                    revoked_by_id UUID,
                    user_id UUID NOT NULL REFERENCES users (id),
                    project_id UUID NOT NULL REFERENCES projects (id),
                    is_editor BOOLEAN NOT NULL DEFAULT FALSE,
                    is_promoter BOOLEAN NOT NULL DEFAULT FALSE,
                    is_usher BOOLEAN NOT NULL DEFAULT FALSE,
                    label TEXT NOT NULL DEFAULT '',
                    CONSTRAINT crew_has_role_check CHECK (is_editor OR is_promoter OR is_usher)
                );
                CREATE UNIQUE INDEX IF NOT EXISTS project_crew_active_uniq
                    ON project_crew_memberships (user_id, project_id)
                    WHERE revoked_at IS NULL;
                CREATE INDEX IF NOT EXISTS project_crew_project_idx ON project_crew_memberships (project_id)`,
		},
		{
			ID:          "eventkit-006",
			Description: "Create commentset_memberships table",
			SQL: `
                CREATE TABLE IF NOT EXISTS commentset_memberships (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    record_type INT NOT NULL,
                    granted_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    granted_by_id UUID,
                    revoked_at TIMESTAMPTZ,
                    revoked_by_id UUID,
                    user_id UUID NOT NULL REFERENCES users (id),
                    commentset_id UUID NOT NULL REFERENCES commentsets (id),
                    is_muted BOOLEAN NOT NULL DEFAULT FALSE,
                    last_seen_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                );
                CREATE UNIQUE INDEX IF NOT EXISTS commentset_membership_active_uniq
                    ON commentset_memberships (user_id, commentset_id)
                    WHERE revoked_at IS NULL;
                CREATE INDEX IF NOT EXISTS commentset_membership_set_idx ON commentset_memberships (commentset_id)`,
		},
		{
			ID:          "eventkit-007",
			Description: "Create project_sponsor_memberships table",
			SQL: `
                CREATE TABLE IF NOT EXISTS project_sponsor_memberships (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    record_type INT NOT NULL,
                    granted_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    granted_by_id UUID,
                    revoked_at TIMESTAMPTZ,
                    revoked_by_id UUID,
                    profile_id UUID NOT NULL REFERENCES profiles (id),
                    project_id UUID NOT NULL REFERENCES projects (id),
                    seq INT NOT NULL,
                    is_promoted BOOLEAN NOT NULL DEFAULT FALSE,
                    label TEXT NOT NULL DEFAULT '',
                    title TEXT NOT NULL DEFAULT '',
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                );
                CREATE UNIQUE INDEX IF NOT EXISTS project_sponsor_active_uniq
                    ON project_sponsor_memberships (profile_id, project_id)
                    WHERE revoked_at IS NULL;
                CREATE INDEX IF NOT EXISTS project_sponsor_project_idx ON project_sponsor_memberships (project_id)`,
		},
		{
			ID:          "eventkit-008",
			Description: "Create membership_audit_log table",
			SQL: `
                CREATE TABLE IF NOT EXISTS membership_audit_log (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    timestamp TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    actor_id TEXT NOT NULL,
                    action TEXT NOT NULL,
                    entity TEXT NOT NULL,
                    entity_id TEXT NOT NULL,
                    subject_id TEXT,
                    record_id TEXT,
                    transition TEXT,
                    previous_roles TEXT[],
                    new_roles TEXT[],
                    ip_address TEXT,
                    user_agent TEXT,
                    request_id TEXT,
                    metadata JSONB
                );
                CREATE INDEX IF NOT EXISTS membership_audit_entity_idx ON membership_audit_log (entity, entity_id);
                CREATE INDEX IF NOT EXISTS membership_audit_actor_idx ON membership_audit_log (actor_id)`,
		},
	}
}
