// Package eventkit provides the membership, role-derivation and lifecycle
// core for an event hosting application: accounts (profiles) host projects,
// projects collect proposals through a call for proposals, and every document
// carries a comment thread.
//
// EventKit never stores a user's roles. Membership records store capability
// flags; roles are derived per request from those records, from relationships
// between entities and from lifecycle state, then checked against declarative
// access tables.
//
// # Core Concepts
//
// Membership record: an append-only row granting a subject (user or account)
// a position on a parent entity. Records are never edited in place: amending
// one revokes it and inserts a successor, so the full grant history survives.
// At most one active record exists per subject and parent, backed by a
// partial unique index.
//
// Role: an ephemeral name computed for one actor on one entity during one
// request. Roles come from membership capability flags (is_editor on a crew
// record grants editor), from related entities through remap tables (a
// project editor is project_editor on the project's proposals) and from
// lifecycle state (published projects grant reader to everyone).
//
// State manager: a declarative state machine bound to an entity's integer
// state column, with named states, groups, predicate-derived conditional
// states and guarded transitions. Failed guards return ErrInvalidTransition
// and never modify the entity.
//
// Anchor: an opaque token granting limited roles by possession; the ID of a
// pending crew invite doubles as the claim token for the invite link.
//
// # Key Features
//
//   - Append-only membership records with full audit trail
//   - Per-request role derivation: no role rows to migrate or invalidate
//   - Grants-via remapping between related entities
//   - Declarative state machines with queryable derived states
//   - Declarative per-role access tables with wildcard patterns
//   - Sibling reordering with minimal-disturbance rotation
//   - Detailed audit logging: who, what, when, previous and new roles
//   - DBKit integration: uses your existing database connection
//
// # Basic Usage
//
//	// 1. Create the service (the default registry covers the stock entities)
//	service := eventkit.NewService(db)
//
//	// 2. Run migrations
//	db.Migrate(ctx, eventkit.NewMigrationService(service).Migrations())
//
//	// 3. Create a project; the creator gets an editor+promoter crew record
//	ctx = eventkit.WithActorID(ctx, userID)
//	project, err := service.CreateProject(ctx, &eventkit.Project{
//	    ProfileID: profileID,
//	    Title:     "GopherConf",
//	})
//
//	// 4. Manage crew
//	invite, err := service.InviteCrewMember(ctx, &eventkit.ProjectCrewMembership{
//	    UserID:    revieweeID,
//	    ProjectID: project.ID,
//	    IsUsher:   true,
//	})
//
//	// 5. Check access
//	if service.CanCall(ctx, "project", project.ID, userID, "publish") {
//	    service.PublishProject(ctx, project)
//	}
//
// # Middleware Usage
//
//	mw := eventkit.NewMiddleware(service)
//
//	router.Use(mw.InjectAuditContext())
//	router.With(mw.RequireCall("open_cfp", eventkit.EntityFromParam("project", "projectID"))).
//	    Post("/projects/{projectID}/cfp/open", openCFPHandler)
//
// # Access Patterns
//
// Access tables map roles to readable fields, writable fields and callable
// methods. Patterns support two wildcard forms:
//
//   - "*" matches everything
//   - "cfp_*" matches names with the prefix (e.g. "cfp_start_at", "cfp_end_at")
//
// # Audit Log
//
// Membership changes and lifecycle transitions are automatically logged with:
//   - Actor (who made the change)
//   - Subject and membership record (for grants, amendments, revocations)
//   - Transition name (for lifecycle changes)
//   - Previous and new offered roles
//   - Timestamp and request metadata (IP, user agent, request ID)
package eventkit
