package eventkit

import "context"

// ============================================================================
// PERMISSION CHECKING
// ============================================================================
//
// Convenience wrappers over CheckerFor for one-off checks. Handlers that
// perform several checks on the same entity should build a Checker once and
// reuse it (see middleware.go).

// Has reports whether a user holds a role on an entity. Resolution errors
// (including a missing entity) read as no access.
//
// Example:
//
//	if service.Has(ctx, "project", projectID, userID, "editor") {
//	    // user can edit the project
//	}
func (s *Service) Has(ctx context.Context, entity, entityID, userID, role string) bool {
	checker, err := s.CheckerFor(ctx, entity, entityID, userID, GetAnchors(ctx))
	if err != nil {
		return false
	}
	return checker.Has(role)
}

// HasAnyRole reports whether a user holds at least one of the roles on an
// entity.
func (s *Service) HasAnyRole(ctx context.Context, entity, entityID, userID string, roles ...string) bool {
	checker, err := s.CheckerFor(ctx, entity, entityID, userID, GetAnchors(ctx))
	if err != nil {
		return false
	}
	return checker.HasAny(roles...)
}

// CanCall reports whether a user may call a method on an entity.
//
// Example:
//
//	if service.CanCall(ctx, "project", projectID, userID, "publish") {
//	    // proceed with publishing
//	}
func (s *Service) CanCall(ctx context.Context, entity, entityID, userID, method string) bool {
	checker, err := s.CheckerFor(ctx, entity, entityID, userID, GetAnchors(ctx))
	if err != nil {
		return false
	}
	return checker.CanCall(method)
}

// CanWrite reports whether a user may write a field on an entity.
func (s *Service) CanWrite(ctx context.Context, entity, entityID, userID, field string) bool {
	checker, err := s.CheckerFor(ctx, entity, entityID, userID, GetAnchors(ctx))
	if err != nil {
		return false
	}
	return checker.CanWrite(field)
}

// CanRead reports whether a user may read a field on an entity.
func (s *Service) CanRead(ctx context.Context, entity, entityID, userID, field string) bool {
	checker, err := s.CheckerFor(ctx, entity, entityID, userID, GetAnchors(ctx))
	if err != nil {
		return false
	}
	return checker.CanRead(field)
}
