package eventkit

import (
	"testing"
)

// TestIntegrationCreatorRoles tests the roles a project creator holds.
func TestIntegrationCreatorRoles(t *testing.T) {
	if !RequireDatabase(t) {
		return
	}

	h := NewTestDataHelper(t)
	owner := h.CreateTestUser("Owner")
	profile := h.CreateTestProfile("creator-roles-profile", owner)
	project := h.CreateTestProject("Creator Roles", profile.ID, owner)

	testCases := []struct {
		role string
		want bool
	}{
		{"editor", true},
		{"project_editor", true},
		{"promoter", true},
		{"crew", true},
		{"participant", true},
		{"profile_admin", true}, // creator also owns the hosting account
		{"usher", false},
		{"invitee", false},
	}

	for _, tc := range testCases {
		t.Run(tc.role, func(t *testing.T) {
			got := h.GetService().Has(h.GetContext(), "project", project.ID, owner, tc.role)
			if got != tc.want {
				t.Errorf("Creator role %s: expected %v, got %v", tc.role, tc.want, got)
			}
		})
	}
}

// TestIntegrationAnonymousReaderOnPublished tests the universal reader grant.
func TestIntegrationAnonymousReaderOnPublished(t *testing.T) {
	if !RequireDatabase(t) {
		return
	}

	h := NewTestDataHelper(t)
	owner := h.CreateTestUser("Owner")
	profile := h.CreateTestProfile("anon-reader-profile", owner)
	project := h.CreateTestProject("Anon Reader", profile.ID, owner)

	svc := h.GetService()

	// Drafts are invisible to anonymous visitors.
	h.AssertNotHasRole("project", project.ID, "", "reader")

	if _, err := svc.PublishProject(h.AsActor(owner), project); err != nil {
		t.Fatalf("PublishProject failed: %v", err)
	}

	h.AssertHasRole("project", project.ID, "", "reader")
	if !svc.CanRead(h.GetContext(), "project", project.ID, "", "title") {
		t.Error("Anonymous visitor should read the title of a published project")
	}
	if svc.CanRead(h.GetContext(), "project", project.ID, "", "state") {
		t.Error("Anonymous visitor should not read internal fields")
	}

	// Unrelated signed-in users get the same reader access, nothing more.
	visitor := h.CreateTestUser("Visitor")
	h.AssertHasRole("project", project.ID, visitor, "reader")
	h.AssertCannotCall("project", project.ID, visitor, "publish")

	if err := svc.WithdrawProject(h.AsActor(owner), project); err != nil {
		t.Fatalf("WithdrawProject failed: %v", err)
	}
	h.AssertNotHasRole("project", project.ID, "", "reader")
}

// TestIntegrationAnchorGrantsInvitee tests the invite claim-link token.
func TestIntegrationAnchorGrantsInvitee(t *testing.T) {
	if !RequireDatabase(t) {
		return
	}

	h := NewTestDataHelper(t)
	owner := h.CreateTestUser("Owner")
	profile := h.CreateTestProfile("anchor-profile", owner)
	project := h.CreateTestProject("Anchor", profile.ID, owner)
	invitee := h.CreateTestUser("Invitee")

	svc := h.GetService()
	invite, err := svc.InviteCrewMember(h.AsActor(owner), &ProjectCrewMembership{
		UserID: invitee, ProjectID: project.ID, IsUsher: true,
	})
	if err != nil {
		t.Fatalf("InviteCrewMember failed: %v", err)
	}

	// The invite record ID is the anchor. An anonymous bearer sees the invite.
	checker, err := svc.CheckerFor(h.GetContext(), "project", project.ID, "", []Anchor{Anchor(invite.ID)})
	if err != nil {
		t.Fatalf("CheckerFor failed: %v", err)
	}
	if !checker.Has("invitee") {
		t.Error("Anchor bearer should hold invitee")
	}
	if checker.Has("usher") || checker.Has("crew") {
		t.Error("Anchor bearer should hold nothing beyond invitee")
	}

	// A bogus token grants nothing.
	checker, err = svc.CheckerFor(h.GetContext(), "project", project.ID, "", []Anchor{"not-a-record"})
	if err != nil {
		t.Fatalf("CheckerFor with bogus anchor failed: %v", err)
	}
	if !checker.IsEmpty() {
		t.Errorf("Bogus anchor should grant nothing, got %v", checker.Roles())
	}

	// A revoked invite's token is dead.
	if err := svc.RevokeCrewMembership(h.AsActor(owner), invite); err != nil {
		t.Fatalf("RevokeCrewMembership failed: %v", err)
	}
	checker, err = svc.CheckerFor(h.GetContext(), "project", project.ID, "", []Anchor{Anchor(invite.ID)})
	if err != nil {
		t.Fatalf("CheckerFor after revoke failed: %v", err)
	}
	if checker.Has("invitee") {
		t.Error("Revoked invite token should grant nothing")
	}
}

// TestIntegrationProposalRoles tests role remapping onto proposals.
func TestIntegrationProposalRoles(t *testing.T) {
	if !RequireDatabase(t) {
		return
	}

	h := NewTestDataHelper(t)
	owner := h.CreateTestUser("Owner")
	profile := h.CreateTestProfile("proposal-roles-profile", owner)
	project := h.CreateTestProject("Proposal Roles", profile.ID, owner)
	speaker := h.CreateTestUser("Speaker")

	svc := h.GetService()
	if err := svc.OpenCFP(h.AsActor(owner), project); err != nil {
		t.Fatalf("OpenCFP failed: %v", err)
	}
	prop, err := svc.CreateProposal(h.AsActor(speaker), project, &Proposal{Title: "Generics in anger"})
	if err != nil {
		t.Fatalf("CreateProposal failed: %v", err)
	}

	// The submitter edits their own proposal.
	h.AssertHasRole("proposal", prop.ID, speaker, "submitter")
	if !svc.CanWrite(h.GetContext(), "proposal", prop.ID, speaker, "title") {
		t.Error("Submitter should write the proposal title")
	}

	// Project editors carry over through the remap; the promoter namespace
	// does not.
	h.AssertHasRole("proposal", prop.ID, owner, "project_editor")
	h.AssertNotHasRole("proposal", prop.ID, owner, "editor")
	h.AssertNotHasRole("proposal", prop.ID, owner, "promoter")
	if !svc.CanCall(h.GetContext(), "proposal", prop.ID, owner, "reorder") {
		t.Error("Project editor should reorder proposals")
	}

	// Crew see the proposal but cannot edit it.
	crew := h.CreateTestUser("Crew")
	if _, err := svc.GrantCrewMembership(h.AsActor(owner), &ProjectCrewMembership{
		UserID: crew, ProjectID: project.ID, IsUsher: true,
	}); err != nil {
		t.Fatalf("GrantCrewMembership failed: %v", err)
	}
	h.AssertHasRole("proposal", prop.ID, crew, "project_crew")
	if svc.CanWrite(h.GetContext(), "proposal", prop.ID, crew, "title") {
		t.Error("Crew should not write proposal fields")
	}
}

// TestIntegrationCommentRoles tests role derivation down the comment chain.
func TestIntegrationCommentRoles(t *testing.T) {
	if !RequireDatabase(t) {
		return
	}

	h := NewTestDataHelper(t)
	owner := h.CreateTestUser("Owner")
	profile := h.CreateTestProfile("comment-roles-profile", owner)
	project := h.CreateTestProject("Comment Roles", profile.ID, owner)
	commenter := h.CreateTestUser("Commenter")

	svc := h.GetService()
	cs, err := svc.GetCommentset(h.GetContext(), project.CommentsetID)
	if err != nil {
		t.Fatalf("GetCommentset failed: %v", err)
	}

	comment, err := svc.PostComment(h.AsActor(commenter), cs, &Comment{Message: "looking forward to this"})
	if err != nil {
		t.Fatalf("PostComment failed: %v", err)
	}

	h.AssertHasRole("comment", comment.ID, commenter, "author")
	h.AssertHasRole("commentset", cs.ID, commenter, "document_subscriber")
	h.AssertHasRole("comment", comment.ID, owner, "project_editor")
	h.AssertNotHasRole("comment", comment.ID, owner, "author")

	// Public comments grant reader to everyone.
	h.AssertHasRole("comment", comment.ID, "", "reader")

	if err := svc.MarkCommentSpam(h.AsActor(owner), comment); err != nil {
		t.Fatalf("MarkCommentSpam failed: %v", err)
	}
	h.AssertNotHasRole("comment", comment.ID, "", "reader")
	// Authorship is hidden on removed comments.
	h.AssertNotHasRole("comment", comment.ID, commenter, "author")
}

// TestIntegrationProfileRoles tests roles on account profiles.
func TestIntegrationProfileRoles(t *testing.T) {
	if !RequireDatabase(t) {
		return
	}

	h := NewTestDataHelper(t)
	owner := h.CreateTestUser("Owner")
	profile := h.CreateTestProfile("profile-roles-profile", owner)
	stranger := h.CreateTestUser("Stranger")

	h.AssertHasRole("profile", profile.ID, owner, "owner")
	h.AssertHasRole("profile", profile.ID, owner, "admin")
	h.AssertNotHasRole("profile", profile.ID, stranger, "owner")

	// The test profile is created public with an active owner: everyone reads.
	h.AssertHasRole("profile", profile.ID, stranger, "reader")
	h.AssertHasRole("profile", profile.ID, "", "reader")

	svc := h.GetService()
	if err := svc.MakeProfilePrivate(h.AsActor(owner), profile); err != nil {
		t.Fatalf("MakeProfilePrivate failed: %v", err)
	}
	h.AssertNotHasRole("profile", profile.ID, stranger, "reader")
	h.AssertHasRole("profile", profile.ID, owner, "owner")
}

// TestIntegrationCheckerForUnknownEntity tests entity validation in CheckerFor.
func TestIntegrationCheckerForUnknownEntity(t *testing.T) {
	if !RequireDatabase(t) {
		return
	}

	h := NewTestDataHelper(t)

	_, err := h.GetService().CheckerFor(h.GetContext(), "venue", "venue-1", "", nil)
	if err == nil || !IsInvalidEntity(err) {
		t.Errorf("Expected ErrInvalidEntity, got %v", err)
	}

	_, err = h.GetService().CheckerFor(h.GetContext(), "project", "00000000-0000-0000-0000-000000000000", "", nil)
	if err == nil || !IsMissingRecord(err) {
		t.Errorf("Expected ErrMissingRecord, got %v", err)
	}
}

// TestIntegrationPermissionHelpers tests the boolean convenience wrappers.
func TestIntegrationPermissionHelpers(t *testing.T) {
	if !RequireDatabase(t) {
		return
	}

	h := NewTestDataHelper(t)
	owner := h.CreateTestUser("Owner")
	profile := h.CreateTestProfile("perm-helpers-profile", owner)
	project := h.CreateTestProject("Perm Helpers", profile.ID, owner)

	svc := h.GetService()
	ctx := h.GetContext()

	if !svc.CanCall(ctx, "project", project.ID, owner, "publish") {
		t.Error("Creator should call publish")
	}
	if !svc.HasAnyRole(ctx, "project", project.ID, owner, "usher", "editor") {
		t.Error("Creator should match any-role on editor")
	}
	if svc.HasAnyRole(ctx, "project", project.ID, owner, "usher") {
		t.Error("Creator should not hold usher")
	}
	if !svc.CanWrite(ctx, "project", project.ID, owner, "cfp_end_at") {
		t.Error("Creator should write CFP fields")
	}

	// Helpers deny on resolution errors instead of failing.
	if svc.Has(ctx, "venue", "venue-1", owner, "editor") {
		t.Error("Unknown entity should deny")
	}
	if svc.CanCall(ctx, "project", "00000000-0000-0000-0000-000000000000", owner, "publish") {
		t.Error("Missing project should deny")
	}
}
