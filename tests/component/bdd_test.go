//go:build component
// +build component

package component

func (s *ComponentTestSuite) TestInvitationLifecycle() {
	given, when, then := s.gherkin()

	given().
		aRegisteredCreator().
		aRegisteredGuest().
		anEventCreatedByTheCreator()

	when().
		theGuestIsInvited()

	then().
		theGuestHasAPendingInvite().
		aMembershipEventWillEventuallyBeProduced("invited", s.guest.UID)
}

func (s *ComponentTestSuite) TestAcceptedInvitationMakesAParticipant() {
	given, when, then := s.gherkin()

	given().
		aRegisteredCreator().
		aRegisteredGuest().
		anEventCreatedByTheCreator().
		theGuestIsInvited()

	when().
		theGuestAcceptsTheInvitation()

	then().
		theGuestIsAParticipant().
		theGuestDocumentReflectsTheJoin().
		theCreatorIsAParticipantOfItsOwnEvent().
		aMembershipEventWillEventuallyBeProduced("invite_accepted", s.guest.UID)
}

func (s *ComponentTestSuite) TestLeavingResetsTheMembership() {
	given, when, then := s.gherkin()

	given().
		aRegisteredCreator().
		aRegisteredGuest().
		anEventCreatedByTheCreator().
		theGuestIsInvited().
		theGuestAcceptsTheInvitation()

	when().
		theGuestLeaves()

	then().
		theGuestHasNoMembership().
		aMembershipEventWillEventuallyBeProduced("left", s.guest.UID)
}
