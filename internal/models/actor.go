package models

// SystemActorID marks changes made by the backend itself, e.g. an expired
// payment cancelling its booking.
const SystemActorID = "system"

// Actor is whoever asks for a booking change.
type Actor struct {
	ID     string
	RoleID uint
}

func SystemActor() Actor {
	return Actor{ID: SystemActorID, RoleID: RoleAdmin}
}

func (a Actor) IsAdmin() bool   { return a.RoleID == RoleAdmin }
func (a Actor) IsPartner() bool { return a.RoleID == RolePartner }
func (a Actor) IsClient() bool  { return a.RoleID == RoleClient }
