// Package friendship derives viewpoint-relative relationship status from the
// canonical stored record. The record keeps a single direction
// (requester/addressee); everything a given viewer should see is computed
// here at read time.
package friendship

import (
	"time"

	"github.com/caiots/vorp-friends/internal/models"
)

// Viewpoint-relative statuses. Stored statuses pending/accepted/rejected/
// blocked map onto these depending on which side is asking.
const (
	StatusSelf     = "self"
	StatusNone     = "none"
	StatusSent     = "sent"
	StatusReceived = "received"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
	StatusBlocked  = "blocked"
)

// Meta exposes the raw record fields callers need for display-only facts
// ("friends since").
type Meta struct {
	RequesterID string    `json:"requesterId"`
	AddresseeID string    `json:"addresseeId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// View is the relationship as seen by one user
type View struct {
	Success        bool   `json:"success"`
	Status         string `json:"status"`
	Message        string `json:"message"`
	FriendshipID   string `json:"friendshipId,omitempty"`
	CanSendRequest bool   `json:"canSendRequest"`
	CanRespond     bool   `json:"canRespond"`
	Friendship     *Meta  `json:"friendship,omitempty"`
}

// Resolve computes the relationship view from viewerID's perspective.
// record may be nil (no relationship exists).
func Resolve(record *models.Friendship, viewerID, otherID string) View {
	if viewerID == otherID {
		return View{Success: true, Status: StatusSelf, Message: "Você mesmo"}
	}
	if record == nil {
		return View{Success: true, Status: StatusNone, Message: "Nenhuma amizade", CanSendRequest: true}
	}

	view := View{
		Success:      true,
		FriendshipID: record.ID.Hex(),
		Friendship: &Meta{
			RequesterID: record.RequesterID,
			AddresseeID: record.AddresseeID,
			CreatedAt:   record.CreatedAt,
			UpdatedAt:   record.UpdatedAt,
		},
	}

	switch record.Status {
	case models.FriendshipStatusPending:
		if record.RequesterID == viewerID {
			view.Status = StatusSent
			view.Message = "Solicitação enviada"
		} else {
			view.Status = StatusReceived
			view.Message = "Solicitação recebida"
			view.CanRespond = true
		}
	case models.FriendshipStatusAccepted:
		view.Status = StatusAccepted
		view.Message = "Amigos"
	case models.FriendshipStatusRejected:
		view.Status = StatusRejected
		view.Message = "Solicitação rejeitada"
		// Only the side that did the rejecting may open a new request;
		// the rejected requester cannot immediately re-spam.
		view.CanSendRequest = record.RequesterID != viewerID
	case models.FriendshipStatusBlocked:
		view.Status = StatusBlocked
		if record.RequesterID == viewerID {
			view.Message = "Você bloqueou este usuário"
		} else {
			view.Message = "Usuário te bloqueou"
		}
	default:
		view.Status = record.Status
		view.CanSendRequest = true
	}

	return view
}

// CanResend reports whether senderID may open a new request over an existing
// record. This is the storage-level policy matching the CanSendRequest hint:
// only a rejected record can be reopened, and only by the side that rejected.
func CanResend(record *models.Friendship, senderID string) bool {
	return record.Status == models.FriendshipStatusRejected && record.RequesterID != senderID
}

// RespondStatus maps a respond action to the stored terminal status. Returns
// empty string for unknown actions.
func RespondStatus(action string) string {
	switch action {
	case "accept":
		return models.FriendshipStatusAccepted
	case "reject":
		return models.FriendshipStatusRejected
	case "block":
		return models.FriendshipStatusBlocked
	}
	return ""
}
