package services

import (
	"log/slog"

	pubnub "github.com/pubnub/go/v7"
)

// CheckinFeed pushes successful verifications to a per-event realtime
// channel so the door dashboard updates without polling. A nil feed is
// valid and publishes nothing.
type CheckinFeed struct {
	pn *pubnub.PubNub
}

func NewCheckinFeed(pn *pubnub.PubNub) *CheckinFeed {
	return &CheckinFeed{pn: pn}
}

func (f *CheckinFeed) PublishCheckin(eventID string, summary *VerificationSummary) {
	if f == nil || f.pn == nil {
		return
	}

	_, _, err := f.pn.Publish().
		Channel("checkins." + eventID).
		Message(map[string]any{
			"nama":       summary.Nama,
			"email":      summary.Email,
			"verifiedAt": summary.VerifiedAt.String(),
			"event":      summary.Event,
		}).
		Execute()
	if err != nil {
		slog.Warn("checkin feed publish failed", "event_id", eventID, "error", err)
	}
}
