package domain

import (
	"time"
)

// Stream lifecycle states
const (
	StreamScheduled = "SCHEDULED"
	StreamLive      = "LIVE"
	StreamEnded     = "ENDED"
)

// Stream is a live selling session
type Stream struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	HostID      string     `json:"hostId"`
	Status      string     `json:"status"`
	Channel     string     `json:"agoraChannelName"`
	StartTime   *time.Time `json:"startTime,omitempty"`
	EndTime     *time.Time `json:"endTime,omitempty"`
	ViewCount   int        `json:"viewCount"`
}

// StreamRequest is the stream payload
type StreamRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	HostID      string `json:"hostId" validate:"required"`
}
