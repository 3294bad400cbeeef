package catalog

import (
	"strings"

	"live-commerce/internal/resource"
)

// StatusLive is the stream status of a broadcast in progress
const StatusLive = "LIVE"

// Stream is a live stream session record
type Stream struct {
	ID          ID     `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	HostID      string `json:"hostId"`
	Status      string `json:"status"`
	Channel     string `json:"agoraChannelName,omitempty"`
	StartTime   string `json:"startTime,omitempty"`
	EndTime     string `json:"endTime,omitempty"`
	ViewCount   int    `json:"viewCount"`
}

// StreamInput is the payload for scheduling a stream
type StreamInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	HostID      string `json:"hostId" validate:"required"`
}

type StreamView struct {
	ID          string
	Title       string
	Description string
	HostID      string
	Status      string
	Live        bool
	Channel     string
	ViewCount   int
	Views       string
	StartTime   string
	EndTime     string
	StartLabel  string
	EndLabel    string
}

func (v StreamView) Key() string { return v.ID }

// Record returns the raw record the view was derived from.
func (v StreamView) Record() Stream {
	return Stream{
		ID:          ID(v.ID),
		Title:       v.Title,
		Description: v.Description,
		HostID:      v.HostID,
		Status:      v.Status,
		Channel:     v.Channel,
		StartTime:   v.StartTime,
		EndTime:     v.EndTime,
		ViewCount:   v.ViewCount,
	}
}

// NormalizeStream returns the stream normalizer.
func NormalizeStream() func(Stream) StreamView {
	return func(s Stream) StreamView {
		return StreamView{
			ID:          s.ID.String(),
			Title:       s.Title,
			Description: s.Description,
			HostID:      s.HostID,
			Status:      s.Status,
			Live:        strings.EqualFold(s.Status, StatusLive),
			Channel:     s.Channel,
			ViewCount:   s.ViewCount,
			Views:       FormatNumber(float64(s.ViewCount)),
			StartTime:   s.StartTime,
			EndTime:     s.EndTime,
			StartLabel:  FormatTimestamp(s.StartTime),
			EndLabel:    FormatTimestamp(s.EndTime),
		}
	}
}

// StreamClient is the REST client for the stream collection
type StreamClient = resource.Client[StreamInput, Stream, StreamView]

// NewStreamClient binds the stream collection at baseURL. Payloads are sent
// as JSON.
func NewStreamClient(baseURL string, t *resource.Transport) (*StreamClient, error) {
	return resource.NewClient[StreamInput](resource.Config[Stream, StreamView]{
		Name:      "streams",
		BaseURL:   baseURL,
		Normalize: NormalizeStream(),
		Encoding:  resource.EncodingJSON,
		Transport: t,
	})
}
