package models

import (
	"bikedash.nycbikeshare.org/internal/clock"
)

// ResponseModel is the envelope every JSON endpoint returns.
type ResponseModel struct {
	Code        int         `json:"code"`
	CurrentTime int64       `json:"currentTime"`
	Data        interface{} `json:"data,omitempty"`
	Text        string      `json:"text"`
	Version     int         `json:"version"`
}

// ResponseCurrentTime returns the envelope timestamp in epoch milliseconds.
func ResponseCurrentTime(c clock.Clock) int64 {
	return c.NowUnixMilli()
}

// NewOKResponse wraps data in a successful response envelope.
func NewOKResponse(data interface{}, c clock.Clock) ResponseModel {
	return ResponseModel{
		Code:        200,
		CurrentTime: ResponseCurrentTime(c),
		Data:        data,
		Text:        "OK",
		Version:     2,
	}
}

// EntryResponse wraps a single entry payload.
type EntryResponse struct {
	Entry interface{} `json:"entry"`
}

// NewEntryResponse wraps a single entry in a successful response envelope.
func NewEntryResponse(entry interface{}, c clock.Clock) ResponseModel {
	return NewOKResponse(EntryResponse{Entry: entry}, c)
}

// ListResponse wraps a list payload. LimitExceeded signals the list was
// truncated to the requested size.
type ListResponse struct {
	List          interface{} `json:"list"`
	LimitExceeded bool        `json:"limitExceeded"`
}

// NewListResponse wraps a list in a successful response envelope.
func NewListResponse(list interface{}, limitExceeded bool, c clock.Clock) ResponseModel {
	return NewOKResponse(ListResponse{List: list, LimitExceeded: limitExceeded}, c)
}
