package models

import "time"

// PoseKeypoint is a single landmark in frame pixel coordinates.
// Z and Visibility are optional and omitted when unknown.
type PoseKeypoint struct {
	Name       string   `json:"name,omitempty"`
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Z          *float64 `json:"z,omitempty"`
	Visibility *float64 `json:"visibility,omitempty"`
}

// PoseDetection is a set of keypoints with an overall confidence score.
type PoseDetection struct {
	Keypoints  []PoseKeypoint `json:"keypoints"`
	Confidence float64        `json:"confidence"`
}

// Frame is one captured video frame. Data may be empty when the capture
// source only reports geometry.
type Frame struct {
	Seq        uint64    `json:"seq"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	CapturedAt time.Time `json:"captured_at"`
	Data       []byte    `json:"-"`
}
