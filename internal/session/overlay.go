package session

import "github.com/claude/nutrical/internal/models"

// Frame size used for the overlay when no frame geometry is known.
const (
	DefaultFrameWidth  = 1280
	DefaultFrameHeight = 720
)

// Overlay is the cosmetic skeleton drawn over the camera view. Its points
// sit at fixed fractions of the frame; nothing is derived from video.
type Overlay struct {
	Width       int                  `json:"width"`
	Height      int                  `json:"height"`
	Pose        models.PoseDetection `json:"pose"`
	Connections [][2]int             `json:"connections"`
}

var skeletonLayout = []struct {
	name string
	x, y float64
}{
	{"head", 0.5, 0.2},
	{"left_shoulder", 0.45, 0.35},
	{"right_shoulder", 0.55, 0.35},
	{"left_elbow", 0.4, 0.55},
	{"right_elbow", 0.6, 0.55},
	{"left_hip", 0.48, 0.65},
	{"right_hip", 0.52, 0.65},
	{"left_knee", 0.46, 0.85},
	{"right_knee", 0.54, 0.85},
}

// skeletonConnections index into skeletonLayout: upper body then lower body.
var skeletonConnections = [][2]int{
	{0, 1}, {0, 2}, {1, 2}, {1, 3}, {2, 4},
	{1, 5}, {2, 6}, {5, 6}, {5, 7}, {6, 8},
}

// SkeletonOverlay scales the fixed 9-point skeleton to a width×height frame.
func SkeletonOverlay(width, height int) Overlay {
	kps := make([]models.PoseKeypoint, len(skeletonLayout))
	for i, p := range skeletonLayout {
		kps[i] = models.PoseKeypoint{
			Name: p.name,
			X:    float64(width) * p.x,
			Y:    float64(height) * p.y,
		}
	}
	conns := make([][2]int, len(skeletonConnections))
	copy(conns, skeletonConnections)
	return Overlay{
		Width:       width,
		Height:      height,
		Pose:        models.PoseDetection{Keypoints: kps},
		Connections: conns,
	}
}
