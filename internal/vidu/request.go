package vidu

import (
	"fmt"
	"strings"
)

const (
	DefaultModel             = "viduq1"
	DefaultMovementAmplitude = "auto"

	// Sample image from the vendor docs, kept as the submit default so the
	// command works out of the box.
	DefaultImage = "https://prod-ss-images.s3.cn-northwest-1.amazonaws.com.cn/vidu-maas/template/image2video.png"

	DefaultPrompt = "The astronaut waved and the camera moved up."
)

// GenerationRequest is the body of an image-to-video submission. Optional
// fields are pointers (or empty strings/slices) so that anything the caller
// left unset is omitted from the wire body entirely, never sent as null.
type GenerationRequest struct {
	Model             string   `json:"model,omitempty"`
	Images            []string `json:"images,omitempty"`
	Prompt            string   `json:"prompt,omitempty"`
	Duration          *int     `json:"duration,omitempty"`
	Seed              *int     `json:"seed,omitempty"`
	Resolution        string   `json:"resolution,omitempty"`
	MovementAmplitude string   `json:"movement_amplitude,omitempty"`
	BGM               *bool    `json:"bgm,omitempty"`
	Payload           string   `json:"payload,omitempty"`
	OffPeak           *bool    `json:"off_peak,omitempty"`
	Watermark         *bool    `json:"watermark,omitempty"`
	CallbackURL       string   `json:"callback_url,omitempty"`
}

// ValidationError marks a request rejected before any network call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid generation request: " + e.Reason
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Validate enforces the submission contract: exactly one image reference,
// recognized enum values, non-negative numbers.
func (r *GenerationRequest) Validate() error {
	if len(r.Images) != 1 || strings.TrimSpace(r.Images[0]) == "" {
		return validationErrorf("exactly one image must be provided")
	}
	if r.Duration != nil && *r.Duration < 0 {
		return validationErrorf("duration must not be negative")
	}
	if r.Seed != nil && *r.Seed < 0 {
		return validationErrorf("seed must not be negative")
	}
	if r.Resolution != "" {
		switch r.Resolution {
		case "360p", "720p", "1080p":
		default:
			return validationErrorf("unknown resolution %q (expected 360p, 720p, or 1080p)", r.Resolution)
		}
	}
	if r.MovementAmplitude != "" {
		switch r.MovementAmplitude {
		case "auto", "small", "medium", "large":
		default:
			return validationErrorf("unknown movement amplitude %q (expected auto, small, medium, or large)", r.MovementAmplitude)
		}
	}
	return nil
}

// ParseOptionalBool interprets tri-state boolean flag input. An empty string
// means unset and yields nil.
func ParseOptionalBool(raw string) (*bool, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch v {
	case "":
		return nil, nil
	case "true", "1", "yes", "y":
		b := true
		return &b, nil
	case "false", "0", "no", "n":
		b := false
		return &b, nil
	default:
		return nil, fmt.Errorf("invalid boolean %q (expected true or false)", raw)
	}
}
