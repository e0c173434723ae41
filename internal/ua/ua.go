// internal/ua/ua.go
//
// User-Agent parsing helpers.
//
// Accepted submissions are stored with a short description of the client
// that sent them.  This wrapper isolates the third-party
// `github.com/avct/uasurfer` API so the rest of the codebase never sees its
// enums or structs.
package ua

import (
	"context"
	"fmt"
	"strconv"

	surfer "github.com/avct/uasurfer"
)

// Client carries the UA attributes recorded with a submission.
//
// Example (Chrome on macOS):
//
//	Browser   "Chrome"
//	Version   "125.0.6422"
//	OS        "Mac OS X"
//	Device    "Desktop"
//	IsBot     false
//
// Device will be one of: "Desktop", "Mobile", "Tablet", or "Other".
type Client struct {
	Browser   string `json:"browser,omitempty"`
	Version   string `json:"version,omitempty"`
	OS        string `json:"os,omitempty"`
	OSVersion string `json:"os_version,omitempty"`
	Device    string `json:"device,omitempty"`
	IsBot     bool   `json:"is_bot"`
}

// Parse converts a raw header into a Client.
func Parse(raw string) Client {
	ua := surfer.Parse(raw)

	c := Client{
		Browser:   trimUnknown(ua.Browser.Name.StringTrimPrefix()),
		Version:   versionToString(ua.Browser.Version),
		OS:        trimUnknown(ua.OS.Name.StringTrimPrefix()),
		OSVersion: versionToString(ua.OS.Version),
		IsBot:     ua.IsBot(),
	}

	switch ua.DeviceType {
	case surfer.DeviceComputer:
		c.Device = "Desktop"
	case surfer.DeviceTablet:
		c.Device = "Tablet"
	case surfer.DevicePhone, surfer.DeviceWearable:
		c.Device = "Mobile"
	default:
		c.Device = "Other"
	}

	return c
}

func trimUnknown(s string) string {
	if s == "Unknown" {
		return ""
	}
	return s
}

// versionToString renders a semantic version in dotted form while trimming
// trailing zeros, e.g. 17.0.0 → "17", 17.3.0 → "17.3", 17.3.1 → "17.3.1".
func versionToString(v surfer.Version) string {
	if v.Major == 0 && v.Minor == 0 && v.Patch == 0 {
		return ""
	}
	if v.Patch != 0 {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
	if v.Minor != 0 {
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	}
	return strconv.Itoa(v.Major)
}

type ctxKey struct{}

// WithClient returns a copy of ctx carrying c.
func WithClient(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the Client stored in ctx.
func FromContext(ctx context.Context) (Client, bool) {
	c, ok := ctx.Value(ctxKey{}).(Client)
	return c, ok
}
