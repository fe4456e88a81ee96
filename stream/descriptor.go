package stream

// Type selects the playlist flavour.
type Type string

const (
	TypeLive    Type = "live"
	TypeCatchup Type = "catchup"
)

// Accept header values of the playlist endpoints.
const (
	liveMediaType    = "application/vnd.itv.online.playlist.sim.v3+json"
	catchupMediaType = "application/vnd.itv.vod.playlist.v4+json"
)

func (t Type) mediaType() string {
	if t == TypeLive {
		return liveMediaType
	}
	return catchupMediaType
}

// Descriptor is the client, device and feature description posted to the
// playlist endpoints.
type Descriptor struct {
	Client              Client              `json:"client"`
	Device              Device              `json:"device"`
	User                User                `json:"user"`
	VariantAvailability VariantAvailability `json:"variantAvailability"`
}

type Client struct {
	ID             string `json:"id"`
	SupportsAdPods bool   `json:"supportsAdPods"`
	Version        string `json:"version"`
}

type Device struct {
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
	OS           DeviceOS `json:"os"`
}

type DeviceOS struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Version string `json:"version"`
}

type User struct {
	Entitlements []string `json:"entitlements"`
	ItvUserID    string   `json:"itvUserId"`
	Token        string   `json:"token"`
}

type VariantAvailability struct {
	FeatureSet  FeatureSet `json:"featureset"`
	PlatformTag string     `json:"platformTag"`
	DRM         DRM        `json:"drm"`
}

type FeatureSet struct {
	Min []string `json:"min"`
	Max []string `json:"max"`
}

type DRM struct {
	System       string `json:"system"`
	MaxSupported string `json:"maxSupported"`
}

// Live playlists are refused when hd or outband-webvtt are in the minimum set.
var (
	liveMinFeatures    = []string{"mpeg-dash", "widevine"}
	catchupMinFeatures = []string{"mpeg-dash", "widevine", "outband-webvtt"}
	maxFeatures        = []string{"mpeg-dash", "widevine", "outband-webvtt", "single-track"}
)

// NewDescriptor builds the request body for a playlist of the given type.
func NewDescriptor(streamType Type, fullHD bool, userID, accessToken string) Descriptor {
	minSet := catchupMinFeatures
	if streamType == TypeLive {
		minSet = liveMinFeatures
	}
	maxSet := append([]string(nil), maxFeatures...)
	platform := "dotcom"
	if fullHD {
		maxSet = append(maxSet, "hd")
		platform = "ctv"
	}

	return Descriptor{
		Client: Client{ID: "browser", SupportsAdPods: true, Version: "4.1"},
		Device: Device{
			Manufacturer: "Firefox",
			Model:        "128",
			OS:           DeviceOS{Name: "Linux", Type: "desktop", Version: "x86_64"},
		},
		User: User{
			Entitlements: []string{},
			ItvUserID:    userID,
			Token:        accessToken,
		},
		VariantAvailability: VariantAvailability{
			FeatureSet:  FeatureSet{Min: append([]string(nil), minSet...), Max: maxSet},
			PlatformTag: platform,
			DRM:         DRM{System: "widevine", MaxSupported: "L3"},
		},
	}
}
