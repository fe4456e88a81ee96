package stream_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jrsteele09/go-itvx/stream"
	"github.com/stretchr/testify/require"
)

func TestNewDescriptor(t *testing.T) {
	tests := []struct {
		name       string
		streamType stream.Type
		fullHD     bool
		want       stream.FeatureSet
		platform   string
	}{
		{
			name:       "live",
			streamType: stream.TypeLive,
			want: stream.FeatureSet{
				Min: []string{"mpeg-dash", "widevine"},
				Max: []string{"mpeg-dash", "widevine", "outband-webvtt", "single-track"},
			},
			platform: "dotcom",
		},
		{
			name:       "catchup full hd",
			streamType: stream.TypeCatchup,
			fullHD:     true,
			want: stream.FeatureSet{
				Min: []string{"mpeg-dash", "widevine", "outband-webvtt"},
				Max: []string{"mpeg-dash", "widevine", "outband-webvtt", "single-track", "hd"},
			},
			platform: "ctv",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := stream.NewDescriptor(tt.streamType, tt.fullHD, "user-1", "AAA")
			if diff := cmp.Diff(tt.want, d.VariantAvailability.FeatureSet); diff != "" {
				t.Errorf("feature set mismatch (-want +got):\n%s", diff)
			}
			require.Equal(t, tt.platform, d.VariantAvailability.PlatformTag)
			require.Equal(t, "user-1", d.User.ItvUserID)
			require.Equal(t, "AAA", d.User.Token)
			require.Equal(t, "widevine", d.VariantAvailability.DRM.System)
		})
	}
}

func TestNewDescriptor_DoesNotShareSlices(t *testing.T) {
	a := stream.NewDescriptor(stream.TypeCatchup, true, "", "")
	a.VariantAvailability.FeatureSet.Min[0] = "changed"
	a.VariantAvailability.FeatureSet.Max[0] = "changed"

	b := stream.NewDescriptor(stream.TypeCatchup, false, "", "")
	require.Equal(t, "mpeg-dash", b.VariantAvailability.FeatureSet.Min[0])
	require.Equal(t, "mpeg-dash", b.VariantAvailability.FeatureSet.Max[0])
}
