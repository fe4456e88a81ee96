package config

const (
	fullHDVar        = "ITVX_FULL_HD"
	playFromStartVar = "ITVX_PLAY_FROM_START"
)

type Playback struct {
	settings Settings
}

var _ PlaybackConfig = Playback{}

func (p Playback) GetFullHD() bool {
	return GetEnvBool(fullHDVar, p.settings.FullHD)
}

func (p Playback) GetPlayFromStart() bool {
	return GetEnvBool(playFromStartVar, p.settings.PlayFromStart)
}
