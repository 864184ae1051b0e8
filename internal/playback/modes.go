package playback

import (
	"fmt"
	"strings"
)

type State string

const (
	StateStopped State = "stopped"
	StateLoading State = "loading"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
)

type ShuffleMode string

const (
	ShuffleOff    ShuffleMode = "off"
	ShuffleRandom ShuffleMode = "random"
	ShuffleSmart  ShuffleMode = "smart"
)

func ParseShuffleMode(mode string) (ShuffleMode, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", string(ShuffleOff):
		return ShuffleOff, nil
	case string(ShuffleRandom):
		return ShuffleRandom, nil
	case string(ShuffleSmart):
		return ShuffleSmart, nil
	default:
		return "", fmt.Errorf("invalid shuffle mode %q", mode)
	}
}

type RepeatMode string

const (
	RepeatOff RepeatMode = "off"
	RepeatAll RepeatMode = "all"
	RepeatOne RepeatMode = "one"
)

func ParseRepeatMode(mode string) (RepeatMode, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", string(RepeatOff):
		return RepeatOff, nil
	case string(RepeatAll):
		return RepeatAll, nil
	case string(RepeatOne):
		return RepeatOne, nil
	default:
		return "", fmt.Errorf("invalid repeat mode %q", mode)
	}
}
