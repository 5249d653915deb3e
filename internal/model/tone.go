package model

import "strings"

type Tone string

const (
	ToneNone     = Tone("none")
	ToneFormal   = Tone("formal")
	ToneNeutral  = Tone("neutral")
	ToneFriendly = Tone("friendly")
	ToneCasual   = Tone("casual")
)

type Length string

const (
	LengthNone   = Length("none")
	LengthShort  = Length("short")
	LengthMedium = Length("medium")
	LengthLong   = Length("long")
)

func ParseTone(s string) Tone {
	switch Tone(strings.ToLower(strings.TrimSpace(s))) {
	case ToneFormal:
		return ToneFormal
	case ToneNeutral:
		return ToneNeutral
	case ToneFriendly:
		return ToneFriendly
	case ToneCasual:
		return ToneCasual
	default:
		return ToneNone
	}
}

func ParseLength(s string) Length {
	switch Length(strings.ToLower(strings.TrimSpace(s))) {
	case LengthShort:
		return LengthShort
	case LengthMedium:
		return LengthMedium
	case LengthLong:
		return LengthLong
	default:
		return LengthNone
	}
}

// ValidTone reports whether s names a tone exactly, "none" included.
func ValidTone(s string) bool {
	return s == string(ToneNone) || ParseTone(s) != ToneNone && string(ParseTone(s)) == s
}

func ValidLength(s string) bool {
	return s == string(LengthNone) || ParseLength(s) != LengthNone && string(ParseLength(s)) == s
}
