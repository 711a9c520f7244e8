package flow

import "strings"

// ActionKind enumerates button actions.
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionMainMenu
	ActionOpenEmergency
	ActionOpenConsultation
	ActionAbout
	ActionCancel
	ActionBack
	ActionChoose
)

// Action is a decoded button press. Value is only used by ActionChoose.
type Action struct {
	Kind  ActionKind
	Value string
}

func Choose(value string) Action { return Action{Kind: ActionChoose, Value: value} }

const choosePrefix = "c:"

var actionCodes = map[ActionKind]string{
	ActionMainMenu:         "menu",
	ActionOpenEmergency:    "emergency",
	ActionOpenConsultation: "consultation",
	ActionAbout:            "about",
	ActionCancel:           "cancel",
	ActionBack:             "back",
}

// EncodeAction renders an action as callback data.
func EncodeAction(a Action) string {
	if a.Kind == ActionChoose {
		return choosePrefix + a.Value
	}
	return actionCodes[a.Kind]
}

// DecodeAction parses callback data; anything unrecognized is ActionUnknown.
func DecodeAction(data string) Action {
	if v, ok := strings.CutPrefix(data, choosePrefix); ok && v != "" {
		return Choose(v)
	}
	for k, code := range actionCodes {
		if code == data {
			return Action{Kind: k}
		}
	}
	return Action{Kind: ActionUnknown}
}
