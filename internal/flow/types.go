// Package flow drives users through the intake dialogs.
//
// Each flow is a Definition: a set of Steps whose transitions are pure
// functions of the submitted value. The Engine is a single interpreter over
// those definitions and never contains flow-specific branching.
package flow

import (
	"time"

	"lawyer-bot/internal/submission"
)

// Name identifies a flow.
type Name string

const (
	Emergency    Name = submission.FlowEmergency
	Consultation Name = submission.FlowConsultation
)

// InputKind is the shape of an inbound value.
type InputKind int

const (
	KindNone InputKind = iota
	KindText
	KindContact
	KindLocation
	KindChoice
)

func (k InputKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindContact:
		return "contact"
	case KindLocation:
		return "location"
	case KindChoice:
		return "choice"
	default:
		return "none"
	}
}

// StepName is scoped to a flow.
type StepName string

// Terminal is returned by Step.Next when the flow is complete.
const Terminal StepName = ""

// Option is one selectable answer of a choice step.
type Option struct {
	Label string
	Value string
}

// Step describes a single point of a flow.
type Step struct {
	Name StepName
	// Accepts maps an input kind to the field it is stored under.
	// An empty field name accepts the input without storing it.
	Accepts map[InputKind]string
	Prompt  func(fields map[string]string) string
	// Options lists the valid choice values; nil for steps without buttons.
	Options func(fields map[string]string, now time.Time) []Option
	// Validate optionally rejects a value of an accepted kind.
	Validate func(value string) error
	// Keep reports whether a value is stored under the accepted field.
	// Nil keeps every value.
	Keep     func(value string) bool
	Next     func(value string) StepName
	// Back is the step an explicit back action returns to, if any.
	Back StepName
}

func (s Step) accepts(kind InputKind) (string, bool) {
	field, ok := s.Accepts[kind]
	return field, ok
}

// request is the share-button the transport should offer for this step.
func (s Step) request() InputKind {
	if _, ok := s.Accepts[KindContact]; ok {
		return KindContact
	}
	if _, ok := s.Accepts[KindLocation]; ok {
		return KindLocation
	}
	return KindNone
}

func (s Step) hasOption(fields map[string]string, now time.Time, value string) bool {
	if s.Options == nil {
		return false
	}
	for _, o := range s.Options(fields, now) {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Definition is an immutable flow.
type Definition struct {
	Name  Name
	Title string
	First StepName
	Steps map[StepName]Step
}

func (d *Definition) step(name string) (Step, bool) {
	s, ok := d.Steps[StepName(name)]
	return s, ok
}

// EventKind is the kind of an inbound transport event.
type EventKind int

const (
	EventCommand EventKind = iota + 1
	EventText
	EventCallback
	EventContact
	EventLocation
)

// Event is a transport-independent inbound event.
type Event struct {
	Kind EventKind
	User submission.User
	// Command without the leading slash, for EventCommand.
	Command string
	// Text holds the message text, shared phone number or "lat, lon"
	// coordinates depending on Kind.
	Text   string
	Action Action
}

// Button is an inline button carrying a typed action.
type Button struct {
	Label  string
	Action Action
}

// Reply is what the transport should show the user.
type Reply struct {
	Text    string
	Buttons [][]Button
	// Request asks the transport to offer a contact or location share button.
	Request InputKind
	// ClearKeyboard removes a previously offered share button.
	ClearKeyboard bool
	// Edit replaces the message the callback came from instead of sending a new one.
	Edit bool
	// Invalid marks a re-prompt after rejected input.
	Invalid bool
	// Completion is set once a flow finishes.
	Completion *submission.Bundle
}

// Empty reports whether there is nothing to send.
func (r Reply) Empty() bool { return r.Text == "" }
