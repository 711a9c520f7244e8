package flow

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"lawyer-bot/internal/session"
	"lawyer-bot/internal/submission"
)

// Sink receives completed flows.
type Sink interface {
	Submit(ctx context.Context, b submission.Bundle) submission.Result
}

// Describer returns the marketing description.
type Describer interface {
	GetOrFetch(ctx context.Context) string
}

// Engine interprets flow definitions for every user.
// All work for one user is serialized through the session store lock.
type Engine struct {
	sessions *session.Store
	flows    map[Name]*Definition
	sink     Sink
	about    Describer
	now      func() time.Time
	log      *zap.Logger
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithFlows replaces the built-in flow definitions.
func WithFlows(flows map[Name]*Definition) EngineOption {
	return func(e *Engine) { e.flows = flows }
}

func NewEngine(sessions *session.Store, sink Sink, about Describer, log *zap.Logger, opts ...EngineOption) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{
		sessions: sessions,
		flows:    Builtin(),
		sink:     sink,
		about:    about,
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Handle processes one transport event to completion.
func (e *Engine) Handle(ctx context.Context, ev Event) Reply {
	unlock := e.sessions.Lock(ev.User.ID)
	defer unlock()

	log := e.log.With(zap.Int64("user_id", ev.User.ID))
	var r Reply
	switch ev.Kind {
	case EventCommand:
		log.Debug("command", zap.String("command", ev.Command))
		r = e.command(ctx, ev.User, ev.Command)
	case EventText:
		r = e.submit(ctx, ev.User, KindText, ev.Text)
	case EventContact:
		r = e.submit(ctx, ev.User, KindContact, ev.Text)
	case EventLocation:
		r = e.submit(ctx, ev.User, KindLocation, ev.Text)
	case EventCallback:
		r = e.action(ctx, ev.User, ev.Action)
		// the main menu button sits under the completion receipt, which must stay
		if ev.Action.Kind != ActionMainMenu && r.Request == KindNone && !r.ClearKeyboard && r.Completion == nil {
			r.Edit = true
		}
	default:
		log.Warn("unsupported event kind", zap.Int("kind", int(ev.Kind)))
	}
	return r
}

func (e *Engine) command(ctx context.Context, u submission.User, cmd string) Reply {
	switch cmd {
	case "start":
		return e.start(u)
	case "emergency":
		return e.openFlow(u, Emergency)
	case "consultation":
		return e.openFlow(u, Consultation)
	case "about":
		return e.describe(ctx)
	case "cancel":
		return e.cancel(u)
	default:
		return Reply{Text: textHelp}
	}
}

func (e *Engine) action(ctx context.Context, u submission.User, a Action) Reply {
	switch a.Kind {
	case ActionMainMenu:
		return e.start(u)
	case ActionOpenEmergency:
		return e.openFlow(u, Emergency)
	case ActionOpenConsultation:
		return e.openFlow(u, Consultation)
	case ActionAbout:
		return e.describe(ctx)
	case ActionCancel:
		return e.cancel(u)
	case ActionBack:
		return e.back(u)
	case ActionChoose:
		return e.submit(ctx, u, KindChoice, a.Value)
	case ActionUnknown:
		e.log.Debug("unknown action ignored", zap.Int64("user_id", u.ID))
	}
	return Reply{}
}

// Start greets the user and shows the main menu. It is an explicit restart.
func (e *Engine) Start(u submission.User) Reply {
	unlock := e.sessions.Lock(u.ID)
	defer unlock()
	return e.start(u)
}

// OpenFlow discards any previous progress and returns the first prompt.
func (e *Engine) OpenFlow(u submission.User, name Name) Reply {
	unlock := e.sessions.Lock(u.ID)
	defer unlock()
	return e.openFlow(u, name)
}

// SubmitInput applies one input to the user's current step.
func (e *Engine) SubmitInput(ctx context.Context, u submission.User, kind InputKind, payload string) Reply {
	unlock := e.sessions.Lock(u.ID)
	defer unlock()
	return e.submit(ctx, u, kind, payload)
}

// Cancel clears the session whatever state it is in.
func (e *Engine) Cancel(u submission.User) Reply {
	unlock := e.sessions.Lock(u.ID)
	defer unlock()
	return e.cancel(u)
}

// Back returns to the step the current step declares as its back target.
func (e *Engine) Back(u submission.User) Reply {
	unlock := e.sessions.Lock(u.ID)
	defer unlock()
	return e.back(u)
}

// Help lists the commands.
func (e *Engine) Help() Reply { return Reply{Text: textHelp} }

// About returns the marketing description with the main menu.
func (e *Engine) About(ctx context.Context) Reply { return e.describe(ctx) }

func (e *Engine) start(u submission.User) Reply {
	prev := e.sessions.Get(u.ID)
	e.sessions.Clear(u.ID)
	return e.leaving(prev, Reply{Text: greeting(u.FirstName), Buttons: mainMenu()})
}

func (e *Engine) describe(ctx context.Context) Reply {
	text := ""
	if e.about != nil {
		text = e.about.GetOrFetch(ctx)
	}
	if text == "" {
		text = textHelp
	}
	return Reply{Text: text, Buttons: mainMenu()}
}

func (e *Engine) openFlow(u submission.User, name Name) Reply {
	def, ok := e.flows[name]
	if !ok {
		e.log.Error("unknown flow requested", zap.String("flow", string(name)))
		return Reply{Text: textUseMenu, Buttons: mainMenu()}
	}
	prev := e.sessions.Get(u.ID)
	sess := session.Session{Flow: string(def.Name), Step: string(def.First), Fields: map[string]string{}}
	e.sessions.Set(u.ID, sess)
	e.log.Info("flow opened", zap.Int64("user_id", u.ID), zap.String("flow", string(name)))
	return e.leaving(prev, e.prompt(def, def.First, sess))
}

func (e *Engine) cancel(u submission.User) Reply {
	prev := e.sessions.Get(u.ID)
	e.sessions.Clear(u.ID)
	if !prev.Idle() {
		e.log.Info("flow cancelled", zap.Int64("user_id", u.ID), zap.String("flow", prev.Flow), zap.String("step", prev.Step))
	}
	return e.leaving(prev, Reply{Text: textCancelled, Buttons: mainMenu()})
}

func (e *Engine) back(u submission.User) Reply {
	sess := e.sessions.Get(u.ID)
	def, step, ok := e.current(u.ID, sess)
	if !ok {
		return Reply{Text: textUseMenu, Buttons: mainMenu()}
	}
	if step.Back == "" {
		return e.reprompt(def, step, sess, textNoBack)
	}
	prev := sess.Clone()
	sess.Step = string(step.Back)
	e.sessions.Set(u.ID, sess)
	return e.leaving(prev, e.prompt(def, step.Back, sess))
}

func (e *Engine) submit(ctx context.Context, u submission.User, kind InputKind, payload string) Reply {
	sess := e.sessions.Get(u.ID)
	def, step, ok := e.current(u.ID, sess)
	if !ok {
		return Reply{Text: textUseMenu, Buttons: mainMenu()}
	}
	log := e.log.With(zap.Int64("user_id", u.ID), zap.String("flow", sess.Flow), zap.String("step", sess.Step))

	field, accepted := step.accepts(kind)
	if !accepted {
		log.Debug("input kind rejected", zap.Stringer("kind", kind))
		if kind == KindText && step.Options != nil {
			return e.reprompt(def, step, sess, textUseButtons)
		}
		return e.reprompt(def, step, sess, textWrongInput)
	}
	payload = strings.TrimSpace(payload)
	if kind == KindChoice && !step.hasOption(sess.Fields, e.now(), payload) {
		return e.reprompt(def, step, sess, textUnknownOption)
	}
	if step.Validate != nil {
		if err := step.Validate(payload); err != nil {
			return e.reprompt(def, step, sess, err.Error())
		}
	}

	if sess.Fields == nil {
		sess.Fields = map[string]string{}
	}
	if field != "" && (step.Keep == nil || step.Keep(payload)) {
		sess.Fields[field] = payload
	}
	next := step.Next(payload)
	if next == Terminal {
		return e.complete(ctx, u, def, step, sess)
	}
	if _, ok := def.Steps[next]; !ok {
		log.Error("flow definition points to a missing step", zap.String("next", string(next)))
		return e.reprompt(def, step, sess, textWrongInput)
	}
	sess.Step = string(next)
	e.sessions.Set(u.ID, sess)
	r := e.prompt(def, next, sess)
	if step.request() != KindNone && r.Request == KindNone {
		r.ClearKeyboard = true
	}
	return r
}

func (e *Engine) complete(ctx context.Context, u submission.User, def *Definition, last Step, sess session.Session) Reply {
	bundle := submission.NewBundle(string(def.Name), u, sess.Fields, e.now())
	e.sessions.Clear(u.ID)

	res := submission.Result{Ref: bundle.Ref()}
	if e.sink != nil {
		res = e.sink.Submit(ctx, bundle)
	}
	e.log.Info("flow completed",
		zap.Int64("user_id", u.ID),
		zap.String("flow", bundle.Flow),
		zap.String("ref", res.Ref),
		zap.Int("fields", len(bundle.Fields)))

	text := textDoneConsultation
	if def.Name == Emergency {
		text = textDoneEmergency
	}
	return Reply{
		Text:          text,
		Buttons:       [][]Button{{buttonMainMenu}},
		ClearKeyboard: last.request() != KindNone,
		Completion:    &bundle,
	}
}

// current resolves the active definition and step. A session pointing at an
// unknown flow or step is reset.
func (e *Engine) current(userID int64, sess session.Session) (*Definition, Step, bool) {
	if sess.Idle() {
		return nil, Step{}, false
	}
	def, ok := e.flows[Name(sess.Flow)]
	if !ok {
		e.log.Error("session has unknown flow, resetting", zap.Int64("user_id", userID), zap.String("flow", sess.Flow))
		e.sessions.Clear(userID)
		return nil, Step{}, false
	}
	step, ok := def.step(sess.Step)
	if !ok {
		e.log.Error("session has unknown step, resetting", zap.Int64("user_id", userID), zap.String("step", sess.Step))
		e.sessions.Clear(userID)
		return nil, Step{}, false
	}
	return def, step, true
}

func (e *Engine) prompt(def *Definition, name StepName, sess session.Session) Reply {
	step := def.Steps[name]
	r := Reply{Text: step.Prompt(sess.Fields), Request: step.request()}
	if step.Options != nil {
		for _, o := range step.Options(sess.Fields, e.now()) {
			r.Buttons = append(r.Buttons, []Button{{Label: o.Label, Action: Choose(o.Value)}})
		}
	}
	nav := []Button{}
	if step.Back != "" {
		nav = append(nav, buttonBack)
	}
	nav = append(nav, buttonCancel)
	r.Buttons = append(r.Buttons, nav)
	return r
}

func (e *Engine) reprompt(def *Definition, step Step, sess session.Session, reason string) Reply {
	r := e.prompt(def, step.Name, sess)
	r.Text = reason + "\n\n" + r.Text
	r.Invalid = true
	return r
}

// leaving removes a share keyboard offered by the step the user is leaving.
func (e *Engine) leaving(prev session.Session, r Reply) Reply {
	if r.Request != KindNone {
		return r
	}
	if def, ok := e.flows[Name(prev.Flow)]; ok {
		if step, ok := def.step(prev.Step); ok && step.request() != KindNone {
			r.ClearKeyboard = true
		}
	}
	return r
}
