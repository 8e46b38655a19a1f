package editor

type (
	// Action is a user command bound to the model, such as undo. The UI calls
	// Do on a button press and asks Enabled to gray the button out. The
	// underlying Doer can implement Enabler; if it does not, the action is
	// always allowed.
	Action struct {
		doer Doer
	}

	Doer interface {
		Do()
	}

	Enabler interface {
		Enabled() bool
	}
)

func MakeAction(doer Doer) Action {
	return Action{doer: doer}
}

func (a Action) Do() {
	e, ok := a.doer.(Enabler)
	if ok && !e.Enabled() {
		return
	}
	if a.doer != nil {
		a.doer.Do()
	}
}

func (a Action) Enabled() bool {
	if a.doer == nil {
		return false // no doer, not allowed
	}
	e, ok := a.doer.(Enabler)
	if !ok {
		return true // not enabler, always allowed
	}
	return e.Enabled()
}

// undo
type undo Model

func (m *Model) Undo() Action { return MakeAction((*undo)(m)) }
func (m *undo) Enabled() bool { return m.history.CanUndo() }
func (m *undo) Do()           { (*Model)(m).restore("Undo", m.history.Undo) }

// redo
type redo Model

func (m *Model) Redo() Action { return MakeAction((*redo)(m)) }
func (m *redo) Enabled() bool { return m.history.CanRedo() }
func (m *redo) Do()           { (*Model)(m).restore("Redo", m.history.Redo) }

// flushHistory commits the pending debounced history entry, e.g. before the
// window loses focus.
type flushHistory Model

func (m *Model) FlushHistory() Action { return MakeAction((*flushHistory)(m)) }
func (m *flushHistory) Do()           { m.history.Flush() }

// save writes the project now instead of waiting for the autosave delay.
type save Model

func (m *Model) Save() Action { return MakeAction((*save)(m)) }
func (m *save) Enabled() bool { return m.autosave != nil }
func (m *save) Do()           { m.autosave.Save() }
