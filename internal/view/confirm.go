package view

// Prompt is the copy of the shared yes/no confirmation.
type Prompt struct {
	Title        string `json:"title"`
	Body         string `json:"body"`
	ConfirmLabel string `json:"confirmLabel"`
	CancelLabel  string `json:"cancelLabel"`
}

// DefaultPrompt is the single-delete copy; it is what the prompt shows
// whenever no other context has swapped its text.
var DefaultPrompt = Prompt{
	Title:        "Are you sure?",
	Body:         "This action cannot be undone.",
	ConfirmLabel: "Delete",
	CancelLabel:  "Cancel",
}

var ClearCompletedPrompt = Prompt{
	Title:        "Clear all completed tasks?",
	Body:         "This will permanently remove all completed tasks.",
	ConfirmLabel: "Clear",
	CancelLabel:  "Cancel",
}

type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionDelete
	ActionClearCompleted
)

// Action is a destructive operation waiting for confirmation.
type Action struct {
	Kind   ActionKind
	TaskID string
}

func DeleteAction(id string) Action { return Action{Kind: ActionDelete, TaskID: id} }
func ClearCompletedAction() Action  { return Action{Kind: ActionClearCompleted} }
func (a Action) IsZero() bool       { return a.Kind == ActionNone }

// PromptFor returns the copy shown while a is pending.
func PromptFor(a Action) Prompt {
	if a.Kind == ActionClearCompleted {
		return ClearCompletedPrompt
	}
	return DefaultPrompt
}

// Confirm is the shared confirmation step. At most one action is pending;
// opening another replaces it.
type Confirm struct {
	pending Action
	prompt  Prompt
	open    bool
}

func NewConfirm() Confirm {
	return Confirm{prompt: DefaultPrompt}
}

func (c *Confirm) Open(a Action) {
	if a.IsZero() {
		return
	}
	c.pending = a
	c.prompt = PromptFor(a)
	c.open = true
}

func (c Confirm) IsOpen() bool { return c.open }

func (c Confirm) Pending() Action { return c.pending }

func (c Confirm) Prompt() Prompt {
	if c.prompt == (Prompt{}) {
		return DefaultPrompt
	}
	return c.prompt
}

// Resolve closes the prompt. It returns the pending action only when
// confirmed; the copy is restored to DefaultPrompt in every case.
func (c *Confirm) Resolve(confirmed bool) (Action, bool) {
	a := c.pending
	wasOpen := c.open
	c.pending = Action{}
	c.prompt = DefaultPrompt
	c.open = false
	if !confirmed || !wasOpen || a.IsZero() {
		return Action{}, false
	}
	return a, true
}

// Dismiss closes the prompt without running anything.
func (c *Confirm) Dismiss() {
	c.Resolve(false)
}
