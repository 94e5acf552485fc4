package snackbar

// Visibility is the set of view elements that are shown.
type Visibility struct {
	Icon         bool
	Action       bool
	SecondAction bool
	Separator    bool
	Progress     bool
}

// Content is the part of a snackbar that decides element visibility.
type Content struct {
	Icon              string
	ActionLabel       string
	SecondActionLabel string
	HasAction         bool
	HasSecondAction   bool
}

// ComputeVisibility applies the show-time visibility rules:
//   - the icon is hidden iff there is no icon;
//   - the primary action is hidden iff it has neither icon nor label, or no handler;
//   - the secondary action is hidden iff it has no label or no handler;
//   - the separator follows the primary action.
//
// The progress indicator starts hidden.
func ComputeVisibility(c Content) Visibility {
	action := !(c.Icon == "" && c.ActionLabel == "") && c.HasAction
	return Visibility{
		Icon:         c.Icon != "",
		Action:       action,
		SecondAction: c.SecondActionLabel != "" && c.HasSecondAction,
		Separator:    action,
	}
}

// busy hides the action controls and shows the progress indicator.
func (v Visibility) busy() Visibility {
	v.Action = false
	v.SecondAction = false
	v.Separator = false
	v.Progress = true
	return v
}
