package Handover

import (
	"Lobby/Models"
)

// Decision is the outcome of classifying one archived task against the
// incoming staff member.
type Decision string

const (
	// DecisionTransfer resurfaces the task as a carried-over card.
	DecisionTransfer Decision = "transfer"
	// DecisionArchivedTerminal keeps the task in history only: it was
	// completed or cancelled before the shift closed.
	DecisionArchivedTerminal Decision = "archived_terminal"
	// DecisionArchivedUnowned keeps a personal task in history because the
	// incoming user neither owns nor created it.
	DecisionArchivedUnowned Decision = "archived_unowned"
	// DecisionArchivedUnknown is the closed-world default for categories
	// the rule table does not know.
	DecisionArchivedUnknown Decision = "archived_unknown"
)

// Transferred reports whether the decision puts the card in front of the
// incoming user.
func (d Decision) Transferred() bool { return d == DecisionTransfer }

type rule struct {
	name     string
	matches  func(t TaskSnapshot, newUserID uint) bool
	decision Decision
}

// transferRules is the single authoritative rule table for shift-handover
// task continuity. Rules apply in order; the first match wins.
//
// Terminal work never resurfaces. Guest-facing and safety-relevant
// categories always carry over no matter who held them. Personal and
// administrative categories carry over only to the user who was assigned
// them or created them, so one person's to-do list does not flood the
// whole desk. Anything else stays archived.
var transferRules = []rule{
	{
		name: "terminal status",
		matches: func(t TaskSnapshot, _ uint) bool {
			return Models.IsTerminalStatus(t.Status)
		},
		decision: DecisionArchivedTerminal,
	},
	{
		name: "guest-facing category",
		matches: func(t TaskSnapshot, _ uint) bool {
			return t.Category == Models.CategoryIncident ||
				t.Category == Models.CategoryClientRequest
		},
		decision: DecisionTransfer,
	},
	{
		name: "owned personal task",
		matches: func(t TaskSnapshot, newUserID uint) bool {
			if !isPersonalCategory(t.Category) {
				return false
			}
			return (t.AssignedTo != nil && *t.AssignedTo == newUserID) ||
				(t.CreatedBy != nil && *t.CreatedBy == newUserID)
		},
		decision: DecisionTransfer,
	},
	{
		name: "unowned personal task",
		matches: func(t TaskSnapshot, _ uint) bool {
			return isPersonalCategory(t.Category)
		},
		decision: DecisionArchivedUnowned,
	},
}

func isPersonalCategory(category string) bool {
	return category == Models.CategoryFollowUp ||
		category == Models.CategoryInternalTask
}

// Classify runs the rule table for one archived task snapshot. It is a pure
// function of (status, category, assignedTo, createdBy, newUserID) and
// never fails: unmatched tasks fall through to the closed-world default.
func Classify(t TaskSnapshot, newUserID uint) Decision {
	for _, r := range transferRules {
		if r.matches(t, newUserID) {
			return r.decision
		}
	}
	return DecisionArchivedUnknown
}
