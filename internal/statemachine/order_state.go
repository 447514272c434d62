package statemachine

import (
	"errors"

	"github.com/botiapp/watertruck-backend/internal/models"
)

// Transition defines a valid status change and who can perform it
type Transition struct {
	From  string
	To    string
	Actor string // "customer" or "driver"
}

// validTransitions is the authoritative lifecycle definition.
// Drivers walk their orders forward and may cancel; customers may only cancel.
var validTransitions = []Transition{
	{From: models.OrderStatusPending, To: models.OrderStatusAccepted, Actor: models.RoleDriver},
	{From: models.OrderStatusAccepted, To: models.OrderStatusEnRoute, Actor: models.RoleDriver},
	{From: models.OrderStatusEnRoute, To: models.OrderStatusCompleted, Actor: models.RoleDriver},

	{From: models.OrderStatusPending, To: models.OrderStatusCancelled, Actor: models.RoleDriver},
	{From: models.OrderStatusAccepted, To: models.OrderStatusCancelled, Actor: models.RoleDriver},
	{From: models.OrderStatusEnRoute, To: models.OrderStatusCancelled, Actor: models.RoleDriver},

	{From: models.OrderStatusPending, To: models.OrderStatusCancelled, Actor: models.RoleCustomer},
	{From: models.OrderStatusAccepted, To: models.OrderStatusCancelled, Actor: models.RoleCustomer},
	{From: models.OrderStatusEnRoute, To: models.OrderStatusCancelled, Actor: models.RoleCustomer},
}

type transitionKey struct {
	From  string
	To    string
	Actor string
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status string) []string {
	var nexts []string
	seen := map[string]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition checks whether an actor may move an order between two states
func CanTransition(from, to, actor string) error {
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return errors.New(
		"invalid transition: " + from + " -> " + to +
			" is not allowed for " + actor + ". " +
			"Valid transitions from " + from + " are: " + describeValidFrom(from),
	)
}

func describeValidFrom(status string) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	result := ""
	for i, s := range nexts {
		if i > 0 {
			result += ", "
		}
		result += s
	}
	return result
}
