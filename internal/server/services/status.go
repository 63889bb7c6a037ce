package services

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/server/config"
)

// DefaultOrderStatuses is the status vocabulary used when none is configured.
var DefaultOrderStatuses = []string{"pending", "processing", "shipped", "delivered", "cancelled"}

// defaultTransitions is the strict-mode graph over DefaultOrderStatuses.
// delivered and cancelled are terminal.
var defaultTransitions = map[string][]string{
	"pending":    {"processing", "shipped", "cancelled"},
	"processing": {"shipped", "cancelled"},
	"shipped":    {"delivered"},
}

// StatusPolicy decides which order statuses exist, which one new orders get
// and, in strict mode, which changes are allowed.
type StatusPolicy struct {
	statuses    []string
	initial     string
	transitions map[string][]string
}

// NewStatusPolicy validates the configured vocabulary. Statuses are compared
// case-insensitively after trimming. transitions is only consulted when
// strict is set; nil selects the built-in graph. A strict graph may only name
// configured statuses and must leave the initial status.
func NewStatusPolicy(statuses []string, initial string, strict bool, transitions map[string][]string) (*StatusPolicy, error) {
	norm := make([]string, 0, len(statuses))
	for _, s := range statuses {
		s = normalizeStatus(s)
		if s == "" || slices.Contains(norm, s) {
			continue
		}
		norm = append(norm, s)
	}
	if len(norm) == 0 {
		return nil, fmt.Errorf("order status policy: no statuses configured")
	}

	initial = normalizeStatus(initial)
	if !slices.Contains(norm, initial) {
		return nil, fmt.Errorf("order status policy: initial status %q is not in %v", initial, norm)
	}

	p := &StatusPolicy{statuses: norm, initial: initial}
	if strict {
		if transitions == nil {
			transitions = defaultTransitions
		}
		graph, err := normalizeTransitions(transitions, norm)
		if err != nil {
			return nil, err
		}
		if len(norm) > 1 && len(graph[initial]) == 0 {
			return nil, fmt.Errorf("order status policy: initial status %q has no outgoing transitions", initial)
		}
		p.transitions = graph
	}
	return p, nil
}

// normalizeTransitions rejects graphs that mention statuses outside the set.
func normalizeTransitions(transitions map[string][]string, statuses []string) (map[string][]string, error) {
	graph := make(map[string][]string, len(transitions))
	for from, tos := range transitions {
		from = normalizeStatus(from)
		if !slices.Contains(statuses, from) {
			return nil, fmt.Errorf("order status policy: transition from unknown status %q", from)
		}
		for _, to := range tos {
			to = normalizeStatus(to)
			if !slices.Contains(statuses, to) {
				return nil, fmt.Errorf("order status policy: transition %q -> unknown status %q", from, to)
			}
			graph[from] = append(graph[from], to)
		}
	}
	return graph, nil
}

// NewStatusPolicyFromConfig builds the policy from server configuration.
func NewStatusPolicyFromConfig(cfg *config.Config) (*StatusPolicy, error) {
	statuses := cfg.OrderStatuses
	if len(statuses) == 0 {
		statuses = DefaultOrderStatuses
	}
	initial := cfg.InitialOrderStatus
	if initial == "" {
		initial = statuses[0]
	}
	return NewStatusPolicy(statuses, initial, cfg.StrictStatusTransitions, cfg.OrderTransitions)
}

// DefaultStatusPolicy is the permissive policy over DefaultOrderStatuses.
func DefaultStatusPolicy() *StatusPolicy {
	p, err := NewStatusPolicy(DefaultOrderStatuses, "pending", false, nil)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *StatusPolicy) Initial() string { return p.initial }

func (p *StatusPolicy) Statuses() []string { return slices.Clone(p.statuses) }

func (p *StatusPolicy) Strict() bool { return p.transitions != nil }

// Normalize returns the canonical form of status or common.ErrorUnknownStatus.
func (p *StatusPolicy) Normalize(status string) (string, error) {
	s := normalizeStatus(status)
	if !slices.Contains(p.statuses, s) {
		return "", common.ErrorUnknownStatus
	}
	return s, nil
}

// CheckTransition reports whether an order in status from may move to to.
// Setting the current status again is always allowed.
func (p *StatusPolicy) CheckTransition(from, to string) error {
	to, err := p.Normalize(to)
	if err != nil {
		return err
	}
	from = normalizeStatus(from)
	if !p.Strict() || from == to {
		return nil
	}
	if !slices.Contains(p.transitions[from], to) {
		return common.ErrorInvalidTransition
	}
	return nil
}

func normalizeStatus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
