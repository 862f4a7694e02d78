package models

import (
	"fmt"
	"unicode/utf8"
)

// EntityKind names the kinds of content a vote can point at.
type EntityKind string

const (
	KindChallenge EntityKind = "challenge"
	KindSolution  EntityKind = "solution"
	KindComment   EntityKind = "comment"
)

// ParseEntityKind accepts the wire names used by the API.
func ParseEntityKind(s string) (EntityKind, error) {
	switch k := EntityKind(s); k {
	case KindChallenge, KindSolution, KindComment:
		return k, nil
	default:
		return "", fmt.Errorf("unknown entity type %q", s)
	}
}

// Table is the table holding entities of this kind and their cached counters.
func (k EntityKind) Table() string {
	switch k {
	case KindChallenge:
		return "challenges"
	case KindSolution:
		return "solutions"
	case KindComment:
		return "comments"
	}
	return ""
}

// Column is the votes column referencing entities of this kind.
func (k EntityKind) Column() string {
	switch k {
	case KindChallenge:
		return "challenge_id"
	case KindSolution:
		return "solution_id"
	case KindComment:
		return "comment_id"
	}
	return ""
}

// MaxEntityIDLen is the width of the challenge, solution and comment id columns.
const MaxEntityIDLen = 36

// Target identifies the single entity a vote applies to.
type Target struct {
	Kind EntityKind `json:"entity_type"`
	ID   string     `json:"entity_id"`
}

// NewTarget validates kind and id together.
func NewTarget(kind, id string) (Target, error) {
	k, err := ParseEntityKind(kind)
	if err != nil {
		return Target{}, err
	}
	t := Target{Kind: k, ID: id}
	if err := t.Validate(); err != nil {
		return Target{}, err
	}
	return t, nil
}

func (t Target) Validate() error {
	if t.Kind.Table() == "" {
		return fmt.Errorf("unknown entity type %q", t.Kind)
	}
	if t.ID == "" {
		return fmt.Errorf("entity id is required")
	}
	if len(t.ID) > MaxEntityIDLen || !utf8.ValidString(t.ID) {
		return fmt.Errorf("malformed entity id")
	}
	return nil
}

func (t Target) String() string {
	return string(t.Kind) + ":" + t.ID
}
