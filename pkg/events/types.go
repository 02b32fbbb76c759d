// Package events maps registry lifecycle events to broker messages and publishes them.
package events

import (
	"fmt"
	"strings"
)

// Topics the registry events are published on. The set is fixed.
const (
	TopicRegisterAAS      = "BaSyxRegistry_registeredAAS"
	TopicRegisterSubmodel = "BaSyxRegistry_registeredSubmodel"
	TopicDeleteAAS        = "BaSyxRegistry_deletedAAS"
	TopicDeleteSubmodel   = "BaSyxRegistry_deletedSubmodel"
)

// Kind is the kind of a registry lifecycle event.
type Kind int

const (
	KindAASRegistered Kind = iota + 1
	KindSubmodelRegistered
	KindAASDeleted
	KindSubmodelDeleted
)

var kindNames = map[Kind]string{
	KindAASRegistered:      "aasRegistered",
	KindSubmodelRegistered: "submodelRegistered",
	KindAASDeleted:         "aasDeleted",
	KindSubmodelDeleted:    "submodelDeleted",
}

// String returns the callback name of the kind, e.g. "aasRegistered".
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String. Matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(name, s) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown event kind %q", s)
}

// Topic returns the topic events of this kind are published on, or "" for an unknown kind.
func (k Kind) Topic() string {
	switch k {
	case KindAASRegistered:
		return TopicRegisterAAS
	case KindSubmodelRegistered:
		return TopicRegisterSubmodel
	case KindAASDeleted:
		return TopicDeleteAAS
	case KindSubmodelDeleted:
		return TopicDeleteSubmodel
	default:
		return ""
	}
}

// HasSubmodel reports whether events of this kind carry a submodel identifier.
func (k Kind) HasSubmodel() bool {
	return k == KindSubmodelRegistered || k == KindSubmodelDeleted
}

// Event is a single registry lifecycle event. SubmodelID is only set for submodel kinds.
type Event struct {
	Kind       Kind
	AASID      string
	SubmodelID string
}

// Payload builds the message payload: the AAS identifier for AAS events and
// "(aasID,submodelID)" for submodel events. Empty identifiers are rejected.
func (e Event) Payload() (string, error) {
	if e.Kind.Topic() == "" {
		return "", newNotifyError(CodeSerialization, fmt.Sprintf("unknown event kind %d", int(e.Kind)), nil)
	}
	if e.AASID == "" {
		return "", newNotifyError(CodeSerialization, fmt.Sprintf("%s: aas id is empty", e.Kind), nil)
	}
	if !e.Kind.HasSubmodel() {
		return e.AASID, nil
	}
	if e.SubmodelID == "" {
		return "", newNotifyError(CodeSerialization, fmt.Sprintf("%s: submodel id is empty", e.Kind), nil)
	}
	return ConcatAASSubmodelID(e.AASID, e.SubmodelID), nil
}

// ConcatAASSubmodelID encodes an identifier pair as "(aasID,smID)". Commas and parentheses
// inside the identifiers are not escaped, so such pairs cannot be split unambiguously.
func ConcatAASSubmodelID(aasID, smID string) string {
	return "(" + aasID + "," + smID + ")"
}
