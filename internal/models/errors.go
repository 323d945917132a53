package models

import (
	"errors"
	"fmt"
	"strings"
)

// Error numbers reported to callers as errorNum.
const (
	ErrNumBadParameter                   = 10
	ErrNumDocumentNotFound               = 1202
	ErrNumCollectionNotFound             = 1203
	ErrNumInvalidDocumentHandle          = 1205
	ErrNumDuplicateName                  = 1207
	ErrNumUniqueConstraintViolated       = 1210
	ErrNumCursorExhausted                = 1600
	ErrNumCannotDeleteVertex             = 1905
	ErrNumInvalidRelation                = 1906
	ErrNumEdgeRemovalFailed              = 1908
	ErrNumCollectionMultiUse             = 1920
	ErrNumConflictingGraphDefinition     = 1921
	ErrNumInvalidName                    = 1922
	ErrNumNoEdgeDefinitions              = 1923
	ErrNumGraphNotFound                  = 1924
	ErrNumDuplicateGraph                 = 1925
	ErrNumVertexCollectionNotInGraph     = 1926
	ErrNumWrongCollectionType            = 1927
	ErrNumNotInOrphanCollection          = 1928
	ErrNumCollectionUsedInEdgeDefinition = 1929
	ErrNumEdgeCollectionNotUsed          = 1930
	ErrNumInvalidParameter               = 1936
	ErrNumCollectionUsedInOrphans        = 1938
)

// GraphError is the typed error surfaced to callers as an {errorNum, errorMessage} pair.
// Two GraphErrors match under errors.Is when their numbers are equal.
type GraphError struct {
	Num     int
	Message string
}

func (e *GraphError) Error() string { return e.Message }

// Is matches any GraphError with the same number.
func (e *GraphError) Is(target error) bool {
	var t *GraphError
	if !errors.As(target, &t) {
		return false
	}
	return t.Num == e.Num
}

// Sentinels for errors.Is checks.
var (
	ErrBadParameter                   = &GraphError{Num: ErrNumBadParameter, Message: "bad parameter"}
	ErrDocumentNotFound               = &GraphError{Num: ErrNumDocumentNotFound, Message: "document not found"}
	ErrCollectionNotFound             = &GraphError{Num: ErrNumCollectionNotFound, Message: "collection or view not found"}
	ErrInvalidDocumentHandle          = &GraphError{Num: ErrNumInvalidDocumentHandle, Message: "illegal document handle"}
	ErrDuplicateName                  = &GraphError{Num: ErrNumDuplicateName, Message: "duplicate name"}
	ErrUniqueConstraintViolated       = &GraphError{Num: ErrNumUniqueConstraintViolated, Message: "unique constraint violated"}
	ErrCursorExhausted                = &GraphError{Num: ErrNumCursorExhausted, Message: "cursor exhausted"}
	ErrCannotDeleteVertex             = &GraphError{Num: ErrNumCannotDeleteVertex, Message: "could not delete vertex"}
	ErrInvalidRelation                = &GraphError{Num: ErrNumInvalidRelation, Message: "invalid edge"}
	ErrEdgeRemovalFailed              = &GraphError{Num: ErrNumEdgeRemovalFailed, Message: "could not remove edge"}
	ErrCollectionMultiUse             = &GraphError{Num: ErrNumCollectionMultiUse, Message: "multi use of edge collection in edge def"}
	ErrConflictingGraphDefinition     = &GraphError{Num: ErrNumConflictingGraphDefinition, Message: "edge collection already used in edge def"}
	ErrInvalidName                    = &GraphError{Num: ErrNumInvalidName, Message: "missing graph name"}
	ErrNoEdgeDefinitions              = &GraphError{Num: ErrNumNoEdgeDefinitions, Message: "malformed edge definition"}
	ErrGraphNotFound                  = &GraphError{Num: ErrNumGraphNotFound, Message: "graph not found"}
	ErrDuplicateGraph                 = &GraphError{Num: ErrNumDuplicateGraph, Message: "graph already exists"}
	ErrVertexCollectionNotInGraph     = &GraphError{Num: ErrNumVertexCollectionNotInGraph, Message: "vertex collection does not exist or is not part of the graph"}
	ErrWrongCollectionType            = &GraphError{Num: ErrNumWrongCollectionType, Message: "not a vertex collection"}
	ErrNotInOrphanCollection          = &GraphError{Num: ErrNumNotInOrphanCollection, Message: "not in orphan collection"}
	ErrCollectionUsedInEdgeDefinition = &GraphError{Num: ErrNumCollectionUsedInEdgeDefinition, Message: "collection already used in edge def"}
	ErrEdgeCollectionNotUsed          = &GraphError{Num: ErrNumEdgeCollectionNotUsed, Message: "edge collection not used in graph"}
	ErrInvalidParameter               = &GraphError{Num: ErrNumInvalidParameter, Message: "Invalid parameter type."}
	ErrCollectionUsedInOrphans        = &GraphError{Num: ErrNumCollectionUsedInOrphans, Message: "collection used in orphans"}
)

func newError(base *GraphError, format string, args ...any) *GraphError {
	return &GraphError{Num: base.Num, Message: fmt.Sprintf(format, args...)}
}

// ErrorNum returns the errorNum carried by err, or 0 when err is not a GraphError.
func ErrorNum(err error) int {
	var ge *GraphError
	if errors.As(err, &ge) {
		return ge.Num
	}
	return 0
}

// GraphNotFound reports a lookup of an unknown graph.
func GraphNotFound(name string) error {
	return newError(ErrGraphNotFound, "graph '%s' not found", name)
}

// DuplicateGraph reports a create for a name that is already registered.
func DuplicateGraph(name string) error {
	return newError(ErrDuplicateGraph, "graph '%s' already exists", name)
}

// InvalidName reports an empty or blank name for the given subject.
func InvalidName(subject string) error {
	return newError(ErrInvalidName, "%s must be a non-empty string", subject)
}

// NoEdgeDefinitions reports a graph definition without relations.
func NoEdgeDefinitions(name string) error {
	return newError(ErrNoEdgeDefinitions, "graph '%s' needs at least one edge definition", name)
}

// ConflictingGraphDefinition reports a structural collision with an existing graph.
func ConflictingGraphDefinition(detail string) error {
	return newError(ErrConflictingGraphDefinition, "conflicting graph definition: %s", detail)
}

// InvalidRelation reports an edge write between vertex collections its relation does not allow.
func InvalidRelation(fromID, toID string) error {
	return newError(ErrInvalidRelation, "Edge is not allowed between %s and %s", fromID, toID)
}

// BadRestriction reports restriction names that are not edge collections of the graph.
// Names appear in the order supplied, joined by " and ".
func BadRestriction(unknown []string) error {
	return newError(ErrBadParameter, "edge collections: %s are not known to the graph", strings.Join(unknown, " and "))
}

// InvalidParameter reports a malformed argument.
func InvalidParameter(detail string) error {
	return newError(ErrInvalidParameter, "Invalid parameter type. %s", detail)
}

// DocumentNotFound reports a missing document.
func DocumentNotFound(id string) error {
	return newError(ErrDocumentNotFound, "document '%s' not found", id)
}

// CollectionNotFound reports a missing collection.
func CollectionNotFound(name string) error {
	return newError(ErrCollectionNotFound, "collection '%s' not found", name)
}

// InvalidDocumentHandle reports an id that is not of the form collection/key.
func InvalidDocumentHandle(id string) error {
	return newError(ErrInvalidDocumentHandle, "illegal document handle '%s'", id)
}

// DuplicateName reports a collection create for a name that is taken.
func DuplicateName(name string) error {
	return newError(ErrDuplicateName, "collection '%s' already exists", name)
}

// UniqueConstraintViolated reports a write that collides with an existing key.
func UniqueConstraintViolated(id string) error {
	return newError(ErrUniqueConstraintViolated, "unique constraint violated for '%s'", id)
}

// CannotDeleteVertex reports a vertex remove rejected by the store.
func CannotDeleteVertex(id string, cause error) error {
	if cause == nil {
		return newError(ErrCannotDeleteVertex, "could not delete vertex '%s'", id)
	}
	return fmt.Errorf("%w: %w", newError(ErrCannotDeleteVertex, "could not delete vertex '%s'", id), cause)
}

// EdgeRemovalFailed reports incident edges left behind by a vertex removal.
func EdgeRemovalFailed(vertexID string, failed int, cause error) error {
	return fmt.Errorf("%w: %w", newError(ErrEdgeRemovalFailed, "removed vertex '%s' but %d incident edge(s) could not be removed", vertexID, failed), cause)
}

// VertexCollectionNotInGraph reports a vertex collection that is not part of the graph.
func VertexCollectionNotInGraph(collection string) error {
	return newError(ErrVertexCollectionNotInGraph, "vertex collection '%s' is not part of the graph", collection)
}

// EdgeCollectionNotUsed reports an edge collection that is not part of the graph.
func EdgeCollectionNotUsed(collection string) error {
	return newError(ErrEdgeCollectionNotUsed, "edge collection '%s' is not used in the graph", collection)
}

// WrongCollectionType reports a collection whose type does not fit its role.
func WrongCollectionType(collection string, want CollectionType) error {
	return newError(ErrWrongCollectionType, "collection '%s' is not a %s collection", collection, want)
}
