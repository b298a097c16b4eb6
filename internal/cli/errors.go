package cli

import (
	"errors"
	"fmt"

	"todo-cli/internal/store"
)

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

type ambiguousIDError struct {
	ref string
}

func (e ambiguousIDError) Error() string {
	return fmt.Sprintf("ambiguous task id: %s (use more characters; `todo list` shows full ids)", e.ref)
}

// resolveTaskID maps a user-typed id or unique prefix to a task id.
func resolveTaskID(st *store.Store, ref string) (string, error) {
	id, err := st.Resolve(ref)
	switch {
	case err == nil:
		return id, nil
	case errors.Is(err, store.ErrAmbiguousID):
		return "", ambiguousIDError{ref: ref}
	case errors.Is(err, store.ErrTaskNotFound):
		return "", errNotFound("task", ref)
	default:
		return "", err
	}
}
