package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrAmbiguousID  = errors.New("ambiguous task id")
)

func newTaskID() string {
	return uuid.NewString()
}

// Resolve maps a user-supplied reference to a task id. The reference may be
// a full id or a prefix that matches exactly one task.
func (s *Store) Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: empty id", ErrTaskNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(ref) >= 0 {
		return ref, nil
	}
	var matches []string
	for _, t := range s.tasks {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrTaskNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %s matches %d tasks", ErrAmbiguousID, ref, len(matches))
	}
}
