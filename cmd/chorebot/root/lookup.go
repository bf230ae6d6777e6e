package root

import (
	"fmt"
	"strings"

	"chorebot/internal/chores"
	"chorebot/internal/storage"
)

// findChore matches ref against chore ids first, then names
// (case-insensitive). Completed one-off chores are included.
func findChore(svc *chores.Service, ref string) (storage.Chore, error) {
	ref = strings.TrimSpace(ref)
	var matches []storage.Chore
	for _, c := range svc.Chores() {
		if c.ID == ref {
			return c, nil
		}
		if strings.EqualFold(c.Name, ref) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return storage.Chore{}, fmt.Errorf("chore %q: %w", ref, chores.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return storage.Chore{}, fmt.Errorf("%d chores are named %q, use the id", len(matches), ref)
	}
}

func findRoom(svc *chores.Service, ref string) (storage.Room, error) {
	ref = strings.TrimSpace(ref)
	for _, r := range svc.Rooms() {
		if r.ID == ref || strings.EqualFold(r.Name, ref) {
			return r, nil
		}
	}
	return storage.Room{}, fmt.Errorf("room %q: %w", ref, chores.ErrNotFound)
}

// findUser resolves ref to a user id. The empty string stays empty.
func findUser(svc *chores.Service, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", nil
	}
	for _, u := range svc.Users() {
		if u.ID == ref || strings.EqualFold(u.Name, ref) {
			return u.ID, nil
		}
	}
	return "", fmt.Errorf("user %q: %w", ref, chores.ErrNotFound)
}

func roomNames(svc *chores.Service) map[string]string {
	m := map[string]string{}
	for _, r := range svc.Rooms() {
		m[r.ID] = r.Name
	}
	return m
}

func userNames(svc *chores.Service) map[string]string {
	m := map[string]string{}
	for _, u := range svc.Users() {
		m[u.ID] = u.Name
	}
	return m
}

func describeRule(c storage.Chore) string {
	rule, err := c.Config.Rule()
	if err != nil {
		return string(c.Frequency)
	}
	return rule.String()
}
