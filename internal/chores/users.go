package chores

import (
	"context"

	"chorebot/internal/eventbus"
	"chorebot/internal/storage"
	"chorebot/pkg/logx"
)

// AddUser creates a custom user with id custom_user_<8 hex>.
func (s *Service) AddUser(ctx context.Context, name, avatar string) (storage.User, error) {
	name, err := validateName("user", name, MaxRoomNameLength)
	if err != nil {
		return storage.User{}, err
	}
	if avatar == "" {
		avatar = defaultUserAvatar
	}
	u := storage.User{ID: UserPrefixCustom + s.newID(), Name: name, Avatar: avatar, IsCustom: true}

	s.mu.Lock()
	s.state.Users = append(s.state.Users, u)
	_ = s.commitLocked(ctx, false)
	s.mu.Unlock()

	s.log.Info("user added", logx.String("user_id", u.ID), logx.String("name", u.Name))
	s.changed(ctx, eventbus.UserAdded, u)
	return u, nil
}

func (s *Service) UpdateUser(ctx context.Context, id string, name, avatar *string) (storage.User, error) {
	var newName string
	if name != nil {
		var err error
		if newName, err = validateName("user", *name, MaxRoomNameLength); err != nil {
			return storage.User{}, err
		}
	}

	s.mu.Lock()
	i := s.userIndexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return storage.User{}, notFound("user", id)
	}
	if name != nil {
		s.state.Users[i].Name = newName
	}
	if avatar != nil {
		s.state.Users[i].Avatar = *avatar
	}
	u := s.state.Users[i]
	_ = s.commitLocked(ctx, false)
	s.mu.Unlock()

	s.changed(ctx, eventbus.UserUpdated, u)
	return u, nil
}

// RemoveUser deletes a custom user. Chores assigned to them keep the id.
func (s *Service) RemoveUser(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.userIndexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return notFound("user", id)
	}
	u := s.state.Users[i]
	s.state.Users = append(s.state.Users[:i], s.state.Users[i+1:]...)
	_ = s.commitLocked(ctx, false)
	s.mu.Unlock()

	s.log.Info("user removed", logx.String("user_id", id), logx.String("name", u.Name))
	s.changed(ctx, eventbus.UserRemoved, u)
	return nil
}

func (s *Service) Users() []storage.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]storage.User(nil), s.state.Users...)
}

func (s *Service) userIndexLocked(id string) int {
	for i, u := range s.state.Users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

// userNameLocked resolves a display name: custom user name, else the id.
func (s *Service) userNameLocked(id string) string {
	if i := s.userIndexLocked(id); i >= 0 {
		return s.state.Users[i].Name
	}
	return id
}
