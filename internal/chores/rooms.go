package chores

import (
	"context"
	"strings"

	"chorebot/internal/eventbus"
	"chorebot/internal/storage"
	"chorebot/pkg/logx"
)

// AddRoom creates a custom room with id custom_<8 hex>.
func (s *Service) AddRoom(ctx context.Context, name, icon string) (storage.Room, error) {
	name, err := validateName("room", name, MaxRoomNameLength)
	if err != nil {
		return storage.Room{}, err
	}
	if icon == "" {
		icon = defaultRoomIcon
	}
	return s.insertRoom(ctx, storage.Room{ID: RoomPrefixCustom + s.newID(), Name: name, Icon: icon, IsCustom: true})
}

// AddArea registers an externally managed area as room area_<slug>. Adding an
// existing area renames it.
func (s *Service) AddArea(ctx context.Context, slug, name, icon string) (storage.Room, error) {
	slug = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(slug)), RoomPrefixArea)
	if slug == "" {
		return storage.Room{}, validationf("area id cannot be empty")
	}
	name, err := validateName("room", name, MaxRoomNameLength)
	if err != nil {
		return storage.Room{}, err
	}
	if icon == "" {
		icon = defaultRoomIcon
	}
	id := RoomPrefixArea + slug

	s.mu.Lock()
	if i := s.roomIndexLocked(id); i >= 0 {
		s.state.Rooms[i].Name, s.state.Rooms[i].Icon = name, icon
		room := s.state.Rooms[i]
		_ = s.commitLocked(ctx, false)
		s.mu.Unlock()
		s.changed(ctx, eventbus.RoomUpdated, room)
		return room, nil
	}
	s.mu.Unlock()
	return s.insertRoom(ctx, storage.Room{ID: id, Name: name, Icon: icon})
}

func (s *Service) insertRoom(ctx context.Context, room storage.Room) (storage.Room, error) {
	s.mu.Lock()
	s.state.Rooms = append(s.state.Rooms, room)
	_ = s.commitLocked(ctx, false)
	s.mu.Unlock()

	s.log.Info("room added", logx.String("room_id", room.ID), logx.String("name", room.Name))
	s.changed(ctx, eventbus.RoomAdded, room)
	return room, nil
}

// UpdateRoom changes the name and/or icon; nil leaves a field alone.
func (s *Service) UpdateRoom(ctx context.Context, id string, name, icon *string) (storage.Room, error) {
	var newName string
	if name != nil {
		var err error
		if newName, err = validateName("room", *name, MaxRoomNameLength); err != nil {
			return storage.Room{}, err
		}
	}

	s.mu.Lock()
	i := s.roomIndexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return storage.Room{}, notFound("room", id)
	}
	if name != nil {
		s.state.Rooms[i].Name = newName
	}
	if icon != nil {
		s.state.Rooms[i].Icon = *icon
	}
	room := s.state.Rooms[i]
	_ = s.commitLocked(ctx, false)
	s.mu.Unlock()

	s.changed(ctx, eventbus.RoomUpdated, room)
	return room, nil
}

// RemoveRoom deletes the room and every chore in it. It returns the number of
// chores removed.
func (s *Service) RemoveRoom(ctx context.Context, id string) (int, error) {
	s.mu.Lock()
	i := s.roomIndexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return 0, notFound("room", id)
	}
	room := s.state.Rooms[i]
	s.state.Rooms = append(s.state.Rooms[:i], s.state.Rooms[i+1:]...)

	kept := s.state.Chores[:0]
	removed := 0
	for _, c := range s.state.Chores {
		if c.RoomID == id {
			s.log.Info("removing chore with its room", logx.String("chore_id", c.ID), logx.String("name", c.Name))
			removed++
			continue
		}
		kept = append(kept, c)
	}
	s.state.Chores = kept
	err := s.commitLocked(ctx, true)
	s.mu.Unlock()

	if removed > 0 {
		s.log.Warn("room removed with its chores", logx.String("room", room.Name), logx.Int("chores", removed))
	}
	s.changed(ctx, eventbus.RoomRemoved, room)
	return removed, err
}

func (s *Service) Rooms() []storage.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]storage.Room(nil), s.state.Rooms...)
}

func (s *Service) roomIndexLocked(id string) int {
	for i, r := range s.state.Rooms {
		if r.ID == id {
			return i
		}
	}
	return -1
}
