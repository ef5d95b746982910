package storage

// The Redis online-users set mirrors the in-memory connection registry
// for diagnostics and the ops CLI. The registry stays the source of
// truth for routing; this set is best effort only.

const onlineUsersKey = "online_users"

// AddOnlineUser marks a user online in the Redis mirror.
func (s *Service) AddOnlineUser(userID string) error {
	return s.Redis.SAdd(s.Ctx, onlineUsersKey, userID).Err()
}

// RemoveOnlineUser clears a user from the Redis mirror.
func (s *Service) RemoveOnlineUser(userID string) error {
	return s.Redis.SRem(s.Ctx, onlineUsersKey, userID).Err()
}

// GetOnlineUsers returns a snapshot of the mirrored online set.
func (s *Service) GetOnlineUsers() ([]string, error) {
	return s.Redis.SMembers(s.Ctx, onlineUsersKey).Result()
}
