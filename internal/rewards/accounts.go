package rewards

import (
	"context"
	"slices"
	"strings"

	"github.com/notepid/roadwatch/internal/user"
)

// Signup creates a Bronze account with zero points. Usernames are compared
// case-sensitively.
func (s *Store) Signup(ctx context.Context, username, email, password string) (user.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Cheap rejection before paying for the hash; the check is repeated
	// inside the update.
	users, err := loadList[user.User](ctx, s.kv, KeyUsers)
	if err != nil {
		return user.Identity{}, err
	}
	if hasUsername(users, username) {
		return user.Identity{}, ErrDuplicateUsername
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return user.Identity{}, err
	}

	var u user.User
	err = updateList(ctx, s.kv, KeyUsers, func(users []user.User) ([]user.User, error) {
		if hasUsername(users, username) {
			return nil, ErrDuplicateUsername
		}
		now := s.timestamp()
		u = user.User{
			ID:           nextAfter(&s.ids, now, users, idOfUser),
			Username:     username,
			Email:        email,
			PasswordHash: hash,
			Points:       0,
			Level:        user.LevelBronze,
			CreatedAt:    now,
		}
		return append(users, u), nil
	})
	if err != nil {
		return user.Identity{}, err
	}

	s.log.Info("user signed up", "user_id", u.ID, "username", u.Username)
	return u.Identity(), nil
}

func hasUsername(users []user.User, username string) bool {
	return slices.ContainsFunc(users, func(u user.User) bool { return u.Username == username })
}

// Login returns the identity of the user whose username and password both match.
func (s *Store) Login(ctx context.Context, username, password string) (user.Identity, error) {
	users, err := loadList[user.User](ctx, s.kv, KeyUsers)
	if err != nil {
		return user.Identity{}, err
	}
	for _, u := range users {
		if u.Username != username {
			continue
		}
		if !s.hasher.Check(password, u.PasswordHash) {
			break
		}
		return u.Identity(), nil
	}
	s.log.Debug("login rejected", "username", username)
	return user.Identity{}, ErrInvalidCredentials
}

// Profile returns a user without the password hash.
func (s *Store) Profile(ctx context.Context, userID int64) (user.User, error) {
	users, err := loadList[user.User](ctx, s.kv, KeyUsers)
	if err != nil {
		return user.User{}, err
	}
	i := findUser(users, userID)
	if i < 0 {
		return user.User{}, ErrUserNotFound
	}
	return users[i].Public(), nil
}

// Users returns all users ordered by username, without password hashes.
func (s *Store) Users(ctx context.Context) ([]user.User, error) {
	users, err := loadList[user.User](ctx, s.kv, KeyUsers)
	if err != nil {
		return nil, err
	}
	out := make([]user.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	slices.SortStableFunc(out, func(a, b user.User) int {
		return strings.Compare(a.Username, b.Username)
	})
	return out, nil
}

// ResetPassword replaces a user's password.
func (s *Store) ResetPassword(ctx context.Context, userID int64, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.Profile(ctx, userID); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	err = updateList(ctx, s.kv, KeyUsers, func(users []user.User) ([]user.User, error) {
		i := findUser(users, userID)
		if i < 0 {
			return nil, ErrUserNotFound
		}
		users[i].PasswordHash = hash
		return users, nil
	})
	if err != nil {
		return err
	}

	s.log.Info("password reset", "user_id", userID)
	return nil
}
