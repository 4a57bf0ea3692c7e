package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/partsdesk/storefront/internal/core/domain"
	"github.com/partsdesk/storefront/internal/core/ports"
)

const directoryPerPage = 6

// SearchUsers matches query case-insensitively against name or username.
func SearchUsers(users []domain.DirectoryUser, query string) []domain.DirectoryUser {
	q := normalize(query)
	out := make([]domain.DirectoryUser, 0, len(users))
	for _, u := range users {
		if q == "" || strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(strings.ToLower(u.Username), q) {
			out = append(out, u)
		}
	}
	return out
}

// DirectoryService is the admin user directory. After every successful
// mutation the whole directory is fetched again.
type DirectoryService struct {
	api      ports.DirectoryAPI
	session  *SessionService
	validate *validator.Validate
	log      zerolog.Logger

	mu    sync.Mutex
	users []domain.DirectoryUser
}

func NewDirectoryService(api ports.DirectoryAPI, session *SessionService, log zerolog.Logger) *DirectoryService {
	return &DirectoryService{api: api, session: session, validate: newValidator(), log: log}
}

// Reload fetches the directory. Failure leaves an empty list.
func (s *DirectoryService) Reload(ctx context.Context) ([]domain.DirectoryUser, error) {
	if _, err := s.session.Require(ctx, domain.RoleAdmin); err != nil {
		return nil, err
	}
	users, err := s.api.ListUsers(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("user directory fetch failed, showing empty directory")
		users = nil
	}
	s.mu.Lock()
	s.users = users
	s.mu.Unlock()
	return s.Users(), degrade(ctx, s.session, err)
}

// Add creates a user and refreshes the directory.
func (s *DirectoryService) Add(ctx context.Context, in domain.NewUser) error {
	in = in.Trimmed()
	if in.Role == "" {
		in.Role = domain.RoleUser
	}
	if err := validateStruct(s.validate, in); err != nil {
		return err
	}
	if _, err := s.session.Require(ctx, domain.RoleAdmin); err != nil {
		return err
	}
	if err := s.api.CreateUser(ctx, in); err != nil {
		s.log.Error().Err(err).Str("username", in.Username).Msg("create user failed")
		return s.session.Invalidate(ctx, fmt.Errorf("add user: %w", err))
	}
	s.log.Info().Str("username", in.Username).Str("role", in.Role).Msg("user created")
	return s.refetch(ctx)
}

// Update sends the non-empty fields of patch. A field cannot be cleared this
// way; an all-empty patch is rejected.
func (s *DirectoryService) Update(ctx context.Context, username string, patch domain.UserPatch) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.NewValidationError("username", "username is required")
	}
	fields := patch.Fields()
	if len(fields) == 0 {
		return domain.NewValidationError("", "Nothing to update")
	}
	if email, ok := fields["email"]; ok {
		if err := s.validate.Var(email, "email"); err != nil {
			return domain.NewValidationError("email", "Please enter a valid email address")
		}
	}
	if role, ok := fields["role"]; ok && role != domain.RoleAdmin && role != domain.RoleUser {
		return domain.NewValidationError("role", "role must be one of: user admin")
	}
	if _, err := s.session.Require(ctx, domain.RoleAdmin); err != nil {
		return err
	}

	if err := s.api.UpdateUser(ctx, username, fields); err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("update user failed")
		return s.session.Invalidate(ctx, fmt.Errorf("update user: %w", err))
	}
	s.log.Info().Str("username", username).Int("fields", len(fields)).Msg("user updated")
	return s.refetch(ctx)
}

// Remove deletes username and refreshes the directory.
func (s *DirectoryService) Remove(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.NewValidationError("username", "username is required")
	}
	if _, err := s.session.Require(ctx, domain.RoleAdmin); err != nil {
		return err
	}
	if err := s.api.DeleteUser(ctx, username); err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("delete user failed")
		return s.session.Invalidate(ctx, fmt.Errorf("remove user: %w", err))
	}
	s.log.Info().Str("username", username).Msg("user deleted")
	return s.refetch(ctx)
}

// Users returns the cached directory.
func (s *DirectoryService) Users() []domain.DirectoryUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.DirectoryUser, len(s.users))
	copy(out, s.users)
	return out
}

// Page returns one page of the users matching query.
func (s *DirectoryService) Page(query string, page int) domain.Page[domain.DirectoryUser] {
	return Paginate(SearchUsers(s.Users(), query), page, directoryPerPage)
}

// refetch replaces the cache after a mutation. The mutation already
// succeeded, so a failed fetch keeps the previous list.
func (s *DirectoryService) refetch(ctx context.Context) error {
	users, err := s.api.ListUsers(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("directory refresh after mutation failed")
		return degrade(ctx, s.session, err)
	}
	s.mu.Lock()
	s.users = users
	s.mu.Unlock()
	return nil
}
