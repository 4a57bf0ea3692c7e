package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/partsdesk/storefront/internal/core/domain"
)

type stubDirectoryAPI struct {
	users     []domain.DirectoryUser
	listCalls int
	mutateErr error
	updates   []map[string]string
	deleted   []string
}

func (d *stubDirectoryAPI) ListUsers(context.Context) ([]domain.DirectoryUser, error) {
	d.listCalls++
	return append([]domain.DirectoryUser(nil), d.users...), nil
}

func (d *stubDirectoryAPI) CreateUser(_ context.Context, u domain.NewUser) error {
	if d.mutateErr != nil {
		return d.mutateErr
	}
	d.users = append(d.users, domain.DirectoryUser{Name: u.Name, Username: u.Username, Role: u.Role})
	return nil
}

func (d *stubDirectoryAPI) UpdateUser(_ context.Context, username string, fields map[string]string) error {
	if d.mutateErr != nil {
		return d.mutateErr
	}
	d.updates = append(d.updates, fields)
	for i := range d.users {
		if d.users[i].Username == username {
			if v, ok := fields["name"]; ok {
				d.users[i].Name = v
			}
		}
	}
	return nil
}

func (d *stubDirectoryAPI) DeleteUser(_ context.Context, username string) error {
	if d.mutateErr != nil {
		return d.mutateErr
	}
	d.deleted = append(d.deleted, username)
	for i := range d.users {
		if d.users[i].Username == username {
			d.users = append(d.users[:i], d.users[i+1:]...)
			break
		}
	}
	return nil
}

func newDirectory(t *testing.T, api *stubDirectoryAPI) *DirectoryService {
	t.Helper()
	session, _ := newSignedIn(t, testAdmin)
	return NewDirectoryService(api, session, zerolog.Nop())
}

var validNewUser = domain.NewUser{
	Name: "Carol", Company: "Acme", Address: "2 Side St", Email: "carol@acme.test",
	Phone: "555-0101", Username: "carol", Password: "pw",
}

func TestSearchUsers(t *testing.T) {
	users := []domain.DirectoryUser{
		{Name: "Alice Smith", Username: "asmith"},
		{Name: "Bob", Username: "bobby_alpha"},
		{Name: "Carol", Username: "carol"},
	}
	if got := SearchUsers(users, "ALPHA"); len(got) != 1 || got[0].Username != "bobby_alpha" {
		t.Errorf("username match: %+v", got)
	}
	if got := SearchUsers(users, "smith"); len(got) != 1 {
		t.Errorf("name match: %+v", got)
	}
	if got := SearchUsers(users, ""); len(got) != 3 {
		t.Errorf("empty query must return all, got %d", len(got))
	}
}

func TestDirectoryService_MutationsRefetch(t *testing.T) {
	ctx := context.Background()
	api := &stubDirectoryAPI{users: []domain.DirectoryUser{{Name: "Dave", Username: "dave"}}}
	d := newDirectory(t, api)

	if _, err := d.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if err := d.Add(ctx, validNewUser); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(d.Users()) != 2 {
		t.Errorf("expected 2 users after add, got %d", len(d.Users()))
	}
	if err := d.Update(ctx, "dave", domain.UserPatch{Name: " David ", Phone: "  "}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := d.Remove(ctx, "carol"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if api.listCalls != 4 {
		t.Errorf("expected a full fetch after each mutation, got %d fetches", api.listCalls)
	}
	users := d.Users()
	if len(users) != 1 || users[0].Name != "David" {
		t.Errorf("users = %+v", users)
	}
}

func TestDirectoryService_UpdateSendsOnlyNonEmptyFields(t *testing.T) {
	api := &stubDirectoryAPI{users: []domain.DirectoryUser{{Username: "dave"}}}
	d := newDirectory(t, api)

	// An empty field cannot clear the stored value; it is simply not sent.
	err := d.Update(context.Background(), "dave", domain.UserPatch{Company: "New Co", Email: "", Address: "   "})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	sent := api.updates[0]
	if len(sent) != 1 || sent["company"] != "New Co" {
		t.Errorf("sent = %v", sent)
	}

	if err := d.Update(context.Background(), "dave", domain.UserPatch{}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("all-empty patch: expected ErrValidation, got %v", err)
	}
	if err := d.Update(context.Background(), "dave", domain.UserPatch{Email: "bad"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("bad email: expected ErrValidation, got %v", err)
	}
}

func TestDirectoryService_FailureLeavesState(t *testing.T) {
	ctx := context.Background()
	api := &stubDirectoryAPI{users: []domain.DirectoryUser{{Username: "dave"}}}
	d := newDirectory(t, api)
	_, _ = d.Reload(ctx)
	api.mutateErr = &domain.RemoteError{Op: "users delete", Status: 500}

	if err := d.Remove(ctx, "dave"); !errors.Is(err, domain.ErrRemote) {
		t.Fatalf("expected ErrRemote, got %v", err)
	}
	if len(d.Users()) != 1 || api.listCalls != 1 {
		t.Errorf("failed mutation must not refetch or change state (users=%d fetches=%d)", len(d.Users()), api.listCalls)
	}
}

func TestDirectoryService_AddValidates(t *testing.T) {
	api := &stubDirectoryAPI{}
	d := newDirectory(t, api)
	in := validNewUser
	in.Company = ""
	if err := d.Add(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	in = validNewUser
	in.Phone = "   "
	if err := d.Add(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("blank phone: expected ErrValidation, got %v", err)
	}
	in = validNewUser
	in.Role = "owner"
	if err := d.Add(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("bad role: expected ErrValidation, got %v", err)
	}
}

func TestDirectoryService_Page(t *testing.T) {
	api := &stubDirectoryAPI{}
	for i := 0; i < 8; i++ {
		api.users = append(api.users, domain.DirectoryUser{Name: "User", Username: string(rune('a' + i))})
	}
	d := newDirectory(t, api)
	_, _ = d.Reload(context.Background())

	p := d.Page("", 2)
	if p.TotalPages != 2 || len(p.Items) != 2 {
		t.Errorf("page 2: %+v", p)
	}
}

func TestDirectoryService_NonAdminForbidden(t *testing.T) {
	session, _ := newSignedIn(t, testUser)
	d := NewDirectoryService(&stubDirectoryAPI{}, session, zerolog.Nop())
	if err := d.Remove(context.Background(), "dave"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}
