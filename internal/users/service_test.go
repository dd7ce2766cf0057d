package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mkcamara/graniteledger-backend/pkg/config"
	"github.com/mkcamara/graniteledger-backend/pkg/db/models"
	"github.com/mkcamara/graniteledger-backend/pkg/enums"
	pkgerrors "github.com/mkcamara/graniteledger-backend/pkg/errors"
	"github.com/mkcamara/graniteledger-backend/pkg/security"
)

type fakeUserStore struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byEmail: map[string]*models.User{},
		byID:    map[uuid.UUID]*models.User{},
	}
}

func (f *fakeUserStore) Create(ctx context.Context, u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = time.Now()
	f.byEmail[u.Email] = u
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return f.byID[id], nil
}

func (f *fakeUserStore) List(ctx context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range f.byID {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserStore) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	u, ok := f.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Active = active
	return nil
}

func testCfg() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newUserService(t *testing.T) (Service, *fakeUserStore) {
	t.Helper()
	store := newFakeUserStore()
	svc, err := NewService(store, testCfg())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, store
}

func TestCreateAgent(t *testing.T) {
	svc, store := newUserService(t)

	got, err := svc.CreateAgent(context.Background(), CreateAgentInput{
		Email:    "  Aissata@Example.COM ",
		FullName: "Aissata Camara",
	})
	if err != nil {
		t.Fatalf("CreateAgent: %v", err)
	}

	if got.User.Email != "aissata@example.com" {
		t.Errorf("email = %q, want normalized lowercase", got.User.Email)
	}
	if got.User.Role != string(enums.UserRoleAgent) {
		t.Errorf("role = %q, want agent", got.User.Role)
	}
	if !got.User.MustChangePW {
		t.Error("provisioned accounts must require a password change")
	}
	if len(got.TempPassword) == 0 {
		t.Fatal("temp password must be returned once")
	}

	stored := store.byEmail["aissata@example.com"]
	if stored.PasswordHash == got.TempPassword {
		t.Fatal("password must be stored hashed")
	}
	ok, err := security.VerifyPassword(got.TempPassword, stored.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("temp password must verify against the stored hash, ok=%v err=%v", ok, err)
	}
}

func TestCreateAgentDuplicateEmail(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	if _, err := svc.CreateAgent(ctx, CreateAgentInput{Email: "a@b.cd", FullName: "A"}); err != nil {
		t.Fatalf("CreateAgent: %v", err)
	}
	if _, err := svc.CreateAgent(ctx, CreateAgentInput{Email: "A@B.CD", FullName: "A"}); pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateAgentValidation(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	if _, err := svc.CreateAgent(ctx, CreateAgentInput{FullName: "A"}); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Errorf("missing email: expected validation error, got %v", err)
	}
	if _, err := svc.CreateAgent(ctx, CreateAgentInput{Email: "a@b.cd"}); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Errorf("missing name: expected validation error, got %v", err)
	}
}

func TestSetActive(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	created, err := svc.CreateAgent(ctx, CreateAgentInput{Email: "a@b.cd", FullName: "A"})
	if err != nil {
		t.Fatalf("CreateAgent: %v", err)
	}

	dto, err := svc.SetActive(ctx, created.User.ID, false)
	if err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if dto.Active {
		t.Error("account should be deactivated")
	}

	if _, err := svc.SetActive(ctx, uuid.New(), false); pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}
