package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "car-catalog/pkg/common/errors"
	"car-catalog/pkg/core/session"
	"car-catalog/pkg/core/user/model"
)

type fakeUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]model.User
	seq     int

	existsErr error
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]model.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return apperrors.ErrDuplicateEntry
	}
	f.seq++
	u.ID = "u-" + string(rune('0'+f.seq))
	f.byEmail[u.Email] = *u
	return nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEmail[email]
	if !ok {
		return model.User{}, apperrors.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, apperrors.ErrRecordNotFound
}

func (f *fakeUserRepo) IsEmailExists(_ context.Context, email string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byEmail[email]
	return ok, nil
}

func newTestService(repo *fakeUserRepo) *UserService {
	return NewUserService(repo, WithHashCost(bcrypt.MinCost))
}

func TestRegister_StoresHashNotPlaintext(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo)

	require.NoError(t, svc.Register(context.Background(), RegisterInput{Name: "Ana", Email: "ana@x.com", Password: "secret1"}))

	stored := repo.byEmail["ana@x.com"]
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))
}

func TestRegister_DefaultCostIsTen(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)

	require.NoError(t, svc.Register(context.Background(), RegisterInput{Name: "Ana", Email: "ana@x.com", Password: "secret1"}))

	cost, err := bcrypt.Cost([]byte(repo.byEmail["ana@x.com"].PasswordHash))
	require.NoError(t, err)
	assert.Equal(t, 10, cost)
}

func TestRegister_Conflict(t *testing.T) {
	svc := newTestService(newFakeUserRepo())
	ctx := context.Background()
	in := RegisterInput{Name: "Ana", Email: "ana@x.com", Password: "secret1"}

	require.NoError(t, svc.Register(ctx, in))
	err := svc.Register(ctx, in)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindConflict, appErr.Kind)
	assert.Contains(t, appErr.Message, "already exists")
}

func TestRegister_ConflictFromUniqueIndex(t *testing.T) {
	repo := newFakeUserRepo()
	repo.createErr = apperrors.ErrDuplicateEntry
	svc := newTestService(repo)

	err := svc.Register(context.Background(), RegisterInput{Name: "Ana", Email: "ana@x.com", Password: "secret1"})
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestService(newFakeUserRepo())

	err := svc.Register(context.Background(), RegisterInput{Email: "not-an-email", Password: "123"})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)
	assert.Equal(t, "Name is required, Invalid email address, Password must be at least 6 characters", appErr.Message)
}

func TestRegister_PasswordOverBcryptLimit(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo)

	err := svc.Register(context.Background(), RegisterInput{Name: "Ana", Email: "ana@x.com", Password: strings.Repeat("p", 80)})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)
	assert.Equal(t, "Password must be at most 72 bytes", appErr.Message)
	assert.Empty(t, repo.byEmail)

	// 72 字节刚好可用
	require.NoError(t, svc.Register(context.Background(), RegisterInput{Name: "Ana", Email: "ana@x.com", Password: strings.Repeat("p", 72)}))
}

func TestRegister_StoreFailure(t *testing.T) {
	repo := newFakeUserRepo()
	repo.existsErr = errors.New("db down")
	svc := newTestService(repo)

	err := svc.Register(context.Background(), RegisterInput{Name: "Ana", Email: "ana@x.com", Password: "secret1"})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindStore, appErr.Kind)
	assert.NotContains(t, appErr.Message, "db down")
}

func TestAuthenticate(t *testing.T) {
	svc := newTestService(newFakeUserRepo())
	ctx := context.Background()
	require.NoError(t, svc.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@x.com", Password: "secret1"}))

	p, err := svc.Authenticate(ctx, "ana@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", p.Name)
	assert.Equal(t, "ana@x.com", p.Email)
	assert.True(t, p.Authenticated())

	_, err = svc.Authenticate(ctx, "ana@x.com", "wrong-password")
	assert.Equal(t, apperrors.KindUnauthenticated, apperrors.KindOf(err))

	_, err = svc.Authenticate(ctx, "bob@x.com", "secret1")
	assert.Equal(t, apperrors.KindUnauthenticated, apperrors.KindOf(err))
}

func TestCurrent(t *testing.T) {
	svc := newTestService(newFakeUserRepo())
	ctx := context.Background()
	require.NoError(t, svc.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@x.com", Password: "secret1"}))
	p, err := svc.Authenticate(ctx, "ana@x.com", "secret1")
	require.NoError(t, err)

	profile, err := svc.Current(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, Profile{Name: "Ana", Email: "ana@x.com"}, profile)

	_, err = svc.Current(ctx, session.Principal{})
	assert.Equal(t, apperrors.KindUnauthenticated, apperrors.KindOf(err))
}
