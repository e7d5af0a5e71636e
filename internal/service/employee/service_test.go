package employee

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/employee"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/user"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/cache"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/jwt"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	employee.EmployeeRepository
	rows     map[string]employee.Employee
	getCalls int
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	f.getCalls++
	e, ok := f.rows[id]
	if !ok {
		return employee.Employee{}, pgx.ErrNoRows
	}
	return e, nil
}

func (f *fakeRepo) List(_ context.Context, companyID string, limit, offset int) ([]employee.Employee, int64, error) {
	var out []employee.Employee
	for _, e := range f.rows {
		if e.CompanyID == companyID {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) UpdatePrivateInfo(_ context.Context, id string, fields map[string]*string) (employee.Employee, error) {
	e := f.rows[id]
	for k, v := range fields {
		switch k {
		case employee.FieldAboutJob:
			e.AboutJob = v
		case employee.FieldHobbies:
			e.Hobbies = v
		}
	}
	f.rows[id] = e
	return e, nil
}

func (f *fakeRepo) UpdateAvatar(_ context.Context, id string, url, key *string) (employee.Employee, error) {
	e := f.rows[id]
	e.AvatarURL, e.AvatarKey = url, key
	f.rows[id] = e
	return e, nil
}

type fakeFiles struct {
	stored  []string
	deleted []string
}

func (f *fakeFiles) StoreAvatar(_ context.Context, r io.Reader, ext, _ string) (string, string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", "", err
	}
	key := "avatars/avatar-1-1" + ext
	f.stored = append(f.stored, key)
	return key, "http://cdn/" + key, nil
}

func (f *fakeFiles) StoreFacePhoto(context.Context, string, []byte, string) (string, error) {
	return "", nil
}

func (f *fakeFiles) URL(_ context.Context, key string) (string, error) { return "http://cdn/" + key, nil }

func (f *fakeFiles) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func setup() (*EmployeeServiceImpl, *fakeRepo, *fakeFiles, context.Context) {
	oldKey := "avatars/old.jpg"
	repo := &fakeRepo{rows: map[string]employee.Employee{
		"e-1": {ID: "e-1", CompanyID: "c-1", FirstName: "Jane", LastName: "Doe", AvatarKey: &oldKey},
		"e-2": {ID: "e-2", CompanyID: "c-1", FirstName: "John", LastName: "Roe"},
		"e-9": {ID: "e-9", CompanyID: "c-2", FirstName: "Other", LastName: "Co"},
	}}
	files := &fakeFiles{}
	svc := NewEmployeeService(&fakeTx{}, repo, newFakeProfiles(), files, cache.NewRegistry(nil)).(*EmployeeServiceImpl)
	ctx := jwt.ContextWithClaims(context.Background(), jwt.Claims{UserID: "u-1", EmployeeID: "e-1", CompanyID: "c-1", Role: user.RoleEmployee})
	return svc, repo, files, ctx
}

func TestListScopesToCompany(t *testing.T) {
	svc, _, _, ctx := setup()

	resp, err := svc.List(ctx, employee.ListFilter{Params: pagination.Params{Page: 1, PageSize: 20}})
	require.NoError(t, err)
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, int64(2), resp.Total)
}

func TestGetByIDUsesCacheAndCompanyScope(t *testing.T) {
	svc, repo, _, ctx := setup()

	_, err := svc.GetByID(ctx, "e-2")
	require.NoError(t, err)
	_, err = svc.GetByID(ctx, "e-2")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.getCalls)

	_, err = svc.GetByID(ctx, "e-9")
	assert.ErrorIs(t, err, employee.ErrForbiddenEmployee)

	_, err = svc.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestEmployeeCacheExpiresAfterDefaultTTL(t *testing.T) {
	svc, repo, _, ctx := setup()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.caches.SetClock(func() time.Time { return now })

	_, err := svc.GetByID(ctx, "e-2")
	require.NoError(t, err)
	now = now.Add(4 * time.Minute)
	_, err = svc.GetByID(ctx, "e-2")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.getCalls)

	now = now.Add(2 * time.Minute)
	_, err = svc.GetByID(ctx, "e-2")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.getCalls)
}

func TestMeRequiresLinkedProfile(t *testing.T) {
	svc, _, _, _ := setup()
	ctx := jwt.ContextWithClaims(context.Background(), jwt.Claims{UserID: "u-5", CompanyID: "c-1", Role: user.RoleAdmin})

	_, err := svc.Me(ctx)
	assert.ErrorIs(t, err, employee.ErrProfileNotLinked)
}

func TestUpdateMyPrivateInfo(t *testing.T) {
	svc, _, _, ctx := setup()

	_, err := svc.UpdateMyPrivateInfo(ctx, employee.UpdatePrivateInfoRequest{"salary": strPtr("1")})
	assert.ErrorIs(t, err, employee.ErrNoAllowedFields)

	// Warm the cache, then make sure the update is visible afterwards.
	_, err = svc.Me(ctx)
	require.NoError(t, err)

	resp, err := svc.UpdateMyPrivateInfo(ctx, employee.UpdatePrivateInfoRequest{"hobbies": strPtr("  chess "), "salary": strPtr("1")})
	require.NoError(t, err)
	require.NotNil(t, resp.Hobbies)
	assert.Equal(t, "chess", *resp.Hobbies)

	me, err := svc.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "chess", *me.Hobbies)
}

func TestUploadAvatar(t *testing.T) {
	svc, repo, files, ctx := setup()

	_, err := svc.UploadAvatar(ctx, employee.UploadAvatarRequest{File: strings.NewReader("x"), Filename: "cv.pdf"})
	assert.ErrorIs(t, err, employee.ErrInvalidAvatarType)

	_, err = svc.UploadAvatar(ctx, employee.UploadAvatarRequest{File: strings.NewReader("x"), Filename: "me.png", Size: employee.AvatarMaxBytes + 1})
	assert.ErrorIs(t, err, employee.ErrAvatarTooLarge)

	_, err = svc.UploadAvatar(ctx, employee.UploadAvatarRequest{Filename: "me.png"})
	assert.ErrorIs(t, err, employee.ErrNoAvatarFile)

	resp, err := svc.UploadAvatar(ctx, employee.UploadAvatarRequest{File: strings.NewReader("png"), Filename: "Me.PNG", ContentType: "image/png", Size: 3})
	require.NoError(t, err)
	require.NotNil(t, resp.AvatarURL)
	assert.Equal(t, "http://cdn/avatars/avatar-1-1.png", *resp.AvatarURL)
	assert.Equal(t, []string{"avatars/old.jpg"}, files.deleted)
	assert.Equal(t, "avatars/avatar-1-1.png", *repo.rows["e-1"].AvatarKey)
}

func TestDeleteAvatar(t *testing.T) {
	svc, repo, files, ctx := setup()

	resp, err := svc.DeleteAvatar(ctx)
	require.NoError(t, err)
	assert.Nil(t, resp.AvatarURL)
	assert.Nil(t, repo.rows["e-1"].AvatarKey)
	assert.Equal(t, []string{"avatars/old.jpg"}, files.deleted)
}

func strPtr(s string) *string { return &s }
