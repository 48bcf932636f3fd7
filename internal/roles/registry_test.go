package roles

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/hr-console/internal/notify"
	"github.com/jonathan/hr-console/internal/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type updateCall struct {
	ID  string
	Req types.UpdateRoleRequest
}

// fakeAPI is an in-memory role store. Setting fail makes every call error.
type fakeAPI struct {
	mu      sync.Mutex
	roles   []types.Role
	nextID  int
	fail    error
	block   chan struct{}
	updates []updateCall
	calls   int
}

func (f *fakeAPI) wait() {
	if f.block != nil {
		<-f.block
	}
}

func (f *fakeAPI) ListRoles(context.Context) ([]types.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail != nil {
		return nil, f.fail
	}
	return append([]types.Role(nil), f.roles...), nil
}

func (f *fakeAPI) CreateRole(_ context.Context, req types.CreateRoleRequest) (*types.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail != nil {
		return nil, f.fail
	}
	f.nextID++
	role := types.Role{ID: "new" + string(rune('0'+f.nextID)), Role: req.Role}
	f.roles = append(f.roles, role)
	return &role, nil
}

func (f *fakeAPI) UpdateRole(_ context.Context, id string, req types.UpdateRoleRequest) (*types.Role, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.updates = append(f.updates, updateCall{id, req})
	if f.fail != nil {
		return nil, f.fail
	}
	for i := range f.roles {
		if f.roles[i].ID == id {
			if req.Role != nil {
				f.roles[i].Role = *req.Role
			}
			f.roles[i].Skills = req.Skills
			role := f.roles[i]
			return &role, nil
		}
	}
	return nil, errors.New("HTTP 404")
}

func (f *fakeAPI) DeleteRole(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail != nil {
		return f.fail
	}
	for i := range f.roles {
		if f.roles[i].ID == id {
			f.roles = append(f.roles[:i], f.roles[i+1:]...)
			break
		}
	}
	return nil
}

func seeded(t *testing.T) (*Registry, *fakeAPI, *notify.Recorder) {
	t.Helper()
	api := &fakeAPI{roles: []types.Role{
		{ID: "r1", Role: "Accountant", Skills: []string{"GST", "Tally"}},
		{ID: "r2", Role: "Analyst", Skills: []string{}},
	}}
	rec := &notify.Recorder{}
	reg := New(api, rec, zerolog.Nop())
	require.NoError(t, reg.Load(context.Background()))
	rec.Reset()
	api.calls = 0
	return reg, api, rec
}

func TestLoad(t *testing.T) {
	reg, _, _ := seeded(t)
	roles := reg.Roles()
	require.Len(t, roles, 2)
	assert.Equal(t, "Accountant", roles[0].Role)
	assert.Equal(t, []string{"GST", "Tally"}, reg.SkillsFor("r1"))
	assert.Nil(t, reg.SkillsFor("missing"))
	assert.False(t, reg.Loading())
}

func TestLoad_Failure(t *testing.T) {
	api := &fakeAPI{fail: errors.New("HTTP 500")}
	rec := &notify.Recorder{}
	reg := New(api, rec, zerolog.Nop())

	require.Error(t, reg.Load(context.Background()))
	last, _ := rec.Last()
	assert.Equal(t, MsgFetchFailed, last.Description)
	assert.Equal(t, notify.VariantDestructive, last.Variant)
}

func TestAddRole(t *testing.T) {
	reg, _, rec := seeded(t)

	created, err := reg.AddRole(context.Background(), "  Auditor  ")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "Auditor", created.Role)
	assert.Equal(t, []string{}, created.Skills)

	roles := reg.Roles()
	require.Len(t, roles, 3)
	assert.Equal(t, "Auditor", roles[2].Role, "new roles are appended")

	last, _ := rec.Last()
	assert.Equal(t, "Role added", last.Title)
	assert.Equal(t, "Auditor has been added successfully.", last.Description)
}

func TestBlankInputsAndUnknownIDsAreNoOps(t *testing.T) {
	reg, api, rec := seeded(t)
	ctx := context.Background()

	created, err := reg.AddRole(ctx, "   ")
	assert.NoError(t, err)
	assert.Nil(t, created)
	assert.NoError(t, reg.RenameRole(ctx, "r1", " "))
	assert.NoError(t, reg.RenameRole(ctx, "missing", "X"))
	assert.NoError(t, reg.DeleteRole(ctx, "missing"))
	assert.NoError(t, reg.AddSkill(ctx, "r1", "  "))
	assert.NoError(t, reg.AddSkill(ctx, "missing", "GST"))
	assert.NoError(t, reg.RemoveSkill(ctx, "missing", "GST"))

	assert.Zero(t, api.calls)
	assert.Empty(t, rec.All())
}

func TestRenameRole_ResendsSkills(t *testing.T) {
	reg, api, rec := seeded(t)

	require.NoError(t, reg.RenameRole(context.Background(), "r1", " Senior Accountant "))

	require.Len(t, api.updates, 1)
	require.NotNil(t, api.updates[0].Req.Role)
	assert.Equal(t, "Senior Accountant", *api.updates[0].Req.Role)
	assert.Equal(t, []string{"GST", "Tally"}, api.updates[0].Req.Skills)

	role, _ := reg.Get("r1")
	assert.Equal(t, "Senior Accountant", role.Role)
	last, _ := rec.Last()
	assert.Equal(t, "Role updated", last.Title)
}

func TestDeleteRole(t *testing.T) {
	reg, _, rec := seeded(t)

	require.NoError(t, reg.DeleteRole(context.Background(), "r1"))
	_, ok := reg.Get("r1")
	assert.False(t, ok)

	last, _ := rec.Last()
	assert.Equal(t, "Role deleted", last.Title)
	assert.Equal(t, "Accountant has been removed.", last.Description)
}

func TestAddSkill_AllowsDuplicates(t *testing.T) {
	reg, api, rec := seeded(t)

	require.NoError(t, reg.AddSkill(context.Background(), "r1", " GST "))

	assert.Nil(t, api.updates[0].Req.Role, "skill updates leave the name alone")
	assert.Equal(t, []string{"GST", "Tally", "GST"}, api.updates[0].Req.Skills)
	assert.Equal(t, []string{"GST", "Tally", "GST"}, reg.SkillsFor("r1"))

	last, _ := rec.Last()
	assert.Equal(t, "GST has been added to the role.", last.Description)
}

func TestRemoveSkill_RemovesEveryOccurrence(t *testing.T) {
	reg, api, rec := seeded(t)
	ctx := context.Background()
	require.NoError(t, reg.AddSkill(ctx, "r1", "GST"))

	require.NoError(t, reg.RemoveSkill(ctx, "r1", "GST"))
	assert.Equal(t, []string{"Tally"}, api.updates[1].Req.Skills)
	assert.Equal(t, []string{"Tally"}, reg.SkillsFor("r1"))

	require.NoError(t, reg.RemoveSkill(ctx, "r1", "Tally"))
	assert.Equal(t, []string{}, api.updates[2].Req.Skills, "removing the last skill sends an empty list")

	last, _ := rec.Last()
	assert.Equal(t, "Skill removed", last.Title)
}

func TestMutationFailureLeavesState(t *testing.T) {
	tests := []struct {
		name string
		run  func(*Registry) error
		want string
	}{
		{"add role", func(r *Registry) error { _, err := r.AddRole(context.Background(), "X"); return err }, "Failed to add role. Please try again."},
		{"rename", func(r *Registry) error { return r.RenameRole(context.Background(), "r1", "X") }, "Failed to update role. Please try again."},
		{"delete", func(r *Registry) error { return r.DeleteRole(context.Background(), "r1") }, "Failed to delete role. Please try again."},
		{"add skill", func(r *Registry) error { return r.AddSkill(context.Background(), "r1", "X") }, "Failed to add skill. Please try again."},
		{"remove skill", func(r *Registry) error { return r.RemoveSkill(context.Background(), "r1", "GST") }, "Failed to remove skill. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, api, rec := seeded(t)
			before := reg.Roles()
			api.fail = errors.New("HTTP 500")

			require.Error(t, tt.run(reg))
			assert.Equal(t, before, reg.Roles())

			last, _ := rec.Last()
			assert.Equal(t, "Error", last.Title)
			assert.Equal(t, tt.want, last.Description)
			assert.Equal(t, notify.VariantDestructive, last.Variant)
		})
	}
}

func TestInFlightIsPerRoleAndKind(t *testing.T) {
	reg, api, _ := seeded(t)
	api.block = make(chan struct{})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- reg.AddSkill(ctx, "r1", "Excel") }()
	require.Eventually(t, func() bool { return reg.BusyFor("r1").UpdatingSkills }, time.Second, time.Millisecond)

	assert.ErrorIs(t, reg.AddSkill(ctx, "r1", "SAP"), ErrBusy)
	assert.ErrorIs(t, reg.RemoveSkill(ctx, "r1", "GST"), ErrBusy)
	assert.False(t, reg.BusyFor("r2").UpdatingSkills)
	assert.False(t, reg.BusyFor("r1").Deleting)

	close(api.block)
	require.NoError(t, <-done)
	assert.False(t, reg.BusyFor("r1").UpdatingSkills)
	assert.Contains(t, reg.SkillsFor("r1"), "Excel")
}

func TestRoles_ReturnsCopies(t *testing.T) {
	reg, _, _ := seeded(t)
	roles := reg.Roles()
	roles[0].Skills[0] = "mutated"
	assert.Equal(t, "GST", reg.SkillsFor("r1")[0])
}
