// Package roles manages the job roles and their skill lists that interview
// questions are generated for.
package roles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jonathan/hr-console/internal/inflight"
	"github.com/jonathan/hr-console/internal/notify"
	"github.com/jonathan/hr-console/internal/types"
	"github.com/rs/zerolog"
)

// ErrBusy is returned when the same kind of mutation is already running for
// a role.
var ErrBusy = errors.New("role operation already in progress")

// MsgFetchFailed is shown when the role list cannot be loaded.
const MsgFetchFailed = "Failed to fetch roles. Please try again."

// API is the part of the HR API the registry needs.
type API interface {
	ListRoles(ctx context.Context) ([]types.Role, error)
	CreateRole(ctx context.Context, req types.CreateRoleRequest) (*types.Role, error)
	UpdateRole(ctx context.Context, id string, req types.UpdateRoleRequest) (*types.Role, error)
	DeleteRole(ctx context.Context, id string) error
}

// Registry holds the role list. Mutations are sent first and applied
// locally only once the server accepts them. Each kind of mutation is
// tracked per role, so different roles never block each other.
type Registry struct {
	api      API
	notifier notify.Notifier
	log      zerolog.Logger

	adding         *inflight.Tracker
	updatingRole   *inflight.Tracker
	updatingSkills *inflight.Tracker
	deleting       *inflight.Tracker

	mu      sync.Mutex
	roles   []types.Role
	loading bool
}

// New creates an empty registry.
func New(api API, n notify.Notifier, logger zerolog.Logger) *Registry {
	return &Registry{
		api:            api,
		notifier:       notify.OrDiscard(n),
		log:            logger,
		adding:         inflight.NewTracker(),
		updatingRole:   inflight.NewTracker(),
		updatingSkills: inflight.NewTracker(),
		deleting:       inflight.NewTracker(),
	}
}

// Load replaces the role list with the server's.
func (r *Registry) Load(ctx context.Context) error {
	r.mu.Lock()
	r.loading = true
	r.mu.Unlock()

	list, err := r.api.ListRoles(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = false
	if err != nil {
		r.log.Error().Err(err).Msg("failed to fetch roles")
		r.notifier.Notify(notify.Error("Error", MsgFetchFailed))
		return err
	}
	r.roles = append([]types.Role(nil), list...)
	return nil
}

// Loading reports whether Load is running.
func (r *Registry) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

// Roles returns a copy of the role list in server order.
func (r *Registry) Roles() []types.Role {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.Role, len(r.roles))
	for i, role := range r.roles {
		role.Skills = append([]string(nil), role.Skills...)
		out[i] = role
	}
	return out
}

// Get returns the role with id.
func (r *Registry) Get(id string) (types.Role, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.index(id); i >= 0 {
		role := r.roles[i]
		role.Skills = append([]string(nil), role.Skills...)
		return role, true
	}
	return types.Role{}, false
}

// SkillsFor returns the skills of role id, or nil for an unknown id.
func (r *Registry) SkillsFor(id string) []string {
	role, ok := r.Get(id)
	if !ok {
		return nil
	}
	return role.Skills
}

func (r *Registry) index(id string) int {
	for i := range r.roles {
		if r.roles[i].ID == id {
			return i
		}
	}
	return -1
}

// replace swaps in the server's copy of a role.
func (r *Registry) replace(id string, updated *types.Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 || updated == nil {
		return
	}
	role := *updated
	if role.ID == "" {
		role.ID = id
	}
	r.roles[i] = role
}

func (r *Registry) failed(op string, err error, roleID string) {
	r.log.Error().Err(err).Str("role_id", roleID).Msgf("failed to %s", op)
	r.notifier.Notify(notify.Error("Error", fmt.Sprintf("Failed to %s. Please try again.", op)))
}

// AddRole creates a role with no skills and appends it. A blank name is
// ignored.
func (r *Registry) AddRole(ctx context.Context, name string) (*types.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	key := strings.ToLower(name)
	if !r.adding.Begin(key) {
		return nil, ErrBusy
	}
	defer r.adding.End(key)

	created, err := r.api.CreateRole(ctx, types.CreateRoleRequest{Role: name})
	if err != nil {
		r.failed("add role", err, "")
		return nil, err
	}
	if created.Skills == nil {
		created.Skills = []string{}
	}

	r.mu.Lock()
	r.roles = append(r.roles, *created)
	r.mu.Unlock()
	r.notifier.Notify(notify.Info("Role added", fmt.Sprintf("%s has been added successfully.", created.Role)))
	return created, nil
}

// Adding reports whether a role named name is being created.
func (r *Registry) Adding(name string) bool {
	return r.adding.Active(strings.ToLower(strings.TrimSpace(name)))
}

// RenameRole changes a role's name, resending its skills unchanged. Blank
// names and unknown ids are ignored.
func (r *Registry) RenameRole(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	role, ok := r.Get(id)
	if !ok {
		return nil
	}
	if !r.updatingRole.Begin(id) {
		return ErrBusy
	}
	defer r.updatingRole.End(id)

	updated, err := r.api.UpdateRole(ctx, id, types.UpdateRoleRequest{Role: &name, Skills: nonNil(role.Skills)})
	if err != nil {
		r.failed("update role", err, id)
		return err
	}
	r.replace(id, updated)
	r.notifier.Notify(notify.Info("Role updated", "Role name has been updated successfully."))
	return nil
}

// DeleteRole removes a role. Unknown ids are ignored.
func (r *Registry) DeleteRole(ctx context.Context, id string) error {
	role, ok := r.Get(id)
	if !ok {
		return nil
	}
	if !r.deleting.Begin(id) {
		return ErrBusy
	}
	defer r.deleting.End(id)

	if err := r.api.DeleteRole(ctx, id); err != nil {
		r.failed("delete role", err, id)
		return err
	}

	r.mu.Lock()
	if i := r.index(id); i >= 0 {
		r.roles = append(r.roles[:i], r.roles[i+1:]...)
	}
	r.mu.Unlock()
	r.notifier.Notify(notify.Error("Role deleted", fmt.Sprintf("%s has been removed.", role.Role)))
	return nil
}

// AddSkill appends a skill to a role. Duplicates are allowed. Blank skills
// and unknown ids are ignored.
func (r *Registry) AddSkill(ctx context.Context, id, skill string) error {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return nil
	}
	role, ok := r.Get(id)
	if !ok {
		return nil
	}
	return r.updateSkills(ctx, id, append(nonNil(role.Skills), skill), "add skill",
		notify.Info("Skill added", fmt.Sprintf("%s has been added to the role.", skill)))
}

// RemoveSkill removes every occurrence of skill from a role. Unknown ids
// are ignored.
func (r *Registry) RemoveSkill(ctx context.Context, id, skill string) error {
	role, ok := r.Get(id)
	if !ok {
		return nil
	}
	kept := make([]string, 0, len(role.Skills))
	for _, s := range role.Skills {
		if s != skill {
			kept = append(kept, s)
		}
	}
	return r.updateSkills(ctx, id, kept, "remove skill",
		notify.Info("Skill removed", fmt.Sprintf("%s has been removed from the role.", skill)))
}

func (r *Registry) updateSkills(ctx context.Context, id string, skills []string, op string, success notify.Notification) error {
	if !r.updatingSkills.Begin(id) {
		return ErrBusy
	}
	defer r.updatingSkills.End(id)

	updated, err := r.api.UpdateRole(ctx, id, types.UpdateRoleRequest{Skills: skills})
	if err != nil {
		r.failed(op, err, id)
		return err
	}
	r.replace(id, updated)
	r.notifier.Notify(success)
	return nil
}

// Busy reports which mutations are in flight for role id.
type Busy struct {
	UpdatingRole   bool
	UpdatingSkills bool
	Deleting       bool
}

// BusyFor returns the in-flight flags of role id.
func (r *Registry) BusyFor(id string) Busy {
	return Busy{
		UpdatingRole:   r.updatingRole.Active(id),
		UpdatingSkills: r.updatingSkills.Active(id),
		Deleting:       r.deleting.Active(id),
	}
}

func nonNil(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
