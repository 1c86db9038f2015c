package auth

import (
	"fmt"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// Resources guarded by the enforcer.
const (
	ResourceTicket    = "ticket"
	ResourceComment   = "comment"
	ResourceTime      = "time"
	ResourceDashboard = "dashboard"
	ResourceLookup    = "lookup"
	ResourceAdmin     = "admin"
	ResourceAsset     = "asset"
	ResourceKnowledge = "kb"
	ResourceExpense   = "expense"
	ResourceReport    = "report"
	ResourceSearch    = "search"
)

// Actions on resources.
const (
	ActionRead     = "read"
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionDelete   = "delete"
	ActionStatus   = "status"
	ActionAssign   = "assign"
	ActionInternal = "internal"
	ActionReadAll  = "read_all"
	ActionManage   = "manage"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && (r.act == p.act || p.act == "*")
`

// Administrator inherits Agent, which inherits User.
var roleHierarchy = [][]string{
	{string(domain.RoleAdministrator), string(domain.RoleAgent)},
	{string(domain.RoleAgent), string(domain.RoleUser)},
}

var defaultPolicies = [][]string{
	{string(domain.RoleUser), ResourceTicket, ActionRead},
	{string(domain.RoleUser), ResourceTicket, ActionCreate},
	{string(domain.RoleUser), ResourceComment, ActionRead},
	{string(domain.RoleUser), ResourceComment, ActionCreate},
	{string(domain.RoleUser), ResourceLookup, ActionRead},
	{string(domain.RoleUser), ResourceKnowledge, ActionRead},
	{string(domain.RoleUser), ResourceSearch, ActionRead},

	{string(domain.RoleAgent), ResourceTicket, ActionUpdate},
	{string(domain.RoleAgent), ResourceTicket, ActionStatus},
	{string(domain.RoleAgent), ResourceTicket, ActionAssign},
	{string(domain.RoleAgent), ResourceTicket, ActionReadAll},
	{string(domain.RoleAgent), ResourceComment, ActionInternal},
	{string(domain.RoleAgent), ResourceComment, ActionReadAll},
	{string(domain.RoleAgent), ResourceTime, ActionRead},
	{string(domain.RoleAgent), ResourceTime, ActionCreate},
	{string(domain.RoleAgent), ResourceTime, ActionUpdate},
	{string(domain.RoleAgent), ResourceDashboard, ActionRead},
	{string(domain.RoleAgent), ResourceAsset, ActionRead},
	{string(domain.RoleAgent), ResourceAsset, ActionCreate},
	{string(domain.RoleAgent), ResourceAsset, ActionUpdate},
	{string(domain.RoleAgent), ResourceExpense, ActionRead},
	{string(domain.RoleAgent), ResourceExpense, ActionCreate},
	{string(domain.RoleAgent), ResourceExpense, ActionUpdate},
	{string(domain.RoleAgent), ResourceReport, ActionRead},

	{string(domain.RoleAdministrator), ResourceTicket, ActionDelete},
	{string(domain.RoleAdministrator), ResourceTime, ActionManage},
	{string(domain.RoleAdministrator), ResourceExpense, ActionManage},
	{string(domain.RoleAdministrator), ResourceAsset, ActionDelete},
	{string(domain.RoleAdministrator), ResourceKnowledge, ActionManage},
	{string(domain.RoleAdministrator), ResourceAdmin, "*"},
}

// Enforcer answers role based authorization questions.
type Enforcer struct {
	mu       sync.RWMutex
	enforcer *casbin.Enforcer
}

// NewEnforcer builds an enforcer loaded with the built-in policy.
func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rbac model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	for _, g := range roleHierarchy {
		if _, err := e.AddGroupingPolicy(g); err != nil {
			return nil, fmt.Errorf("failed to add role %v: %w", g, err)
		}
	}
	for _, p := range defaultPolicies {
		if _, err := e.AddPolicy(p); err != nil {
			return nil, fmt.Errorf("failed to add policy %v: %w", p, err)
		}
	}
	return &Enforcer{enforcer: e}, nil
}

// Can reports whether the role may perform action on resource.
func (e *Enforcer) Can(role domain.Role, resource, action string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	allowed, err := e.enforcer.Enforce(string(role), resource, action)
	return err == nil && allowed
}

// Authorize returns a Forbidden error unless the user is active and allowed.
func (e *Enforcer) Authorize(user *domain.User, resource, action string) error {
	if user == nil || !user.IsActive {
		return apperrors.NewForbidden("not permitted")
	}
	if !e.Can(user.Role, resource, action) {
		return apperrors.NewForbidden(fmt.Sprintf("%s may not %s %s", user.Role, action, resource))
	}
	return nil
}
