package rbac

// builtinRoles returns the fixed role catalog seeded at startup. This is
// data, not logic: adding a role or rule here never requires matcher changes.
func builtinRoles() []Role {
	return []Role{
		{
			Name:        RoleSuperAdmin,
			Description: "Platform administrator with unrestricted access.",
			Permissions: []Permission{
				{Resource: Wildcard, Action: Wildcard},
			},
		},
		{
			Name:        RoleOrgAdmin,
			Description: "Manages an organization, its fundraisers and its members.",
			Inherits:    []string{RoleOrgTreasurer},
			Permissions: []Permission{
				{Resource: "organization", Action: "update", Conditions: map[string]any{"own_org": true}},
				{Resource: "fundraiser", Action: "create", Conditions: map[string]any{"own_org": true}},
				{Resource: "fundraiser", Action: "update", Conditions: map[string]any{"own_org": true}},
				{Resource: "fundraiser", Action: "delete", Conditions: map[string]any{"own_org": true, "status": "draft"}},
				{Resource: "member", Action: "invite", Conditions: map[string]any{"own_org": true}},
				{Resource: "member", Action: "remove", Conditions: map[string]any{"own_org": true}},
			},
		},
		{
			Name:        RoleOrgTreasurer,
			Description: "Handles funds movement and financial filings for an organization.",
			Inherits:    []string{RoleOrgStaff},
			Permissions: []Permission{
				{Resource: "donation", Action: "refund", Conditions: map[string]any{"own_org": true}},
				{Resource: "disbursement", Action: "create", Conditions: map[string]any{"own_org": true, "purpose": "campaign"}},
				{Resource: "transfer", Action: "create", Conditions: map[string]any{"to_own_org": true}},
				{Resource: "report", Action: "generate", Conditions: map[string]any{"own_org": true, "type": "financial"}},
			},
		},
		{
			Name:        RoleOrgStaff,
			Description: "Day-to-day fundraiser operations inside an organization.",
			Inherits:    []string{RoleOrgViewer},
			Permissions: []Permission{
				{Resource: "fundraiser", Action: "update", Conditions: map[string]any{"own_org": true, "status": "active"}},
				{Resource: "donation", Action: "view", Conditions: map[string]any{"own_org": true, "summary_only": true}},
			},
		},
		{
			Name:        RoleOrgViewer,
			Description: "Read-only view of an organization's activity.",
			Permissions: []Permission{
				{Resource: "organization", Action: "view", Conditions: map[string]any{"own_org": true}},
				{Resource: "fundraiser", Action: "view", Conditions: map[string]any{"own_org": true}},
				{Resource: "report", Action: "view", Conditions: map[string]any{"own_org": true, "summary_only": true}},
			},
		},
		{
			Name:        RoleDonor,
			Description: "Individual donor account.",
			Permissions: []Permission{
				{Resource: "donation", Action: "create"},
				{Resource: "donation", Action: "view", Conditions: map[string]any{"own": true}},
				{Resource: "profile", Action: "update", Conditions: map[string]any{"own": true}},
				{Resource: "fundraiser", Action: "view", Conditions: map[string]any{"status": "active"}},
			},
		},
		{
			Name:        RoleComplianceOfficer,
			Description: "Reviews verified donations and produces compliance filings.",
			Permissions: []Permission{
				{Resource: "organization", Action: "view"},
				{Resource: "fundraiser", Action: "view"},
				{Resource: "donation", Action: "view", Conditions: map[string]any{"verified": true}},
				{Resource: "report", Action: "generate", Conditions: map[string]any{"type": "compliance"}},
			},
		},
	}
}
