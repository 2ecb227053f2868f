package rbac

// conditionKey enumerates the condition vocabulary understood by the
// matcher. Keys outside this set fall through to generic equality against
// the context, so catalog data can carry ad-hoc conditions without matcher
// changes.
type conditionKey string

const (
	condOwn         conditionKey = "own"
	condOwnOrg      conditionKey = "own_org"
	condToOwnOrg    conditionKey = "to_own_org"
	condStatus      conditionKey = "status"
	condVerified    conditionKey = "verified"
	condSummaryOnly conditionKey = "summary_only"
	condType        conditionKey = "type"
	condPurpose     conditionKey = "purpose"
)

// Matches reports whether perm applies to the requested resource and action
// under the supplied context. Resource and action each match on wildcard or
// exact equality; every declared condition must hold.
func Matches(perm Permission, resource, action string, ctx Context, user User) bool {
	if perm.Resource != Wildcard && perm.Resource != resource {
		return false
	}
	if perm.Action != Wildcard && perm.Action != action {
		return false
	}
	for key, want := range perm.Conditions {
		if !conditionHolds(conditionKey(key), want, ctx, user) {
			return false
		}
	}
	return true
}

// anyMatches is the OR across a permission list: the request is allowed if
// at least one permission matches.
func anyMatches(perms []Permission, resource, action string, ctx Context, user User) bool {
	for _, perm := range perms {
		if Matches(perm, resource, action, ctx, user) {
			return true
		}
	}
	return false
}

func conditionHolds(key conditionKey, want any, ctx Context, user User) bool {
	switch key {
	case condOwn:
		return user.ID != "" && ctx["userId"] == user.ID
	case condOwnOrg:
		// Membership only; the user's role within the organization is
		// tracked by the membership layer and not consulted here.
		org, ok := ctx["organizationId"].(string)
		return ok && memberOf(user.Organizations, org)
	case condToOwnOrg:
		org, ok := ctx["targetOrganizationId"].(string)
		return ok && memberOf(user.Organizations, org)
	case condStatus:
		return ctx["status"] == want
	case condVerified:
		return ctx["verified"] == want
	case condSummaryOnly:
		if on, _ := want.(bool); on {
			return ctx["requestType"] != "detailed"
		}
		return true
	case condType:
		return ctx["type"] == want
	case condPurpose:
		return ctx["purpose"] == want
	default:
		return ctx[string(key)] == want
	}
}

func memberOf(orgs []string, org string) bool {
	if org == "" {
		return false
	}
	for _, candidate := range orgs {
		if candidate == org {
			return true
		}
	}
	return false
}
