package auth

import "attendhub/internal/store"

// Result is the tagged outcome of a credential check. Exactly one of Session
// and Reason is meaningful; call sites branch on OK so both cases are handled
// explicitly rather than via a loosely typed union.
type Result struct {
	OK      bool
	Session Session
	Reason  string
}

// FailureReason is the generic failure message. It never says which field was
// wrong.
const FailureReason = "invalid credentials"

// MemberLookup is the slice of the store login needs.
type MemberLookup interface {
	FindMemberByEmail(email string) (store.Member, bool)
}

func failure() Result {
	return Result{Reason: FailureReason}
}

// Login checks credentials against the member list. The requested role must
// match the member's role: an employee cannot sign in as admin and vice versa.
func Login(members MemberLookup, email, password string, role store.Role) Result {
	if email == "" || password == "" {
		return failure()
	}
	m, ok := members.FindMemberByEmail(email)
	if !ok || m.Password != password || m.Role != role {
		return failure()
	}
	return Result{
		OK: true,
		Session: Session{
			MemberID:   m.ID,
			Role:       m.Role,
			Name:       m.Name,
			Department: m.Department,
		},
	}
}
