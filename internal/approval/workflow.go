// Package approval implements the account activation state machine:
// Pending -> Accepted or Pending -> Rejected, both terminal. No tokens are
// issued for an account until it reaches Accepted.
package approval

import (
	"context"
	"time"

	"github.com/google/uuid"

	accountdomain "submitiq/backend/internal/account/domain"
	accountrepo "submitiq/backend/internal/account/repository"
	"submitiq/backend/internal/audit"
	"submitiq/backend/internal/autherrors"
	"submitiq/backend/internal/event"
)

// Workflow applies approval decisions and answers activity checks.
type Workflow struct {
	accounts accountrepo.Repository
	auditor  audit.Logger
	events   event.Producer
}

// NewWorkflow returns a Workflow over the given account store.
func NewWorkflow(accounts accountrepo.Repository, auditor audit.Logger, events event.Producer) *Workflow {
	if auditor == nil {
		auditor = audit.Nop{}
	}
	if events == nil {
		events = event.NopProducer{}
	}
	return &Workflow{accounts: accounts, auditor: auditor, events: events}
}

// Approve moves the account from Pending to Accepted and activates it.
// actor must be an active Administrator.
func (w *Workflow) Approve(ctx context.Context, accountID string, actor accountdomain.Principal) error {
	return w.decide(ctx, accountID, actor, accountdomain.StatusAccepted)
}

// Reject moves the account from Pending to Rejected and leaves it inactive
// permanently. Rejected is terminal: there is no path back to Pending.
func (w *Workflow) Reject(ctx context.Context, accountID string, actor accountdomain.Principal) error {
	return w.decide(ctx, accountID, actor, accountdomain.StatusRejected)
}

func (w *Workflow) decide(ctx context.Context, accountID string, actor accountdomain.Principal, target accountdomain.ApprovalStatus) error {
	if !actor.IsAdministrator() {
		return autherrors.E(autherrors.KindForbidden, "administrator role required")
	}
	acct, err := w.accounts.GetByID(ctx, accountID)
	if err != nil {
		return autherrors.Storage(err)
	}
	if acct == nil {
		return autherrors.E(autherrors.KindNotFound, "no such account")
	}
	if acct.Status != accountdomain.StatusPending {
		return autherrors.E(autherrors.KindInvalidTransition, "account is not pending")
	}
	now := time.Now().UTC()
	isActive := target == accountdomain.StatusAccepted
	applied, err := w.accounts.SetApprovalStatus(ctx, accountID, target, isActive, actor.AccountID, now)
	if err != nil {
		return autherrors.Storage(err)
	}
	if !applied {
		// Another administrator decided the account between our read and the
		// write. Report it the same way as a re-decision.
		return autherrors.E(autherrors.KindInvalidTransition, "account is not pending")
	}

	action := "approval.approve"
	eventType := event.TypeAccountApproved
	if target == accountdomain.StatusRejected {
		action = "approval.reject"
		eventType = event.TypeAccountRejected
	}
	w.auditor.LogEvent(ctx, actor.AccountID, action, accountID, "")
	_ = w.events.Emit(ctx, &event.SecurityEvent{
		ID:        uuid.New().String(),
		EventType: eventType,
		AccountID: accountID,
		Detail:    "decided by " + actor.AccountID,
		Source:    "approval",
		CreatedAt: now,
	})
	return nil
}

// CheckActive reports whether the account currently allows authenticated
// access. This is a fresh store read each time; the token service and the
// gateway both use it so a rejected account loses access as soon as its next
// request arrives, not only at token expiry.
func (w *Workflow) CheckActive(ctx context.Context, accountID string) (bool, error) {
	acct, err := w.accounts.GetByID(ctx, accountID)
	if err != nil {
		return false, autherrors.Storage(err)
	}
	if acct == nil {
		return false, nil
	}
	return acct.IsActive && acct.Status == accountdomain.StatusAccepted, nil
}

// ListPending returns accounts awaiting review. Administrator only: unlike
// the login endpoint, this surface does distinguish Pending from Rejected.
func (w *Workflow) ListPending(ctx context.Context, actor accountdomain.Principal) ([]*accountdomain.Account, error) {
	if !actor.IsAdministrator() {
		return nil, autherrors.E(autherrors.KindForbidden, "administrator role required")
	}
	list, err := w.accounts.ListByStatus(ctx, accountdomain.StatusPending)
	if err != nil {
		return nil, autherrors.Storage(err)
	}
	return list, nil
}
