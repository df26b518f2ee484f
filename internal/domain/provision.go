package domain

import "fmt"

// Step names one state of the provisioning sequence. Steps run strictly in
// order; no step starts before the previous one succeeded.
type Step string

const (
	StepCreatingUser       Step = "creating_user"
	StepCreatingWorkspace  Step = "creating_workspace"
	StepAttachingDocuments Step = "attaching_documents"
	StepAssociatingUser    Step = "associating_user"
	StepSettling           Step = "settling"
	StepIssuingToken       Step = "issuing_token"
	StepCommitted          Step = "committed"
)

// StepOutcome records whether a best-effort step ran or was skipped, and why.
type StepOutcome struct {
	Performed bool
	Reason    string
}

func StepPerformed() StepOutcome {
	return StepOutcome{Performed: true}
}

func StepSkipped(reason string) StepOutcome {
	return StepOutcome{Reason: reason}
}

// ProvisionResult is what a fully committed provisioning run hands back to the
// presentation layer.
type ProvisionResult struct {
	SessionID     SessionID
	UserID        UserID
	WorkspaceSlug WorkspaceSlug
	RedirectURL   string
	Documents     StepOutcome
	Association   StepOutcome
}

// ProvisionFailure is the terminal Failed(step) state. It carries whatever
// identifiers were already created so the caller can display them; the
// resources themselves have already been handed to compensation.
type ProvisionFailure struct {
	Step          Step
	UserID        UserID
	WorkspaceSlug WorkspaceSlug
	Err           error
}

func (f *ProvisionFailure) Error() string {
	return fmt.Sprintf("provisioning failed at %s: %v", f.Step, f.Err)
}

func (f *ProvisionFailure) Unwrap() error {
	return f.Err
}
