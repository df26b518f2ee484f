package domain

// DeleteOutcome is the two-valued result of a best-effort remote deletion.
// Deletions never raise; callers aggregate partial success instead of
// handling exceptions.
type DeleteOutcome struct {
	Succeeded bool
	Detail    string
}

func DeleteSucceeded() DeleteOutcome {
	return DeleteOutcome{Succeeded: true}
}

func DeleteFailed(detail string) DeleteOutcome {
	return DeleteOutcome{Detail: detail}
}

// CleanupFailure describes one session that survived a reconciliation pass,
// with both per-resource outcomes visible.
type CleanupFailure struct {
	SessionID SessionID
	Workspace DeleteOutcome
	User      DeleteOutcome
}

// CleanupSummary reports one reconciliation pass. Failed sessions stay in the
// store and are retried on the next pass.
type CleanupSummary struct {
	Considered int
	Deleted    int
	Failed     int
	Failures   []CleanupFailure
}
