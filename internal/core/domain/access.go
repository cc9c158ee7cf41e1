package domain

// Access is the set of capabilities a caller holds over one task.
type Access struct {
	Read bool
	// Write allows mutating ordinary fields, files, favorite and deletion.
	Write bool
	// AdminWrite allows setting workflow, task type, assignee and any status.
	AdminWrite bool
}

// CanAccess is the single authorization predicate for task operations:
// admins hold every capability, users read and write only tasks they
// created or are assigned to.
func CanAccess(t *Task, c Caller) Access {
	if t == nil {
		return Access{}
	}
	if c.IsAdmin() {
		return Access{Read: true, Write: true, AdminWrite: true}
	}
	related := t.IsOwner(c.UserID) || t.IsAssignee(c.UserID)
	return Access{Read: related, Write: related}
}
