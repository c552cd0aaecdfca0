package canvas

import "sync"

// Log holds one room's canonical drawing history. Entries are append-only and
// deduplicated by operation id; undo/redo state is never stored, it is derived
// from the log by counting undo/redo entries that target an operation.
type Log struct {
	mu   sync.RWMutex
	ops  []Operation
	seen map[string]struct{}
}

// NewLog returns an empty operation log.
func NewLog() *Log {
	return &Log{seen: make(map[string]struct{})}
}

// Append records the operation at the end of the log. Operations without a
// type, and operations whose id is already present, are dropped silently so
// that re-delivered messages stay idempotent. It reports whether the log grew.
func (l *Log) Append(op Operation) bool {
	if op.Type == "" {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if op.ID != "" {
		if _, dup := l.seen[op.ID]; dup {
			return false
		}
		l.seen[op.ID] = struct{}{}
	}
	l.ops = append(l.ops, op)
	return true
}

// Snapshot returns a point-in-time copy of the full ordered history. Later
// appends do not affect an already-returned snapshot.
func (l *Log) Snapshot() []Operation {
	l.mu.RLock()
	defer l.mu.RUnlock()
	snapshot := make([]Operation, len(l.ops))
	copy(snapshot, l.ops)
	return snapshot
}

// Len returns the current number of recorded operations.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.ops)
}

// ResolveUndoTarget scans newest to oldest for the user's most recent drawable
// operation that is still active, i.e. whose activity balance (undos minus
// redos targeting it, counted after its own position) is even. It reports
// false when the user has nothing left to undo.
func (l *Log) ResolveUndoTarget(userID string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := len(l.ops) - 1; i >= 0; i-- {
		op := l.ops[i]
		if !op.IsDrawable() || op.UserID != userID {
			continue
		}
		if l.activityBalance(op.ID, i)%2 == 0 {
			return op.ID, true
		}
	}
	return "", false
}

// ResolveRedoTarget scans newest to oldest for the user's undo entries and
// returns the first referenced operation whose activity balance is still odd
// (undone). An undo whose target has already been redone is skipped and the
// scan continues with the user's earlier undos. The balance is computed from
// the target's own position, not the undo's, so the whole history is walked.
func (l *Log) ResolveRedoTarget(userID string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := len(l.ops) - 1; i >= 0; i-- {
		op := l.ops[i]
		if op.Type != OpTypeUndo || op.UserID != userID {
			continue
		}
		targetID := op.Target()
		if targetID == "" {
			continue
		}
		targetIndex := l.indexOf(targetID)
		if targetIndex < 0 {
			continue
		}
		if l.activityBalance(targetID, targetIndex)%2 != 0 {
			return targetID, true
		}
	}
	return "", false
}

// activityBalance counts undo minus redo entries after the given index that
// target the given operation id. Callers must hold at least a read lock.
func (l *Log) activityBalance(targetID string, index int) int {
	balance := 0
	for _, op := range l.ops[index+1:] {
		switch op.Type {
		case OpTypeUndo:
			if op.Target() == targetID {
				balance++
			}
		case OpTypeRedo:
			if op.Target() == targetID {
				balance--
			}
		}
	}
	return balance
}

func (l *Log) indexOf(opID string) int {
	for i, op := range l.ops {
		if op.ID == opID {
			return i
		}
	}
	return -1
}
