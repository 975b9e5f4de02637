package graph

// Coalesce merges next into prev when both set the same property of the same
// node back to back, so a drag or a live-previewed rename records as a single
// change. The merged command goes from prev's old value to next's new value.
func Coalesce(prev, next Command) (Command, bool) {
	switch p := prev.(type) {
	case *MoveNode:
		n, ok := next.(*MoveNode)
		if !ok || n.nodeID != p.nodeID || n.from != p.to {
			return nil, false
		}

		return &MoveNode{nodeID: p.nodeID, from: p.from, to: n.to}, true
	case *RenameNode:
		n, ok := next.(*RenameNode)
		if !ok || n.nodeID != p.nodeID || n.from != p.to {
			return nil, false
		}

		return &RenameNode{nodeID: p.nodeID, from: p.from, to: n.to}, true
	case *ToggleDisabled:
		n, ok := next.(*ToggleDisabled)
		if !ok || n.nodeID != p.nodeID || n.from != p.to {
			return nil, false
		}

		return &ToggleDisabled{nodeID: p.nodeID, from: p.from, to: n.to}, true
	}

	return nil, false
}

// IsNoop reports whether applying the command leaves the graph unchanged.
func IsNoop(cmd Command) bool {
	switch c := cmd.(type) {
	case *MoveNode:
		return c.from == c.to
	case *RenameNode:
		return c.from == c.to
	case *ToggleDisabled:
		return c.from == c.to
	}

	return false
}

// Compact folds coalescable commands and drops no-ops. A move or toggle is
// folded into the latest earlier command on the same node as long as nothing
// in between touches that node; renames only fold when adjacent because names
// are shared across nodes. The result has the same net effect on the graph.
func Compact(cmds []Command) []Command {
	out := make([]Command, 0, len(cmds))

	for _, cmd := range cmds {
		if i := foldTarget(out, cmd); i >= 0 {
			if merged, ok := Coalesce(out[i], cmd); ok {
				out[i] = merged
				continue
			}
		}

		out = append(out, cmd)
	}

	compacted := out[:0]
	for _, cmd := range out {
		if !IsNoop(cmd) {
			compacted = append(compacted, cmd)
		}
	}

	return compacted
}

func foldTarget(out []Command, cmd Command) int {
	if len(out) == 0 {
		return -1
	}

	switch cmd.(type) {
	case *MoveNode, *ToggleDisabled:
	default:
		return len(out) - 1
	}

	for i := len(out) - 1; i >= 0; i-- {
		if touchesAny(out[i], cmd.NodeIDs()) {
			return i
		}
	}

	return -1
}

func touchesAny(cmd Command, ids []string) bool {
	for _, a := range cmd.NodeIDs() {
		for _, b := range ids {
			if a == b {
				return true
			}
		}
	}

	return false
}
