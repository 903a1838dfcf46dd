package inetd

// Respawn handles the exit of pid. If pid was an inetd handler its record's
// pid is cleared and, for single-shot bindings, the socket watch is re-armed.
// It reports whether the exit belonged to an inetd service.
func (m *Manager) Respawn(pid int) bool {
	if pid <= 0 {
		return false
	}
	for rec, b := range m.records() {
		if rec.PID() != pid {
			continue
		}
		rec.SetPID(0)
		if b.singleShot() && b.handle != nil {
			if err := b.handle.Enable(); err != nil {
				m.logger.Warn("failed to re-arm watch", "binding", b.String(), "error", err)
			}
		}
		m.logger.Debug("handler exited", "binding", b.String(), "pid", pid)
		return true
	}
	return false
}

// RunlevelActivate activates every binding configured for level. Bindings
// outside level, or already active, are left alone. It returns the number of
// bindings that failed to activate.
func (m *Manager) RunlevelActivate(level int) int {
	failed := 0
	for rec, b := range m.records() {
		if !rec.InRunlevel(level) || b.Active() {
			continue
		}
		if err := m.Activate(rec); err != nil {
			failed++
		}
	}
	return failed
}

// Shutdown closes every active binding's socket.
func (m *Manager) Shutdown() {
	for rec, b := range m.records() {
		if b.Active() {
			m.Deactivate(rec)
		}
	}
}
