package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"grimm.is/sockd/internal/inetd"
)

type foreignRecord struct{ inetd.Record }

func TestSupervisor_Startable(t *testing.T) {
	sup := NewSupervisor(2, nil)

	enabled := func(forking bool, pid int) *Service {
		svc := &Service{Enabled: true, Runlevels: DefaultRunlevels, pid: pid}
		svc.Binding.Forking = forking
		return svc
	}

	assert.Equal(t, inetd.Start, sup.Startable(enabled(false, 0)))
	assert.Equal(t, inetd.Start, sup.Startable(enabled(true, 0)))
	assert.Equal(t, inetd.Start, sup.Startable(enabled(true, 42)), "forking services run many handlers")
	assert.Equal(t, inetd.Skip, sup.Startable(enabled(false, 42)))

	disabled := enabled(false, 0)
	disabled.Enabled = false
	assert.Equal(t, inetd.Stop, sup.Startable(disabled))

	assert.Equal(t, inetd.Skip, sup.Startable(foreignRecord{}))

	sup.SetRunlevel(1)
	assert.Equal(t, 1, sup.Runlevel())
	assert.Equal(t, inetd.Stop, sup.Startable(enabled(false, 0)))
}
