//go:build !linux

package services

import (
	"grimm.is/sockd/internal/errors"
	"grimm.is/sockd/internal/inetd"
)

// Start is only supported on Linux.
func (s *Supervisor) Start(inetd.Record, int) error {
	return errors.New(errors.KindUnavailable, "starting handlers requires linux")
}
