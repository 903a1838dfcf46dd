package errors

import (
	"errors"
	"syscall"
	"testing"
)

func TestError(t *testing.T) {
	err := New(KindInvalid, "service name is required")
	if err.Error() != "service name is required" {
		t.Errorf("expected 'service name is required', got '%s'", err.Error())
	}

	wrapped := Wrap(syscall.EADDRINUSE, KindSocket, "bind port 22")
	if wrapped.Error() != "bind port 22: address already in use" {
		t.Errorf("unexpected message %q", wrapped.Error())
	}
	if !errors.Is(wrapped, syscall.EADDRINUSE) {
		t.Error("wrapped error lost its errno")
	}
}

func TestGetKind(t *testing.T) {
	err := Errorf(KindLookup, "unknown service %s/%s", "nosuch", "tcp")
	if GetKind(err) != KindLookup {
		t.Errorf("expected KindLookup, got %v", GetKind(err))
	}
	if !IsKind(err, KindLookup) {
		t.Error("IsKind(KindLookup) = false")
	}

	wrapped := Wrap(err, KindInvalid, "register")
	if GetKind(wrapped) != KindInvalid {
		t.Errorf("expected KindInvalid, got %v", GetKind(wrapped))
	}

	if GetKind(errors.New("std error")) != KindUnknown {
		t.Errorf("expected KindUnknown, got %v", GetKind(errors.New("std error")))
	}

	if Wrap(nil, KindSocket, "nothing") != nil {
		t.Error("Wrap(nil) should be nil")
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindInvalid:  "invalid_argument",
		KindLookup:   "lookup_failure",
		KindResource: "resource_exhaustion",
		KindSocket:   "socket_failure",
		KindUnknown:  "unknown",
	}
	for k, want := range cases {
		if k.String() != want {
			t.Errorf("%d.String() = %q, want %q", k, k.String(), want)
		}
	}
}

func TestAttributes(t *testing.T) {
	err := New(KindSocket, "listen failed")
	err = Attr(err, "service", "ssh")
	err = Attr(err, "port", 22)

	attrs := GetAttributes(err)
	if attrs["service"] != "ssh" {
		t.Errorf("expected ssh, got %v", attrs["service"])
	}
	if attrs["port"] != 22 {
		t.Errorf("expected 22, got %v", attrs["port"])
	}

	wrapped := Wrap(err, KindInternal, "activate")
	wrapped = Attr(wrapped, "runlevel", 2)

	allAttrs := GetAttributes(wrapped)
	if allAttrs["service"] != "ssh" || allAttrs["runlevel"] != 2 {
		t.Errorf("missing attributes: %v", allAttrs)
	}

	plain := Attr(errors.New("boom"), "k", "v")
	if GetKind(plain) != KindInternal {
		t.Errorf("Attr on plain error should produce KindInternal, got %v", GetKind(plain))
	}
}
