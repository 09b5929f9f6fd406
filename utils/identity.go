package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Login identities are synthesized from numeric worker ids. Workers never
// see or type an email address; the form accepts a worker id or the literal
// "admin" and the backend expands it.
const (
	EmailDomain     = "slf.com"
	AdminLogin      = "admin"
	DefaultPassword = "slf@2023"
)

var ErrNotWorkerEmail = errors.New("email does not belong to a worker account")

// WorkerEmail returns the synthetic login email for a worker id.
func WorkerEmail(workerID uint) string {
	return fmt.Sprintf("%d@%s", workerID, EmailDomain)
}

// AdminEmail returns the administrator's login email.
func AdminEmail() string {
	return AdminLogin + "@" + EmailDomain
}

// LoginEmail expands the value typed into the login form. The reserved
// literal "admin" maps to the administrator email; anything else must be a
// numeric worker id.
func LoginEmail(login string) (string, error) {
	login = strings.TrimSpace(login)
	if strings.EqualFold(login, AdminLogin) {
		return AdminEmail(), nil
	}
	id, err := strconv.ParseUint(login, 10, 32)
	if err != nil || id == 0 {
		return "", fmt.Errorf("invalid worker id %q", login)
	}
	return WorkerEmail(uint(id)), nil
}

// WorkerIDFromEmail recovers the numeric worker id from a synthetic email.
// The admin email and malformed addresses return ErrNotWorkerEmail.
func WorkerIDFromEmail(email string) (uint, error) {
	local, domain, found := strings.Cut(email, "@")
	if !found || domain != EmailDomain || strings.EqualFold(local, AdminLogin) {
		return 0, ErrNotWorkerEmail
	}
	id, err := strconv.ParseUint(local, 10, 32)
	if err != nil || id == 0 {
		return 0, ErrNotWorkerEmail
	}
	return uint(id), nil
}
