package directory

import (
	"errors"
	"log"

	"github.com/DanielBatteryStapler/daniel-authenticator/internal/naming"
	"github.com/DanielBatteryStapler/daniel-authenticator/internal/password"
	"github.com/DanielBatteryStapler/daniel-authenticator/internal/store"
	"github.com/DanielBatteryStapler/daniel-authenticator/internal/strand"
)

// Bind decides an authentication attempt against bindDN. The decision and
// its reason are appended to the strand; the caller only ever learns
// allowed or denied. A non-nil error means the store failed, not that the
// bind was denied.
func (d *Directory) Bind(bindDN, secret string, trail strand.Strand) (bool, strand.Strand, error) {
	trail = trail.Open("bind", bindDN)

	var (
		allowed bool
		phrase  string
		err     error
	)
	name := d.resolver.Resolve(bindDN)
	switch name.Kind {
	case naming.KindService:
		allowed, phrase, err = d.bindService(name.Service, secret)
	case naming.KindUser:
		allowed, phrase, err = d.bindUser(name.User, name.Service, secret)
	default:
		phrase = "invalid DN denied"
	}
	if err != nil {
		return false, trail, err
	}

	d.metrics.RecordBind(name.Kind.String(), allowed)
	return allowed, trail.Note(phrase).Close(), nil
}

func (d *Directory) bindService(name, secret string) (bool, string, error) {
	const denied = "service login denied"

	service, err := d.store.GetServiceByName(name)
	if errors.Is(err, store.ErrRecordNotFound) {
		log.Printf("Login by service %s failed, service does not exist", name)
		return false, denied, nil
	}
	if err != nil {
		return false, "", d.dbErr("bind service lookup", err)
	}
	if !service.Active {
		log.Printf("Login by service %s failed, service is inactive", name)
		return false, denied, nil
	}
	if !password.Verify(secret, service.PasswordHash) {
		log.Printf("Login by service %s failed, incorrect password", name)
		return false, denied, nil
	}
	return true, "service login allowed", nil
}

// bindUser runs the user login flow scoped to a service. Inactive and
// locked accounts are rejected before the password is checked, and those
// rejections never touch the failure counter; only a wrong password
// against a live account counts as a failed attempt.
func (d *Directory) bindUser(username, serviceName, secret string) (bool, string, error) {
	const denied = "user login denied"

	user, err := d.store.GetUserByUsername(username)
	if errors.Is(err, store.ErrRecordNotFound) {
		log.Printf("Login by user %s failed, user does not exist", username)
		return false, denied, nil
	}
	if err != nil {
		return false, "", d.dbErr("bind user lookup", err)
	}
	if !user.Active {
		log.Printf("Login by user %s failed, account is inactive", username)
		return false, denied, nil
	}
	if user.Locked {
		log.Printf("Login by user %s failed, account is locked", username)
		return false, denied, nil
	}

	state := password.LoginState{
		FailedAttempts: user.FailedLoginAttempts,
		Locked:         user.Locked,
		LastLoginAt:    user.LastLoginAt,
	}

	if !password.Verify(secret, user.PasswordHash) {
		next := d.tracker.OnFailure(state)
		if next.Locked && !state.Locked {
			log.Printf("User %s locked after %d failed login attempts", username, next.FailedAttempts)
			d.metrics.RecordAccountLocked()
		}
		if err := d.store.UpdateLoginState(user.ID, next); err != nil {
			return false, "", d.dbErr("bind record failure", err)
		}
		log.Printf("Login by user %s failed, incorrect password", username)
		return false, denied, nil
	}

	// The password matched: the login counts as successful and is recorded
	// before the membership check, so a later membership denial does not
	// leave a stale failure counter.
	if err := d.store.UpdateLoginState(user.ID, d.tracker.OnSuccess(state)); err != nil {
		return false, "", d.dbErr("bind record success", err)
	}

	// Membership denials read as credential failures so a prober with a
	// stolen password cannot map which services an account belongs to.
	service, err := d.store.GetServiceByName(serviceName)
	if errors.Is(err, store.ErrRecordNotFound) {
		log.Printf("Login by user %s failed, service %s does not exist", username, serviceName)
		return false, denied, nil
	}
	if err != nil {
		return false, "", d.dbErr("bind service lookup", err)
	}
	member, err := d.store.IsUserInService(user.ID, service.ID)
	if err != nil {
		return false, "", d.dbErr("bind membership check", err)
	}
	if !member {
		log.Printf("Login by user %s failed, not a member of service %s", username, serviceName)
		return false, denied, nil
	}

	log.Printf("Login by user %s through service %s succeeded", username, serviceName)
	return true, "user login allowed", nil
}
