package handler

import (
	"context"
	"time"

	"github.com/grottogame/server/internal/net"
	"github.com/grottogame/server/internal/net/packet"
	"go.uber.org/zap"
)

// HandleLogin processes C_LOGIN: account name + password. Unknown
// accounts are created on the fly when auto_create_accounts is on, the
// arcade-style flow the lobby expects. Blocking DB work is acceptable
// here: login happens once per session, before the player is in play.
func HandleLogin(sess *net.Session, r *packet.Reader, deps *Deps) {
	account := r.ReadS()
	password := r.ReadS()

	if !validAccountName(account) {
		SendLoginResult(sess, LoginBadName, "account name must be 2-16 letters, digits or underscore")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	row, err := deps.AccountRepo.Load(ctx, account)
	if err != nil {
		deps.Log.Error("account load failed", zap.String("account", account), zap.Error(err))
		SendLoginResult(sess, LoginError, "try again")
		return
	}

	if row == nil {
		if !deps.Config.Server.AutoCreateAccounts {
			SendLoginResult(sess, LoginBadPassword, "unknown account")
			return
		}
		row, err = deps.AccountRepo.Create(ctx, account, password, sess.IP)
		if err != nil {
			deps.Log.Error("account create failed", zap.String("account", account), zap.Error(err))
			SendLoginResult(sess, LoginError, "try again")
			return
		}
		deps.Log.Info("account created", zap.String("account", account), zap.Uint64("session", sess.ID))
	} else {
		if row.Banned {
			SendLoginResult(sess, LoginBanned, "account banned")
			sess.Close()
			return
		}
		if !deps.AccountRepo.ValidatePassword(row.PasswordHash, password) {
			SendLoginResult(sess, LoginBadPassword, "wrong password")
			return
		}
	}

	// One live session per account.
	for _, other := range deps.Sessions.All() {
		if other.ID != sess.ID && other.AccountName == account {
			SendLoginResult(sess, LoginAlreadyOn, "account already online")
			return
		}
	}

	if err := deps.AccountRepo.UpdateLastSeen(ctx, account, sess.IP); err != nil {
		deps.Log.Warn("last_seen update failed", zap.String("account", account), zap.Error(err))
	}

	sess.AccountName = account
	sess.AccessLevel = row.AccessLevel
	sess.SetState(packet.StateAuthed)
	SendLoginResult(sess, LoginOK, "")
	deps.Log.Info("login ok", zap.String("account", account), zap.Uint64("session", sess.ID))
}

func validAccountName(name string) bool {
	if len(name) < 2 || len(name) > 16 {
		return false
	}
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_':
		default:
			return false
		}
	}
	return true
}
