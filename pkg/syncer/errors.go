package syncer

import "errors"

var (
	ErrNotPermitted   = errors.New("not permitted")
	ErrSenderMuted    = errors.New("sender is muted")
	ErrSenderBanned   = errors.New("sender is banned")
	ErrNotMember      = errors.New("not a member of this group")
	ErrGroupRequired  = errors.New("message has no group id")
	ErrRecordNotFound = errors.New("record not found")
	ErrNoProfile      = errors.New("no profile for current alias")
	ErrClosedReg      = errors.New("registration is closed")
	ErrInvalidInput   = errors.New("invalid input")
)
