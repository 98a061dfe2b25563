package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type VerifyAccountMessage struct {
	UID        string `json:"uid"`
	Token      string `json:"token"`
	OnResponse func(resp *VerifyAccountResponse)
}

func (e VerifyAccountMessage) Type() string { return "user.verify_account" }

type VerifyAccountResponse struct {
	User            *User
	AlreadyVerified bool
	Success         bool
}

// VerifyAccountHandler consumes the verification link from the welcome
// email. An unknown or garbled identity reference is indistinguishable
// from a stale token on purpose.
type VerifyAccountHandler struct {
	repo   RepositoryManager
	codec  *VerificationCodec
	logger Logger
}

func NewVerifyAccountHandler(repo RepositoryManager, codec *VerificationCodec) *VerifyAccountHandler {
	return &VerifyAccountHandler{
		repo:   repo,
		codec:  codec,
		logger: defLogger{},
	}
}

func (h *VerifyAccountHandler) WithLogger(l Logger) *VerifyAccountHandler {
	if l != nil {
		h.logger = l
	}
	return h
}

func (h *VerifyAccountHandler) Execute(ctx context.Context, event VerifyAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account verification",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyAccountHandler) execute(ctx context.Context, event VerifyAccountMessage) error {
	resp := &VerifyAccountResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	id, err := DecodeUserRef(event.UID)
	if err != nil {
		return ErrVerificationExpired
	}

	user, err := h.repo.Users().GetByID(ctx, id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrVerificationExpired
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load user for verification")
	}

	if user.IsVerified {
		resp.User = user
		resp.AlreadyVerified = true
		resp.Success = true
		if event.OnResponse != nil {
			event.OnResponse(resp)
		}
		return nil
	}

	if !h.codec.Check(user, event.Token) {
		return ErrVerificationExpired
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		updated, err := h.repo.Users().UpdateProfileTx(ctx, tx, &User{
			ID:         user.ID,
			IsVerified: true,
		})
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark user verified")
		}
		resp.User = updated
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "account verification transaction failed")
	}

	resp.Success = true
	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
