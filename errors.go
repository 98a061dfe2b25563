package accounts

import (
	goerrors "github.com/goliatone/go-errors"
)

// Text codes carried on structured errors so API clients can branch
// without string matching on messages.
const (
	TextCodeInvalidToken        = "INVALID_TOKEN"
	TextCodeUserInactive        = "USER_INACTIVE"
	TextCodeInvalidCreds        = "INVALID_CREDENTIALS"
	TextCodeEmailNotVerified    = "EMAIL_NOT_VERIFIED"
	TextCodeStaffLoginBlocked   = "STAFF_LOGIN_BLOCKED"
	TextCodeDuplicateEmail      = "DUPLICATE_EMAIL"
	TextCodeUserNotFound        = "USER_NOT_FOUND"
	TextCodeEmailNotRegistered  = "EMAIL_NOT_REGISTERED"
	TextCodeInvalidOTP          = "INVALID_OTP"
	TextCodeSamePassword        = "SAME_AS_OLD_PASSWORD"
	TextCodePasswordMismatch    = "OLD_PASSWORD_MISMATCH"
	TextCodeVerificationExpired = "VERIFICATION_EXPIRED"
	TextCodeForbidden           = "FORBIDDEN"
	TextCodeEmptyPassword       = "EMPTY_PASSWORD"
	TextCodeMissingAuthHeader   = "MISSING_AUTH_HEADER"
)

// ErrInvalidToken is returned when a bearer key resolves to no token.
var ErrInvalidToken = goerrors.New(MsgInvalidToken, goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidToken).
	WithCode(goerrors.CodeUnauthorized)

// ErrUserInactive is returned when the token's owner is deactivated.
var ErrUserInactive = goerrors.New(MsgUserNotActive, goerrors.CategoryAuth).
	WithTextCode(TextCodeUserInactive).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidCredentials is returned on a password mismatch at login.
var ErrInvalidCredentials = goerrors.New(MsgInvalidUserCredential, goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeBadRequest)

// ErrEmailNotVerified blocks unverified accounts from login and
// password recovery.
var ErrEmailNotVerified = goerrors.New(MsgEmailNotVerified, goerrors.CategoryAuthz).
	WithTextCode(TextCodeEmailNotVerified).
	WithCode(goerrors.CodeBadRequest)

// ErrStaffLoginBlocked rejects staff and superuser accounts on the
// application login path.
var ErrStaffLoginBlocked = goerrors.New(MsgStaffLoginBlocked, goerrors.CategoryAuthz).
	WithTextCode(TextCodeStaffLoginBlocked).
	WithCode(goerrors.CodeBadRequest)

// ErrAccountBlocked rejects deactivated accounts at login.
var ErrAccountBlocked = goerrors.New(MsgAccountBlocked, goerrors.CategoryAuthz).
	WithTextCode(TextCodeUserInactive).
	WithCode(goerrors.CodeBadRequest)

// ErrDuplicateEmail is returned when a signup email is already registered.
var ErrDuplicateEmail = goerrors.New(MsgUserAlreadyExists, goerrors.CategoryConflict).
	WithTextCode(TextCodeDuplicateEmail).
	WithCode(goerrors.CodeConflict)

// ErrUserNotFound is returned when a principal lookup comes up empty.
var ErrUserNotFound = goerrors.New(MsgUserNotFound, goerrors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrEmailNotRegistered is the forgot-password variant of a missing user.
var ErrEmailNotRegistered = goerrors.New(MsgEmailNotRegistered, goerrors.CategoryNotFound).
	WithTextCode(TextCodeEmailNotRegistered).
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidOTP is returned when the challenge code does not match.
var ErrInvalidOTP = goerrors.New(MsgInvalidOTP, goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidOTP).
	WithCode(goerrors.CodeBadRequest)

// ErrSamePassword rejects a password reset reusing the current password.
var ErrSamePassword = goerrors.New(MsgSameAsOldPassword, goerrors.CategoryConflict).
	WithTextCode(TextCodeSamePassword).
	WithCode(goerrors.CodeBadRequest)

// ErrOldPasswordMismatch rejects a reset when the current password check fails.
var ErrOldPasswordMismatch = goerrors.New(MsgOldPasswordMismatch, goerrors.CategoryAuth).
	WithTextCode(TextCodePasswordMismatch).
	WithCode(goerrors.CodeBadRequest)

// ErrVerificationExpired covers a bad uid, an unknown user, or a stale
// verification token.
var ErrVerificationExpired = goerrors.New(MsgExpiredToken, goerrors.CategoryAuth).
	WithTextCode(TextCodeVerificationExpired).
	WithCode(goerrors.CodeBadRequest)

// ErrForbidden is returned when the principal lacks the required capability.
var ErrForbidden = goerrors.New(MsgInsufficientPermissions, goerrors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(goerrors.CodeForbidden)

// ErrMissingAuthHeader is returned when a protected route gets no
// Authorization header at all.
var ErrMissingAuthHeader = goerrors.New(MsgMissingAuthHeader, goerrors.CategoryAuth).
	WithTextCode(TextCodeMissingAuthHeader).
	WithCode(goerrors.CodeUnauthorized)

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = goerrors.New("password cannot be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the internal bcrypt mismatch sentinel.
var ErrMismatchedHashAndPassword = goerrors.New(MsgInvalidUserCredential, goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeBadRequest)
