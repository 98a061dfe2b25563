package accounts

// User-facing message catalogue. Handlers reference these constants so
// the API surface stays consistent across operations.
const (
	MsgBadRequest          = "Bad Request!"
	MsgUnauthorized        = "Unauthorized Access!"
	MsgInternalServerError = "Internal Server Error!"

	MsgInvalidUserCredential = "Incorrect email or password!"
	MsgUserAlreadyExists     = "User already exists!"
	MsgUserNotFound          = "User not found!"
	MsgUserNotActive         = "User is not active"
	MsgUserLoggedIn          = "You've successfully logged in"
	MsgUserLoggedOut         = "You've successfully logged out"

	MsgInvalidToken      = "Invalid Token!"
	MsgExpiredToken      = "Token has expired!"
	MsgMissingAuthHeader = "Authorization header is missing!"

	MsgInsufficientPermissions = "You do not have sufficient permissions to perform this action!"

	MsgInvalidOTP         = "Invalid OTP Provided"
	MsgEmailNotRegistered = "This email is not registered."
	MsgEmailNotVerified   = "This email is not verified. Only verified users can use this process."
	MsgAccountBlocked     = "Your account is blocked. Please contact your company administrator."
	MsgStaffLoginBlocked  = "Staff or Superuser accounts are not allowed to login."

	MsgMailSent = "Mail has been successfully sent."

	MsgPasswordUpdated     = "Password changed successfully."
	MsgOldPasswordMismatch = "Old password doesn't match."
	MsgSameAsOldPassword   = "New password cannot be the same as old password."

	MsgNewUserCreated  = "Account successfully created. A verification link has been sent to your email."
	MsgAccountVerified = "Successfully verified the user's email."
	MsgAlreadyVerified = "Your email is already verified."

	MsgDetailsFetched = "Information has been fetched successfully."
	MsgDetailsUpdated = "Information has been updated successfully."
)
