package errors

var ErrUserNotFound = newError(KindNotFound, "USER_NOT_FOUND", "user not found")
