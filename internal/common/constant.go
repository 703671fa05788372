package common

// Cookie names used by the web layer to carry the session.
const (
	AccessTokenCookieName  = "access_token"
	RefreshTokenCookieName = "refresh_token"
	FlashCookieName        = "flash"
)
