package constants

// Cookie and header names of the token transport. Tokens travel both as
// httpOnly cookies (browser clients) and in the response body / bearer
// header (native clients).
const (
	CookieAccessToken  = "accessToken"
	CookieRefreshToken = "refreshToken"

	HeaderAuthorization = "Authorization"
	BearerPrefix        = "Bearer "
)
