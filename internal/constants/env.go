package constants

const (
	EnvAPIURL      = "HABITSHARE_API_URL"
	EnvRealtimeURL = "HABITSHARE_REALTIME_URL"
	EnvAuthKey     = "HABITSHARE_AUTH_KEY"
	EnvConfigDir   = "HABITSHARE_CONFIG_DIR"
	EnvDebug       = "HABITSHARE_DEBUG"

	EnvServerListen      = "HABITSHARED_LISTEN"
	EnvServerDatabase    = "HABITSHARED_DATABASE"
	EnvServerRealtimeDir = "HABITSHARED_REALTIME_DIR"
	EnvServerJWTSecret   = "HABITSHARED_JWT_SECRET"
	EnvServerPubKey      = "HABITSHARED_PUBLISHABLE_KEY"
	EnvServerTokenTTL    = "HABITSHARED_TOKEN_TTL"
	EnvServerDebug       = "HABITSHARED_DEBUG"
)
