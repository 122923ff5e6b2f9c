package cache

import (
	"fmt"

	redis "github.com/redis/go-redis/v9"
)

// key names definition
// key names in lua script should follow these formats
const (
	RevokedTokenKey  = "auth:revoked:%s"        // marker of a logged out token, '%s' is the token hash
	LoginAttemptsKey = "auth:login:%s:attempts" // login attempts inside the current window, '%s' is the normalized email
)

func MakeRevokedTokenKey(tokenHash string) string {
	return fmt.Sprintf(RevokedTokenKey, tokenHash)
}

func MakeLoginAttemptsKey(email string) string {
	return fmt.Sprintf(LoginAttemptsKey, email)
}

// lua scripts
var loginAttemptScript = redis.NewScript(`
	-- KEYS[1] = auth:login:{email}:attempts

	-- ARGV[1] = window in milliseconds

	local attempts = redis.call("INCR", KEYS[1])

	-- the window starts with the first attempt
	if attempts == 1 then
		redis.call("PEXPIRE", KEYS[1], ARGV[1])
	end

	return attempts
`)

var revokeTokenScript = redis.NewScript(`
	-- KEYS[1] = auth:revoked:{hash}

	-- ARGV[1] = ttl in milliseconds

	-- keep the longest ttl if the token is revoked twice
	local ttl = redis.call("PTTL", KEYS[1])
	if ttl >= tonumber(ARGV[1]) then
		return 0
	end

	redis.call("SET", KEYS[1], "1", "PX", ARGV[1])
	return 1
`)
