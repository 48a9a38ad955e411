package protocol

// Error codes carried by failed ACTION_RESULT and TASK_FAIL events.
const (
	CodeProtoBadRequest = "E_PROTO_BAD_REQUEST"

	CodeWorldBusy     = "E_WORLD_BUSY"
	CodeWorldNotFound = "E_WORLD_NOT_FOUND"
	CodeWorldDenied   = "E_WORLD_DENIED"
	CodeWorldCooldown = "E_WORLD_COOLDOWN"

	CodeBadRequest    = "E_BAD_REQUEST"
	CodeNoPermission  = "E_NO_PERMISSION"
	CodeNoResource    = "E_NO_RESOURCE"
	CodeInvalidTarget = "E_INVALID_TARGET"
	CodeRateLimit     = "E_RATE_LIMIT"
	CodeConflict      = "E_CONFLICT"
	CodeBlocked       = "E_BLOCKED"
	CodeStale         = "E_STALE"
	CodeInternal      = "E_INTERNAL"
)

// transient codes describe server load or timing, not the request itself.
var transient = map[string]bool{
	CodeWorldBusy:     true,
	CodeWorldCooldown: true,
	CodeRateLimit:     true,
	CodeStale:         true,
	CodeInternal:      true,
}

var permanent = map[string]bool{
	CodeProtoBadRequest: true,
	CodeWorldNotFound:   true,
	CodeWorldDenied:     true,
	CodeBadRequest:      true,
	CodeNoPermission:    true,
	CodeNoResource:      true,
	CodeInvalidTarget:   true,
	CodeConflict:        true,
	CodeBlocked:         true,
}

// IsKnownCode accepts the empty code of a successful result.
func IsKnownCode(code string) bool {
	return code == "" || transient[code] || permanent[code]
}

// Retryable reports whether the same task may succeed if issued again
// unchanged. Unknown codes are not retried.
func Retryable(code string) bool { return transient[code] }
