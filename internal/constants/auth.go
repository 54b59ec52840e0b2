package constants

// JWT Claim 及 gin 上下文传递键
const (
	JwtUserID   = "user_id"
	JwtUserName = "username"
	JwtUserRole = "role"
)
