// Package session 定义已认证的调用者。所有业务操作显式接收 Principal，
// 不从全局或请求上下文中隐式读取。
package session

// Principal 当前会话的用户
type Principal struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// Authenticated 是否携带有效的用户标识
func (p Principal) Authenticated() bool {
	return p.UserID != ""
}

// Owns 判断资源归属
func (p Principal) Owns(ownerID string) bool {
	return p.Authenticated() && p.UserID == ownerID
}

// Claim keys carried in the session token.
const (
	ClaimUserID = "user_id"
	ClaimName   = "name"
	ClaimEmail  = "email"
)

// FromClaims 从 JWT claims 还原 Principal，缺少 user_id 时返回零值
func FromClaims(claims map[string]interface{}) Principal {
	str := func(key string) string {
		v, _ := claims[key].(string)
		return v
	}
	return Principal{
		UserID: str(ClaimUserID),
		Name:   str(ClaimName),
		Email:  str(ClaimEmail),
	}
}

// Claims 转换为写入令牌的 claims
func (p Principal) Claims() map[string]interface{} {
	return map[string]interface{}{
		ClaimUserID: p.UserID,
		ClaimName:   p.Name,
		ClaimEmail:  p.Email,
	}
}
