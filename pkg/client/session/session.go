// Package session 在本地保存 CLI 登录令牌。
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoSession = errors.New("not signed in")

// Session 会话文件内容
type Session struct {
	Server string    `json:"server"`
	Token  string    `json:"token"`
	Expire time.Time `json:"expire"`
}

// DefaultPath ~/.car-catalog/session.json
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".car-catalog", "session.json"), nil
}

// Save 写入会话文件，仅当前用户可读
func Save(path string, s Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Load 文件不存在或令牌为空时返回 ErrNoSession
func Load(path string) (Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("parse session: %w", err)
	}
	if s.Token == "" {
		return Session{}, ErrNoSession
	}
	return s, nil
}

func Clear(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Claims 令牌中携带的用户信息
type Claims struct {
	UserID    string
	Name      string
	Email     string
	ExpiresAt time.Time
}

// Expired 以 now 为准判断
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Decode 本地解析令牌，不校验签名；签名由服务端负责
func Decode(token string) (Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Claims{}, fmt.Errorf("decode token: %w", err)
	}

	str := func(key string) string {
		v, _ := claims[key].(string)
		return v
	}
	out := Claims{
		UserID: str("user_id"),
		Name:   str("name"),
		Email:  str("email"),
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
