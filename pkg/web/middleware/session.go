package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol"
	jwth "github.com/hertz-contrib/jwt"

	"car-catalog/pkg/common/config"
	apperrors "car-catalog/pkg/common/errors"
	"car-catalog/pkg/core/session"
	"car-catalog/pkg/web/model"
)

// IdentityKey 认证通过后 Principal 存放在 RequestContext 中的键
const IdentityKey = session.ClaimUserID

const (
	msgNotAuthenticated = "Not Authenticated."
	msgMissingLogin     = "Email and password are required."
	msgUnexpected       = "An unexpected error occurred."

	authErrKey = "auth_error"
)

// Authenticator 校验登录凭证
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (session.Principal, error)
}

// NewSessionAuthority 基于 JWT 的会话：登录签发、刷新、注销以及受保护路由的校验。
// 令牌可以通过 Authorization 头或 cookie 传递。
func NewSessionAuthority(cfg config.JWTAuthConfig, auth Authenticator) (*jwth.HertzJWTMiddleware, error) {
	return jwth.New(&jwth.HertzJWTMiddleware{
		Realm:            cfg.Issuer,
		SigningAlgorithm: cfg.SigningMethod,
		Key:              []byte(cfg.Secret),
		Timeout:          cfg.ExpireDuration,
		MaxRefresh:       cfg.MaxRefresh,
		IdentityKey:      IdentityKey,
		TokenLookup:      "header: Authorization, cookie: " + cfg.CookieName,
		TokenHeadName:    "Bearer",
		TimeFunc:         time.Now,

		SendCookie:     true,
		CookieName:     cfg.CookieName,
		CookieHTTPOnly: true,
		CookieSameSite: protocol.CookieSameSiteLaxMode,

		Authenticator: func(ctx context.Context, c *app.RequestContext) (interface{}, error) {
			var req model.SignInReq
			if err := c.BindJSON(&req); err != nil {
				return nil, jwth.ErrMissingLoginValues
			}
			email := req.Login()
			if email == "" || req.Password == "" {
				return nil, jwth.ErrMissingLoginValues
			}

			p, err := auth.Authenticate(ctx, email, req.Password)
			if err != nil {
				c.Set(authErrKey, err)
				return nil, err
			}
			return p, nil
		},

		PayloadFunc: func(data interface{}) jwth.MapClaims {
			if p, ok := data.(session.Principal); ok {
				return jwth.MapClaims(p.Claims())
			}
			return jwth.MapClaims{}
		},

		IdentityHandler: func(ctx context.Context, c *app.RequestContext) interface{} {
			return session.FromClaims(jwth.ExtractClaims(ctx, c))
		},

		HTTPStatusMessageFunc: func(e error, ctx context.Context, c *app.RequestContext) string {
			if appErr, ok := apperrors.As(e); ok && appErr.Public() {
				return appErr.Message
			}
			if errors.Is(e, jwth.ErrMissingLoginValues) {
				return msgMissingLogin
			}
			if _, ok := apperrors.As(e); ok {
				return msgUnexpected
			}
			return msgNotAuthenticated
		},

		Unauthorized: func(ctx context.Context, c *app.RequestContext, code int, message string) {
			// 登录时存储故障不应表现为凭证错误
			if v, ok := c.Get(authErrKey); ok {
				if err, _ := v.(error); apperrors.KindOf(err) == apperrors.KindStore {
					hlog.CtxErrorf(ctx, "sign-in failed: %v", err)
					code = http.StatusInternalServerError
				}
			}
			if code == http.StatusForbidden {
				code = http.StatusUnauthorized
			}
			c.JSON(code, utils.H{"success": false, "message": message})
		},

		LoginResponse: func(ctx context.Context, c *app.RequestContext, code int, token string, expire time.Time) {
			c.JSON(http.StatusOK, model.TokenResp{Success: true, Token: token, Expire: expire.UTC()})
		},

		RefreshResponse: func(ctx context.Context, c *app.RequestContext, code int, token string, expire time.Time) {
			c.JSON(http.StatusOK, model.TokenResp{Success: true, Token: token, Expire: expire.UTC()})
		},

		LogoutResponse: func(ctx context.Context, c *app.RequestContext, code int) {
			c.JSON(http.StatusOK, model.MessageResp{Success: true, Message: "Signed out."})
		},
	})
}

// PrincipalFrom 读取认证中间件写入的 Principal，未认证时返回零值
func PrincipalFrom(c *app.RequestContext) session.Principal {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return session.Principal{}
	}
	p, _ := v.(session.Principal)
	return p
}

// PageGate 页面路由守卫：未登录访问 dashboard 跳转登录页，已登录访问登录/注册页跳转 dashboard
func PageGate(mw *jwth.HertzJWTMiddleware, requireSession bool) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		claims, err := mw.GetClaimsFromJWT(ctx, c)
		signedIn := err == nil && session.FromClaims(claims).Authenticated()

		switch {
		case requireSession && !signedIn:
			c.Redirect(http.StatusFound, []byte("/signin"))
			c.Abort()
		case !requireSession && signedIn:
			c.Redirect(http.StatusFound, []byte("/dashboard"))
			c.Abort()
		default:
			c.Next(ctx)
		}
	}
}
