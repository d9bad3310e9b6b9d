package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/r56149203/EduSphere/model"
	"github.com/r56149203/EduSphere/utils/auth"
	"github.com/r56149203/EduSphere/utils/response"
	"gorm.io/gorm"
)

// SessionCookie holds the signed session token
const SessionCookie = "edusphere_session"

const sessionLocal = "session"

// Session is the request-scoped identity of the caller
type Session struct {
	UserID    uint
	Role      string
	Name      string
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

// IsAdmin reports whether the caller holds the admin role
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == model.RoleAdmin
}

// AuthMiddleware turns the session cookie into a Session
type AuthMiddleware struct {
	jwtManager       *auth.JWTManager
	blacklistService *auth.BlacklistService
	db               *gorm.DB
	secure           bool
}

// NewAuthMiddleware creates a new auth middleware; secure marks cookies https-only
func NewAuthMiddleware(jwtManager *auth.JWTManager, db *gorm.DB, secure bool) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:       jwtManager,
		blacklistService: auth.NewBlacklistService(db),
		db:               db,
		secure:           secure,
	}
}

// Load attaches the Session when the cookie is valid. Invalid cookies are cleared
// and the request continues anonymously.
func (m *AuthMiddleware) Load() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(SessionCookie)
		if tokenString == "" {
			return c.Next()
		}

		session, err := m.resolve(c, tokenString)
		if err != nil {
			if !isExpectedSessionError(err) {
				log.Errorf("session: %v", err)
			}
			m.clearCookie(c)
			return c.Next()
		}

		c.Locals(sessionLocal, session)
		return c.Next()
	}
}

var errSessionEnded = errors.New("session ended")

func (m *AuthMiddleware) resolve(c *fiber.Ctx, tokenString string) (*Session, error) {
	claims, err := m.jwtManager.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	// Check if token is revoked (blacklisted)
	isRevoked, err := m.blacklistService.IsTokenRevoked(c.UserContext(), claims.ID)
	if err != nil {
		return nil, err
	}
	if isRevoked {
		return nil, errSessionEnded
	}

	// Load user so role changes and deletions apply immediately
	var user model.User
	if err := m.db.WithContext(c.UserContext()).First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errSessionEnded
		}
		return nil, err
	}

	if user.TokenVersion != claims.TokenVersion {
		return nil, errSessionEnded
	}

	session := &Session{
		UserID:  user.ID,
		Role:    user.Role,
		Name:    user.FullName,
		Email:   user.Email,
		TokenID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// RequireLogin redirects anonymous callers to the login page
func (m *AuthMiddleware) RequireLogin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentSession(c) == nil {
			return c.Redirect("/login")
		}
		return c.Next()
	}
}

// RequireLoginJSON answers anonymous callers with a 401 JSON envelope
func (m *AuthMiddleware) RequireLoginJSON() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentSession(c) == nil {
			return response.Unauthorized(c, "Login required")
		}
		return c.Next()
	}
}

// RequireAdmin sends anonymous callers to login and other roles to the 403 page
func (m *AuthMiddleware) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := CurrentSession(c)
		if session == nil {
			return c.Redirect("/login")
		}
		if !session.IsAdmin() {
			return c.Redirect("/error?code=403")
		}
		return c.Next()
	}
}

// Issue signs a session for user and sets the cookie
func (m *AuthMiddleware) Issue(c *fiber.Ctx, user *model.User) error {
	token, _, expiresAt, err := m.jwtManager.GenerateSessionToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	return nil
}

// Revoke blacklists the current session token and clears the cookie
func (m *AuthMiddleware) Revoke(c *fiber.Ctx) error {
	defer m.clearCookie(c)

	session := CurrentSession(c)
	if session == nil || session.TokenID == "" {
		return nil
	}
	expiresAt := session.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(m.jwtManager.Expiry())
	}
	return m.blacklistService.RevokeToken(c.UserContext(), session.TokenID, session.UserID, expiresAt, "logout")
}

func (m *AuthMiddleware) clearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

// CurrentSession returns the caller's Session, nil when anonymous
func CurrentSession(c *fiber.Ctx) *Session {
	session, _ := c.Locals(sessionLocal).(*Session)
	return session
}

func isExpectedSessionError(err error) bool {
	return errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrExpiredToken) ||
		errors.Is(err, auth.ErrInvalidClaims) || errors.Is(err, errSessionEnded)
}

// SetSession attaches s to the request, for callers that authenticate by other means
func SetSession(c *fiber.Ctx, s *Session) {
	c.Locals(sessionLocal, s)
}
