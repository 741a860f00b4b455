package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/shulehq/shule/core"
	"github.com/shulehq/shule/core/user"
)

const (
	claimsContextKey = "userToken"
	contextUserKey   = "user"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OriginalIssuedAt int64  `json:"oriat,omitempty"`
	IsStudent        bool   `json:"is_student,omitempty"` // -> STUDENT PORTAL
	IsTeacher        bool   `json:"is_teacher,omitempty"` // -> TEACHER PORTAL
	IsAdmin          bool   `json:"is_admin,omitempty"`   // -> ADMIN PORTAL
	Role             string `json:"role,omitempty"`
	ProfileID        string `json:"profile_id,omitempty"` // teacher/student profile
}

// jwtConfig is the JWT auth middleware config.
func jwtConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    claimsContextKey,
		Claims:        new(Claims),
	}
}

func GetUserClaims(conf *core.Config, usr user.User, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	var oriat int64
	if len(origIat) > 0 {
		oriat = origIat[0]
	} else {
		oriat = nownix
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   usr.ID,
			Audience:  "Academia",
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OriginalIssuedAt: oriat,
		IsStudent:        usr.IsStudent(),
		IsTeacher:        usr.IsTeacher(),
		IsAdmin:          usr.IsAdmin(),
		Role:             string(usr.Role),
		ProfileID:        usr.ProfileID(),
	}
}

func authenticate(ctx echo.Context, conf *core.Config, uname, pwd string, svc *user.Service) (*Claims, error) {
	if usr, err := svc.GetByUsernameOrEmail(ctx.Request().Context(), uname); err == nil {
		if err = usr.CheckPassword(pwd); err == nil {
			if !usr.IsActive {
				return nil, errAccountDeactivated
			}
			if _, err = svc.SetLastLogin(ctx.Request().Context(), usr); err != nil {
				return nil, errors.Wrap(err, "recording last login")
			}
			return GetUserClaims(conf, usr), nil
		}
	}
	return nil, errAuthenticationFailed
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	cfg := jwtConfig(conf)
	method := jwt.GetSigningMethod(cfg.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(cfg.SigningKey)
	if err != nil {
		return "", errTokenSigningFailed
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(claimsContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextUser(ctx echo.Context, svc *user.Service, clms ...Claims) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}

	var claims Claims
	var err error
	if len(clms) > 0 {
		claims = clms[0]
	} else {
		claims, err = getContextClaims(ctx)
		if err != nil {
			return user.User{}, err
		}
	}

	usr, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return user.User{}, err
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}

func refreshToken(ctx echo.Context, conf *core.Config, svc *user.Service) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", err
	}

	usr, err := getContextUser(ctx, svc, claims)
	if err != nil {
		return "", err
	}

	// check if user is still active
	if !usr.IsActive {
		return "", errAccountDeactivated
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OriginalIssuedAt, 0).Add(conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	newClaims := GetUserClaims(conf, usr, claims.OriginalIssuedAt)
	return GenerateToken(conf, newClaims)
}
