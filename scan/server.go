package scan

import (
	"context"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"raffle-system/config"
	"raffle-system/security"
	"raffle-system/services"
)

// Server is the event-day scan station. It validates QR tokens with nothing
// but the shared secret, so gate staff can keep scanning when the main
// backend or the venue uplink is down.
type Server struct {
	echo    *echo.Echo
	http    *http.Server
	tokens  *services.TokenService
	limiter *security.RateLimiter
	config  *config.Config
}

func NewServer(tokens *services.TokenService, redisClient *redis.Client, cfg *config.Config) *Server {
	e := echo.New()

	s := &Server{
		echo:    e,
		tokens:  tokens,
		limiter: security.NewRateLimiter(redisClient),
		config:  cfg,
	}

	e.Use(s.limiter.ScanRateLimit(30))

	e.GET("/healthz", s.health)
	e.GET("/verify/:token", s.verifyPath)
	e.POST("/verify", s.verifyBody)

	return s
}

// Start blocks serving scan requests until Shutdown.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:    ":" + s.config.ScanPort,
		Handler: s.echo,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) verifyPath(c echo.Context) error {
	if err := s.checkPasscode(c, c.Request().Header.Get("X-Scan-Passcode")); err != nil {
		return err
	}

	// QR URLs carry the token escaped; base64 blobs contain '/' and '+'.
	token, err := url.PathUnescape(c.PathParam("token"))
	if err != nil {
		token = c.PathParam("token")
	}

	result := s.tokens.Verify(token)
	return c.JSON(http.StatusOK, result)
}

func (s *Server) verifyBody(c echo.Context) error {
	var req struct {
		Token    string `json:"token"`
		Passcode string `json:"passcode"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	if req.Passcode == "" {
		req.Passcode = c.Request().Header.Get("X-Scan-Passcode")
	}
	if err := s.checkPasscode(c, req.Passcode); err != nil {
		return err
	}

	if req.Token == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Token is required"})
	}

	result := s.tokens.Verify(req.Token)
	return c.JSON(http.StatusOK, result)
}

// checkPasscode gates scanning behind the event-day passcode when one is
// configured. The hash lives in config; the plaintext never does.
func (s *Server) checkPasscode(c echo.Context, passcode string) error {
	if s.config.ScanPasscodeHash == "" {
		return nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.config.ScanPasscodeHash), []byte(passcode)); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid passcode"})
	}
	return nil
}
