package cli

import (
	"context"
	stderrors "errors"
	"log"
	"net/http"
	"time"

	"github.com/Huey-Lewy/Cloud-Vitals/internal/errors"
	"github.com/Huey-Lewy/Cloud-Vitals/internal/middleware"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// Per-IP limits leave room for a dashboard polling every second plus a
// handful of operators.
const (
	rateLimitPerSecond = 100
	rateLimitBurst     = 200
)

// newRouter builds a gin engine with the shared middleware stack.
func newRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(nil))
	router.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter(rateLimitPerSecond, rateLimitBurst)))
	return router
}

// serve runs the server until ctx is cancelled or the listener fails,
// then drains in-flight requests with a timeout.
func serve(ctx context.Context, srv *http.Server, tag string) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("%s listening on %s", tag, srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return errors.WrapWithCode(err, errors.ErrInternal, "HTTP server failed",
			"check that the listen address is valid and free")
	case <-ctx.Done():
	}

	log.Printf("%s shutting down", tag)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("%s Warning: shutdown incomplete: %v", tag, err)
	}
	return nil
}
