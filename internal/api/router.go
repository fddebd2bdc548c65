package api

import (
	"net/http"
	"time"
	"tle_zone_dashboard/internal/api/handler"
	"tle_zone_dashboard/internal/api/middleware"
	"tle_zone_dashboard/internal/app/service"
	"tle_zone_dashboard/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Services struct {
	Auth          *service.AuthService
	Customers     *service.CustomerService
	Inbox         *service.InboxService
	Members       *service.MemberService
	Questions     *service.QuestionService
	Notifications *service.NotificationService
	Deliveries    *service.DeliveryService
	Stats         *service.StatsService
}

type Options struct {
	WebhookSecret string

	// LoginRate and LoginBurst throttle POST /auth/login per client address.
	LoginRate  rate.Limit
	LoginBurst int
}

func NewRouter(svcs Services, opts Options, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	validate := validator.New()
	loginLimiter := middleware.NewRateLimiter(opts.LoginRate, opts.LoginBurst)

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Looks for "Authorization: Bearer T" and puts the verified token in context.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Route("/auth", func(auth chi.Router) {
			auth.Use(middleware.RateLimit(loginLimiter))
			handler.NewAuthHandler(svcs.Auth, validate).RegisterRoutes(auth)
		})
		v1.Route("/customers", handler.NewCustomerHandler(svcs.Customers, validate).RegisterRoutes)
		v1.Route("/mails", handler.NewMailHandler(svcs.Inbox, validate).RegisterRoutes)
		v1.Route("/members", handler.NewMemberHandler(svcs.Members, validate).RegisterRoutes)
		v1.Route("/questions", handler.NewQuestionHandler(svcs.Questions, validate).RegisterRoutes)
		v1.Route("/notifications", handler.NewNotificationHandler(svcs.Notifications, validate).RegisterRoutes)
		v1.Route("/stats", handler.NewStatsHandler(svcs.Stats).RegisterRoutes)

		// Gateway callbacks, authenticated by shared secret instead of JWT.
		v1.Route("/webhook", handler.NewWebhookHandler(svcs.Deliveries, validate, opts.WebhookSecret, log).RegisterRoutes)
	})

	return r
}
