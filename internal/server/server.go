// Package server wires the router: middleware, handlers, and route
// definitions. It is the composition root below main — every repository,
// service, and handler is assembled here.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/bazaar/internal/auth"
	"github.com/sakif/bazaar/internal/config"
	"github.com/sakif/bazaar/internal/handler"
	"github.com/sakif/bazaar/internal/middleware"
	"github.com/sakif/bazaar/internal/repository/mongodb"
	"github.com/sakif/bazaar/internal/service"
	"github.com/sakif/bazaar/internal/storage/disk"
)

// Server owns the router and the document-store connection; the connection
// is closed on shutdown.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *mongodb.DB
}

// New connects to the document store, assembles the full dependency chain,
// and registers every route.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := mongodb.New(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("connecting to document store: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		_ = db.Close(context.Background())
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and all route handlers.
//
// Middleware order: RequestID → RealIP → Logger → Recoverer. Recoverer is
// the last resort; handlers are expected to map their own failures.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	google := auth.NewGoogleProvider(s.config.GoogleClientID, s.config.GoogleClientSecret, s.config.GoogleCallbackURL)

	assets, err := disk.New(s.config.UploadDir, s.config.PublicBaseURL)
	if err != nil {
		return fmt.Errorf("creating asset store: %w", err)
	}

	userSvc := service.NewUserService(s.db.Users, s.db.Follows, s.logger)
	authSvc := service.NewAuthService(s.db.Users, tokens, s.logger)
	postSvc := service.NewPostService(s.db.Posts, s.db.Likes, s.db.Users, assets, s.logger)
	catalogSvc := service.NewCatalogService(s.db.Categories, s.db.Products, s.db.Offers, s.db.Users, assets, s.logger)
	commerceSvc := service.NewCommerceService(s.db.Carts, s.db.Reviews, s.db.Offers, s.db.Categories, s.db.Products, s.logger)

	userHandler := handler.NewUserHandler(userSvc, s.logger)
	authHandler := handler.NewAuthHandler(google, authSvc, s.logger)
	postHandler := handler.NewPostHandler(postSvc, userSvc, s.logger)
	catalogHandler := handler.NewCatalogHandler(catalogSvc, s.logger)
	commerceHandler := handler.NewCommerceHandler(commerceSvc, s.logger)
	uploadHandler := handler.NewUploadHandler(assets, s.logger)

	requireAuth := auth.RequireAuth(tokens)
	optionalAuth := auth.OptionalAuth(tokens)

	// Asset gateway. Uploaded objects are served straight from the upload
	// directory.
	s.router.Post("/upload", uploadHandler.HandleUpload)
	fileServer := http.FileServer(http.Dir(assets.Dir()))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	// OAuth login flow.
	s.router.Get("/auth/google/login", authHandler.HandleGoogleLogin)
	s.router.Get("/auth/google/callback", authHandler.HandleGoogleCallback)
	s.router.Post("/auth/logout", authHandler.HandleLogout)
	s.router.With(requireAuth).Get("/auth/me", authHandler.HandleMe)

	s.router.Route("/api", func(r chi.Router) {
		// Profiles and the follow graph.
		r.Get("/user/profile", userHandler.HandleGetProfile)
		r.With(requireAuth).Put("/user/profile", userHandler.HandleUpdateProfile)
		r.With(requireAuth).Post("/user/register", userHandler.HandleRegister)
		r.With(requireAuth).Post("/user/follow/{currentUserId}/{otherUserId}", userHandler.HandleFollow)
		r.With(requireAuth).Delete("/user/unfollow/{currentUserId}/{otherUserId}", userHandler.HandleUnfollow)

		// Feed.
		r.With(requireAuth).Post("/posts", postHandler.HandleCreate)
		r.With(optionalAuth).Get("/posts", postHandler.HandleList)
		r.With(requireAuth).Get("/posts/{postId}", postHandler.HandleGet)
		r.With(requireAuth).Put("/posts/{postId}", postHandler.HandleUpdate)
		r.With(requireAuth).Delete("/posts/{postId}", postHandler.HandleDelete)
		r.With(requireAuth).Post("/posts/{postId}/like", postHandler.HandleLike)
		r.With(requireAuth).Delete("/posts/{postId}/unlike/{likeId}", postHandler.HandleUnlike)
		r.Get("/posts/{postId}/likedusers", postHandler.HandleLikedUsers)

		// Catalog.
		r.Post("/category", catalogHandler.HandleCreateCategory)
		r.Get("/category", catalogHandler.HandleListCategories)
		r.Get("/category/{id}", catalogHandler.HandleGetCategory)

		r.Get("/product", catalogHandler.HandleListProducts)
		r.Get("/product/category/{categories}", catalogHandler.HandleListProductsByCategory)
		r.Get("/product/{id}", catalogHandler.HandleGetProduct)
		r.With(requireAuth).Post("/product", catalogHandler.HandleAddProduct)
		r.With(requireAuth).Patch("/product/{id}", catalogHandler.HandleEditProduct)
		r.With(requireAuth).Delete("/product/{id}", catalogHandler.HandleDeleteProduct)

		r.Get("/offers", catalogHandler.HandleListOffers)
		r.Get("/offers/{id}", catalogHandler.HandleGetOffer)
		r.Post("/offers", catalogHandler.HandleCreateOffer)
		r.Put("/offers/{id}", catalogHandler.HandleUpdateOffer)
		r.Delete("/offers/{id}", catalogHandler.HandleDeleteOffer)

		// Commerce support.
		r.Get("/carts", commerceHandler.HandleListCarts)
		r.Get("/carts/{id}", commerceHandler.HandleGetCart)
		r.Post("/carts", commerceHandler.HandleCreateCart)
		r.Put("/carts/{id}", commerceHandler.HandleUpdateCart)
		r.Delete("/carts/{id}", commerceHandler.HandleDeleteCart)

		r.Get("/reviews", commerceHandler.HandleListReviews)
		r.Get("/reviews/user/{userId}", commerceHandler.HandleListReviewsByUser)
		r.Get("/reviews/product/{productId}", commerceHandler.HandleListReviewsByProduct)
		r.Get("/reviews/{id}", commerceHandler.HandleGetReview)
		r.Post("/reviews", commerceHandler.HandleCreateReview)
		r.Put("/reviews/{id}", commerceHandler.HandleUpdateReview)
		r.Delete("/reviews/{id}", commerceHandler.HandleDeleteReview)

		r.Get("/store", commerceHandler.HandleStorefront)
	})

	return nil
}

// Start runs the HTTP server until a shutdown signal arrives, then drains
// in-flight requests and closes the store connection.
func (s *Server) Start() error {
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.db.Close(ctx); err != nil {
			s.logger.Error("closing document store", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", s.config.PublicBaseURL),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
