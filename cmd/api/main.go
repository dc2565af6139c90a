package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"pasarmobil/internal/adapter/api"
	"pasarmobil/internal/adapter/api/handler"
	apimiddleware "pasarmobil/internal/adapter/api/middleware"
	"pasarmobil/internal/adapter/api/router"
	"pasarmobil/internal/adapter/repository"
	"pasarmobil/internal/infrastructure/firebase"
	"pasarmobil/internal/infrastructure/ratelimit"
	"pasarmobil/internal/infrastructure/websocket"
	"pasarmobil/internal/usecase"
	"pasarmobil/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opts []option.ClientOption

	// Service account from environment variable (production), falling back to
	// a file path (local development). Neither set means application default
	// credentials or the Firestore emulator.
	if serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); serviceAccountJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(serviceAccountJSON)))
	} else if serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"); serviceAccountPath != "" {
		if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
		}
		opts = append(opts, option.WithCredentialsFile(serviceAccountPath))
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	roomRepo := repository.NewFirestoreRoomRepository(firestoreClient)
	itemRepo := repository.NewFirestoreItemRepository(firestoreClient)
	conversationRepo := repository.NewFirestoreConversationRepository(firestoreClient)

	// In development bearer tokens are locally minted HS256 JWTs; everywhere
	// else they are Firebase ID tokens.
	var verifier firebase.TokenVerifier
	var devTokens *firebase.DevTokenService
	if cfg.IsDevelopment() {
		devTokens = firebase.NewDevTokenService(cfg.DevTokenSecret, cfg.DevTokenExpiry)
		verifier = devTokens
	} else {
		firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		authClient, err := firebaseApp.Auth(ctx)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase Auth: %v", err)
		}
		verifier = firebase.NewAuthClient(authClient, userRepo)
	}

	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	access := usecase.NewChatAccess(roomRepo)
	conversationUseCase := usecase.NewConversationUseCase(conversationRepo, roomRepo, userRepo, access, rateLimiter)
	chatUseCase := usecase.NewChatUseCase(conversationRepo, roomRepo, itemRepo, userRepo, access, wsManager, rateLimiter)

	// Joins over WebSocket go through the same read-access checks as HTTP.
	wsManager.SetAuthorizer(chatUseCase)

	e := echo.New()

	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(verifier)
	superadminMiddleware := apimiddleware.NewSuperadminMiddleware()

	handlers := router.Handlers{
		Chat:      handler.NewChatHandler(conversationUseCase, chatUseCase),
		WebSocket: handler.NewWebSocketHandler(wsManager, verifier),
		Health:    handler.NewHealthHandler(),
	}
	if devTokens != nil {
		handlers.DevToken = handler.NewDevTokenHandler(devTokens)
	}

	router.Setup(e, handlers, authMiddleware, superadminMiddleware, cfg.Environment)

	log.Printf("Starting server on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
