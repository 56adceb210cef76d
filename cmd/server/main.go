package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"github.com/mahmoudBH/gestion-etudiant/internal/auth"
	"github.com/mahmoudBH/gestion-etudiant/internal/config"
	"github.com/mahmoudBH/gestion-etudiant/internal/db"
	studentgrpc "github.com/mahmoudBH/gestion-etudiant/internal/grpc"
	internalhttp "github.com/mahmoudBH/gestion-etudiant/internal/http"
	"github.com/mahmoudBH/gestion-etudiant/internal/jobs"
	"github.com/mahmoudBH/gestion-etudiant/internal/repository"
	"github.com/mahmoudBH/gestion-etudiant/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env: %v", err)
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Fatalf("db connection failed: %v", err)
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			log.Fatalf("db migration failed: %v", err)
		}
	}
	store := repository.NewStore(pool)

	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL)
	if err != nil {
		log.Fatalf("token service init failed: %v", err)
	}

	var denylist auth.Denylist
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Fatalf("redis ping failed: %v", err)
		}
		cancel()
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Printf("redis close error: %v", err)
			}
		}()
		denylist = auth.NewRedisDenylist(redisClient)
	} else {
		log.Printf("REDIS_ADDR not set: logout cannot revoke tokens before they expire")
	}

	uploads := storage.NewUploads(cfg.UploadDir)
	if err := uploads.Ensure(); err != nil {
		log.Fatalf("upload dir init failed: %v", err)
	}

	server := internalhttp.NewServer(cfg, store, tokens, uploads, denylist)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	health := studentgrpc.NewHealth()
	jobs.StartHealthProbeJob(ctx, cfg, store, health)

	var grpcServer *grpc.Server
	if cfg.GRPCAddr != "" {
		srv, err := studentgrpc.NewServer(health, cfg.ServiceAuthToken)
		if err != nil {
			log.Fatalf("grpc server init failed: %v", err)
		}
		grpcServer = srv
		go func() {
			listener, err := net.Listen("tcp", cfg.GRPCAddr)
			if err != nil {
				log.Fatalf("grpc listen error: %v", err)
			}
			log.Printf("gestion-etudiant grpc listening on %s", cfg.GRPCAddr)
			if err := srv.Serve(listener); err != nil {
				log.Fatalf("grpc server error: %v", err)
			}
		}()
	}

	go func() {
		log.Printf("gestion-etudiant http listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	health.Shutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
}
