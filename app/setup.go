package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/r56149203/EduSphere/api"
	"github.com/r56149203/EduSphere/config"
	"github.com/r56149203/EduSphere/database"
	"github.com/r56149203/EduSphere/router"
	"github.com/r56149203/EduSphere/services"
	"github.com/r56149203/EduSphere/services/cron"
	"github.com/r56149203/EduSphere/services/storage"
	"github.com/r56149203/EduSphere/utils"
	"github.com/r56149203/EduSphere/utils/cache"
)

const shutdownTimeout = 10 * time.Second

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM(getEnv)
	if err != nil {
		print("Check whether the Postgres is running or not\n")
		print("If not running, run the following command:\n")
		print("  make docker-up   (for Docker setup)\n")
		print("  make db-up       (for local PostgreSQL)\n")
		return err
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		print("Failed to initialize database tables\n")
		print("Error running migrations:\n")
		return err
	}

	activity, err := utils.NewActivityLogger(getEnv.ACTIVITY_LOG_PATH)
	if err != nil {
		return err
	}
	defer activity.Close()

	files, err := setupStorage(getEnv)
	if err != nil {
		return err
	}

	// Redis is optional; without it login throttling is off
	redisCache, err := cache.NewRedisCache(getEnv.REDIS_URL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if getEnv.CRON_ENABLED {
		grace := time.Duration(getEnv.ORPHAN_FILE_GRACE_MINUTES) * time.Minute
		cronManager = cron.NewCronManager(store.GetDB(), files, grace)
		if err := cronManager.Start(); err != nil {
			// Don't fail the app, just log the warning
			log.Printf("Warning: Failed to start cron jobs: %v", err)
			cronManager = nil
		}
	}
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
	}()

	// Init API
	maxUpload := int64(getEnv.MAX_UPLOAD_MB) << 20
	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT), maxUpload)

	// Setup Routes
	auditLogger := router.SetupRoutes(server.GetEngine(), store, router.Dependencies{
		Env:      getEnv,
		Files:    files,
		Cache:    redisCache,
		Activity: activity,
	})
	defer auditLogger.Wait()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Run() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// setupStorage returns the PDF store, mirrored to Spaces when configured
func setupStorage(env *config.EnviornmentVariable) (storage.FileStore, error) {
	local, err := storage.NewLocalStore(filepath.Join(env.UPLOAD_ROOT, services.PDFDir))
	if err != nil {
		return nil, err
	}
	if !env.SpacesEnabled() {
		return local, nil
	}

	spaces, err := storage.NewSpacesClient(storage.SpacesConfig{
		AccessKey: env.DO_SPACES_ACCESS_KEY,
		SecretKey: env.DO_SPACES_SECRET_KEY,
		Bucket:    env.DO_SPACES_BUCKET,
		Region:    env.DO_SPACES_REGION,
		Endpoint:  env.DO_SPACES_ENDPOINT,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("Mirroring uploads to bucket %s", env.DO_SPACES_BUCKET)
	return storage.NewMirrorStore(local, spaces, services.PDFDir), nil
}
