package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appsync "github.com/jhoicas/facturas-api/internal/application/sync"
	infracache "github.com/jhoicas/facturas-api/internal/infrastructure/cache"
	"github.com/jhoicas/facturas-api/internal/infrastructure/facturador"
	infrapdf "github.com/jhoicas/facturas-api/internal/infrastructure/pdf"
	"github.com/jhoicas/facturas-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/facturas-api/internal/interfaces/http"
	"github.com/jhoicas/facturas-api/pkg/config"
	"github.com/jhoicas/facturas-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	almacen, err := infracache.NewFileStore(cfg.Sync.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar directorio de caché")
	}

	// Historial en PostgreSQL solo si hay DATABASE_URL; el servicio funciona
	// igual sin él.
	var historial appsync.HistorialRepository
	if cfg.DB.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DB.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		historial = postgres.NewHistorialRepository(pool)
	} else {
		log.Warn().Msg("DATABASE_URL no configurado, historial de sincronizaciones deshabilitado")
	}

	// Cliente del facturador construido una vez e inyectado: su ciclo de vida
	// lo posee este entry point.
	cliente := facturador.NewClient(cfg.Facturador.BaseURL, cfg.Facturador.Token, cfg.Facturador.Timeout(), log)
	crawler := appsync.NewCrawler(cliente, cfg.Sync.DelayCliente(), log)
	orquestador := appsync.NewOrchestrator(crawler, almacen, historial, cfg.Sync.Ventana(), log)
	runner := appsync.NewRunner(ctx, 4, log)
	reportes := infrapdf.NewReporteGenerator()

	scheduler := appsync.NewScheduler(orquestador, cfg.Sync.Intervalo(), log)
	go scheduler.Ejecutar(ctx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Facturas API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Orquestador: orquestador,
		Runner:      runner,
		Historial:   historial,
		Reportes:    reportes,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	cancel()        // detiene scheduler y tareas en vuelo
	runner.Cerrar() // espera a que termine la cola de tareas

	log.Info().Msg("aplicación detenida")
}
