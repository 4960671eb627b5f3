package bootstrap

import (
	"context"
	"fmt"
	"time"

	"orl-assistant/internal/config"
	"orl-assistant/internal/controller"
	"orl-assistant/internal/pkg/logger"
	"orl-assistant/internal/repository/contract"
	"orl-assistant/internal/repository/implementation"
	"orl-assistant/internal/repository/memory"
	"orl-assistant/internal/service"
	"orl-assistant/internal/session"
	"orl-assistant/internal/websocket"
	"orl-assistant/internal/workflow"
	"orl-assistant/internal/xano"
	"orl-assistant/pkg/database"
	"orl-assistant/pkg/events"
	pktNats "orl-assistant/pkg/nats"

	"github.com/redis/go-redis/v9"
)

const storagePingTimeout = 3 * time.Second

type Container struct {
	Config *config.Config
	Logger logger.ILogger

	Bus      *events.Bus
	Session  *session.Manager
	Client   *xano.Client
	Auth     service.IAuthService
	Registry *workflow.Registry

	// Companion server
	AuthController     controller.IAuthController
	SessionController  controller.ISessionController
	WorkflowController controller.IWorkflowController
	EventsHandler      *websocket.EventsHandler
	WebSocketHub       *websocket.Hub

	closers []func() error
}

// NewContainer wires every component from cfg. Unavailable token storage or
// NATS degrade with a warning; only an unknown storage driver is fatal.
func NewContainer(ctx context.Context, cfg *config.Config, log logger.ILogger) (*Container, error) {
	c := &Container{Config: cfg, Logger: log}

	// 1. Event sinks
	c.Bus = events.NewBus()
	c.closers = append(c.closers, c.Bus.Close)

	publisher := events.Fanout{c.Bus}
	if cfg.Events.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.Events.NatsURL)
		if err != nil {
			log.Warn("BOOTSTRAP", "NATS unavailable, events stay local", map[string]interface{}{"error": err.Error()})
		} else {
			publisher = append(publisher, natsPub)
			c.closers = append(c.closers, func() error { natsPub.Close(); return nil })
		}
	}

	// 2. Session
	repo, rdb, err := c.tokenRepository(ctx)
	if err != nil {
		return nil, err
	}
	c.Session = session.NewManager(repo,
		session.WithKey(cfg.Storage.TokenKey),
		session.WithLogger(log),
		session.WithPublisher(publisher),
	)

	// 3. Backend client, auth flows and workflows
	c.Client = xano.NewClient(cfg.Xano.BaseURL,
		xano.WithTimeout(cfg.Xano.Timeout),
		xano.WithLogger(log),
		xano.WithMiddleware(c.Session.Middleware()),
	)
	c.Auth = service.NewAuthService(c.Client, c.Session, cfg.Xano.AuthGroup, log)
	c.Registry = workflow.NewRegistry(memory.NewWorkflowRepository(), publisher, log)

	// 4. HTTP surface
	c.WebSocketHub = websocket.NewHub(rdb, log)
	c.EventsHandler = websocket.NewEventsHandler(c.WebSocketHub)
	c.AuthController = controller.NewAuthController(c.Auth, cfg.App.ClientURL)
	c.SessionController = controller.NewSessionController(c.Session, c.Auth)
	c.WorkflowController = controller.NewWorkflowController(c.Registry)

	return c, nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() error {
	var first error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (c *Container) tokenRepository(ctx context.Context) (contract.TokenRepository, *redis.Client, error) {
	cfg := c.Config.Storage
	switch cfg.Driver {
	case config.StoreFile:
		return implementation.NewFileTokenRepository(cfg.FilePath), nil, nil

	case config.StoreRedis:
		rdb := implementation.NewRedisClientFromURL(cfg.RedisURL)
		pingCtx, cancel := context.WithTimeout(ctx, storagePingTimeout)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			c.degrade(cfg.Driver, err)
			return memory.NewTokenRepository(), nil, nil
		}
		c.closers = append(c.closers, rdb.Close)
		return implementation.NewRedisTokenRepository(rdb), rdb, nil

	case config.StorePostgres:
		db, err := database.NewGormDBFromDSN(cfg.Database)
		if err != nil {
			c.degrade(cfg.Driver, err)
			return memory.NewTokenRepository(), nil, nil
		}
		repo := implementation.NewGormTokenRepository(db)
		if err := repo.Migrate(ctx); err != nil {
			_ = database.Close(db)
			c.degrade(cfg.Driver, err)
			return memory.NewTokenRepository(), nil, nil
		}
		c.closers = append(c.closers, func() error { return database.Close(db) })
		return repo, nil, nil

	case config.StoreMemory:
		return memory.NewTokenRepository(), nil, nil

	case config.StoreNone:
		return nil, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown TOKEN_STORE %q", cfg.Driver)
}

func (c *Container) degrade(driver string, err error) {
	c.Logger.Warn("BOOTSTRAP", "Token storage unavailable, session kept in memory only", map[string]interface{}{
		"driver": driver,
		"error":  err.Error(),
	})
}
