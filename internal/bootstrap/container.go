package bootstrap

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"

	"gym-statistics/internal/config"
	"gym-statistics/internal/controller"
	"gym-statistics/internal/handler"
	"gym-statistics/internal/pkg/logger"
	"gym-statistics/internal/repository/implementation"
	"gym-statistics/internal/repository/memory"
	"gym-statistics/internal/service"
	"gym-statistics/internal/watcher"
	"gym-statistics/internal/websocket"
	"gym-statistics/pkg/events"
	"gym-statistics/pkg/vocabulary"

	pktNats "gym-statistics/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// DashboardDurable prefixes the JetStream consumer name of each dashboard process.
const DashboardDurable = "dashboard"

var unsafeConsumerChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// dashboardConsumerName is unique per process: every replica keeps its own snapshot
// and needs every change event, which a shared durable would split between them.
func dashboardConsumerName(host string, id uuid.UUID) string {
	name := DashboardDurable
	if host = unsafeConsumerChars.ReplaceAllString(host, "_"); host != "" {
		name += "-" + host
	}
	return name + "-" + id.String()[:8]
}

type BotContainer struct {
	Logger *logger.ZapLogger

	// Controllers
	DialogController controller.IDialogController
	HealthController controller.IHealthController

	// Background Services (Exposed for main.go to run)
	ChangeForwarder service.IChangeForwarder

	closers []func()
}

func NewBotContainer(cfg *config.Config) (*BotContainer, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())

	encoding, err := implementation.ParseEncoding(cfg.Store.Encoding)
	if err != nil {
		return nil, err
	}
	seed, err := vocabulary.LoadSeed(cfg.Store.VocabularyFile)
	if err != nil {
		return nil, err
	}

	// 2. Repositories
	workoutRepo := implementation.NewWorkoutRepository(cfg.Store.WorkoutsFile, encoding, seed, sysLogger)
	workoutRepo.Load(context.Background())
	userNameRepo := implementation.NewUserNameRepository(cfg.Store.UserNamesFile, sysLogger)
	sessionRepo := memory.NewDialogSessionRepository()

	// 3. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)

	c := &BotContainer{Logger: sysLogger}
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	var sinks []service.EventSink
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			sinks = append(sinks, natsPub)
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	// 4. Services
	changePublisher := service.NewChangePublisherService(pubSub, service.ChangeTopic)
	c.ChangeForwarder = service.NewChangeForwarderService(pubSub, service.ChangeTopic, sysLogger, sinks...)

	dialogService := service.NewDialogService(
		workoutRepo,
		userNameRepo,
		sessionRepo,
		changePublisher,
		service.DialogOptions{
			Location:     cfg.Location(),
			LegacyReps:   encoding == implementation.EncodingLegacy,
			DashboardURL: cfg.App.DashboardPublicURL,
		},
		sysLogger,
	)

	// 5. Controllers
	c.DialogController = controller.NewDialogController(dialogService)
	c.HealthController = controller.NewHealthController(true)

	return c, nil
}

func (c *BotContainer) Close() {
	closeAll(c.closers)
	_ = c.Logger.Sync()
}

type DashboardContainer struct {
	Logger *logger.ZapLogger

	// Controllers
	DashboardController controller.IDashboardController
	HealthController    controller.IHealthController

	// WebSockets
	DashboardWSHandler *handler.DashboardWSHandler
	WebSocketHub       *websocket.Hub

	// Background Services (Exposed for main.go to run)
	DashboardService service.IDashboardService
	Watcher          *watcher.FileWatcher // nil unless file watching is enabled

	subscriber   *pktNats.Subscriber
	consumerName string
	closers      []func()
}

func NewDashboardContainer(cfg *config.Config) (*DashboardContainer, error) {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())

	seed, err := vocabulary.LoadSeed(cfg.Store.VocabularyFile)
	if err != nil {
		return nil, err
	}

	// The dashboard only reads, and rows of either encoding decode.
	reader := implementation.NewWorkoutRepository(cfg.Store.WorkoutsFile, implementation.EncodingCurrent, seed, sysLogger)
	dashboardService := service.NewDashboardService(reader, cfg.Store.WorkoutsFile, sysLogger)

	wsLogger := logger.NewIsolatedLogger(filepath.Join(filepath.Dir(cfg.App.LogFilePath), "dashboard_ws.log"))
	hub := websocket.NewHub(wsLogger)
	dashboardService.OnRefresh(hub.BroadcastRefresh)

	c := &DashboardContainer{
		Logger:              sysLogger,
		DashboardController: controller.NewDashboardController(dashboardService),
		HealthController:    controller.NewHealthController(true),
		DashboardWSHandler:  handler.NewDashboardWSHandler(hub, wsLogger),
		WebSocketHub:        hub,
		DashboardService:    dashboardService,
	}

	if cfg.App.NatsURL != "" {
		sub, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		} else {
			host, _ := os.Hostname()
			c.subscriber = sub
			c.consumerName = dashboardConsumerName(host, uuid.New())
			c.closers = append(c.closers, sub.Close)
		}
	}

	if cfg.Dashboard.WatchFile {
		w, err := watcher.NewFileWatcher(cfg.Store.WorkoutsFile, watcher.DefaultDebounce, func(ctx context.Context) {
			_, _ = dashboardService.Refresh(ctx, service.TriggerWatcher)
		}, sysLogger)
		if err != nil {
			closeAll(c.closers)
			return nil, fmt.Errorf("watching workouts file: %w", err)
		}
		c.Watcher = w
	}

	return c, nil
}

// SubscribeChanges refreshes the snapshot whenever the bot reports a change.
// It is a no-op when NATS is not configured.
func (c *DashboardContainer) SubscribeChanges(ctx context.Context) error {
	if c.subscriber == nil {
		return nil
	}
	subject := pktNats.SubjectPrefix + events.TypeWorkoutsChanged
	return c.subscriber.Subscribe(ctx, subject, c.consumerName, refreshOnChange(c.DashboardService, c.Logger))
}

// refreshOnChange always acknowledges. A failed refresh is already logged and the
// timer retries it, so redelivering the event would only repeat the failure.
func refreshOnChange(dashboard service.IDashboardService, log logger.ILogger) pktNats.EventHandler {
	return func(ctx context.Context, event events.Event) error {
		if _, err := dashboard.Refresh(ctx, service.TriggerNotification); err != nil {
			log.Warn("Dashboard", "Refresh on change notification failed, waiting for the timer", map[string]interface{}{"event_id": event.EventID(), "error": err.Error()})
		}
		return nil
	}
}

func (c *DashboardContainer) Close() {
	closeAll(c.closers)
	_ = c.Logger.Sync()
}

func closeAll(closers []func()) {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}
