package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/harshithb3304/Learning-Management-System-sub001/internal/events"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/repositories"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	// Logging configuration
	EnableDebugLogging bool
	EnableMetrics      bool
	LogLevel           slog.Level

	// Service-specific configurations
	Course     ServiceConfig
	Coursework ServiceConfig
	Enrollment ServiceConfig
	Submission ServiceConfig
	User       ServiceConfig

	// Global settings
	DefaultTimeout time.Duration
	MaxRetries     int
}

type ServiceConfig struct {
	Enabled         bool
	CacheEnabled    bool
	CacheTTL        time.Duration
	ValidationLevel ValidationLevel
	AuditingEnabled bool
}

type ValidationLevel int

const (
	ValidationBasic ValidationLevel = iota
	ValidationStrict
	ValidationFull
)

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	db             *gorm.DB
	repo           repositories.Repository
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
	config         ServiceManagerConfig

	// Service instances
	courseService       CourseService
	courseworkService   CourseworkService
	enrollmentService   EnrollmentService
	submissionService   SubmissionService
	userService         UserService
	rosterExportService RosterExportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		db:             db,
		repo:           repo,
		logger:         logger,
		validator:      validator,
		eventPublisher: publisher,
		config:         config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) ServiceManager {
	config := ServiceManagerConfig{
		EnableDebugLogging: false,
		EnableMetrics:      true,
		LogLevel:           slog.LevelInfo,

		Course: ServiceConfig{
			Enabled:         true,
			CacheEnabled:    true,
			CacheTTL:        5 * time.Minute,
			ValidationLevel: ValidationStrict,
			AuditingEnabled: true,
		},
		Coursework: ServiceConfig{
			Enabled:         true,
			CacheEnabled:    true,
			CacheTTL:        5 * time.Minute,
			ValidationLevel: ValidationStrict,
			AuditingEnabled: true,
		},
		Enrollment: ServiceConfig{
			Enabled:         true,
			CacheEnabled:    false, // Roster state is real-time
			CacheTTL:        0,
			ValidationLevel: ValidationStrict,
			AuditingEnabled: true,
		},
		Submission: ServiceConfig{
			Enabled:         true,
			CacheEnabled:    false,
			CacheTTL:        0,
			ValidationLevel: ValidationStrict,
			AuditingEnabled: true,
		},
		User: ServiceConfig{
			Enabled:         true,
			CacheEnabled:    true,
			CacheTTL:        5 * time.Minute,
			ValidationLevel: ValidationFull,
			AuditingEnabled: true,
		},

		DefaultTimeout: 30 * time.Second,
		MaxRetries:     3,
	}

	return NewServiceManager(db, repo, logger, validator, publisher, config)
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if err := sm.initializeServices(ctx); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) initializeServices(ctx context.Context) error {
	if sm.config.Course.Enabled {
		sm.courseService = NewCourseService(sm.repo, sm.db, sm.logger, sm.validator, sm.eventPublisher)
		sm.logger.Info("Course service initialized")
	}

	if sm.config.Coursework.Enabled {
		sm.courseworkService = NewCourseworkService(sm.repo, sm.db, sm.logger, sm.validator, sm.eventPublisher)
		sm.logger.Info("Coursework service initialized")
	}

	if sm.config.Enrollment.Enabled {
		sm.enrollmentService = NewEnrollmentService(sm.repo, sm.db, sm.logger, sm.validator, sm.eventPublisher)
		sm.logger.Info("Enrollment service initialized")
	}

	if sm.config.Submission.Enabled {
		sm.submissionService = NewSubmissionService(sm.repo, sm.db, sm.logger, sm.validator, sm.eventPublisher)
		sm.logger.Info("Submission service initialized")
	}

	if sm.config.User.Enabled {
		sm.userService = NewUserService(sm.repo, sm.db, sm.logger, sm.validator, sm.eventPublisher)
		sm.logger.Info("User service initialized")
	}

	sm.rosterExportService = NewRosterExportService(sm.repo, sm.logger)
	sm.logger.Info("Roster export service initialized")

	return nil
}

// Service getters
func (sm *serviceManager) Course() CourseService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Course.Enabled && sm.courseService != nil {
		return sm.courseService
	}

	panic("course service not enabled or not initialized")
}

func (sm *serviceManager) Coursework() CourseworkService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Coursework.Enabled && sm.courseworkService != nil {
		return sm.courseworkService
	}

	panic("coursework service not enabled or not initialized")
}

func (sm *serviceManager) Enrollment() EnrollmentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Enrollment.Enabled && sm.enrollmentService != nil {
		return sm.enrollmentService
	}

	panic("enrollment service not enabled or not initialized")
}

func (sm *serviceManager) Submission() SubmissionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Submission.Enabled && sm.submissionService != nil {
		return sm.submissionService
	}

	panic("submission service not enabled or not initialized")
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.User.Enabled && sm.userService != nil {
		return sm.userService
	}

	panic("user service not enabled or not initialized")
}

func (sm *serviceManager) RosterExport() RosterExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.rosterExportService != nil {
		return sm.rosterExportService
	}

	panic("roster export service not initialized")
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.eventPublisher != nil {
		if err := sm.eventPublisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}

// ===== UTILITY METHODS =====

// GetConfig returns the service manager configuration
func (sm *serviceManager) GetConfig() ServiceManagerConfig {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.config
}

// IsInitialized returns whether the service manager has been initialized
func (sm *serviceManager) IsInitialized() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.initialized
}

// WithTimeout creates a context with the default timeout
func (sm *serviceManager) WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, sm.config.DefaultTimeout)
}

// ===== CONFIGURATION VALIDATION =====

// Validate validates the service manager configuration
func (config *ServiceManagerConfig) Validate() error {
	var errs []string

	if config.DefaultTimeout <= 0 {
		errs = append(errs, "default timeout must be positive")
	}

	if config.MaxRetries < 0 {
		errs = append(errs, "max retries cannot be negative")
	}

	for name, sc := range map[string]ServiceConfig{
		"course":     config.Course,
		"coursework": config.Coursework,
		"enrollment": config.Enrollment,
		"submission": config.Submission,
		"user":       config.User,
	} {
		if sc.CacheTTL < 0 {
			errs = append(errs, fmt.Sprintf("%s: cache TTL cannot be negative", name))
		}
		if sc.ValidationLevel < ValidationBasic || sc.ValidationLevel > ValidationFull {
			errs = append(errs, fmt.Sprintf("%s: invalid validation level", name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}

	return nil
}
