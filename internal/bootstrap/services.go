package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/progresshq/progress-api/config"
	"github.com/progresshq/progress-api/internal/adapters/insights"
	"github.com/progresshq/progress-api/internal/adapters/password"
	redisstore "github.com/progresshq/progress-api/internal/adapters/redis"
	"github.com/progresshq/progress-api/internal/adapters/token"
	"github.com/progresshq/progress-api/internal/data"
	domainauth "github.com/progresshq/progress-api/internal/domain/auth"
	"github.com/progresshq/progress-api/internal/domain/model"
	"github.com/progresshq/progress-api/internal/ports"
	"github.com/progresshq/progress-api/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth      *service.AuthService
	Users     *service.UserService
	Feedbacks *service.FeedbackService
	PDIs      *service.PDIService
	Dashboard *service.DashboardService
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	Users     *data.UserRepo
	Feedbacks *data.FeedbackRepo
	PDIs      *data.PDIRepo
	Dashboard *data.DashboardRepo
}

func buildRepositories(db *sql.DB) *serviceRepositories {
	return &serviceRepositories{
		Users:     data.NewUserRepo(db),
		Feedbacks: data.NewFeedbackRepo(db),
		PDIs:      data.NewPDIRepo(db),
		Dashboard: data.NewDashboardRepo(db),
	}
}

// BuildServices wires repositories and adapters into the service layer.
func BuildServices(deps ServiceDeps) (*ServiceContainer, error) {
	if deps.Config == nil {
		return nil, errors.New("config is required")
	}
	if deps.DB == nil {
		return nil, errors.New("database connection is required")
	}
	if deps.RedisClient == nil {
		return nil, errors.New("redis client is required")
	}

	repos := buildRepositories(deps.DB)
	hasher := password.NewBcryptHasher(bcrypt.DefaultCost)

	auth := service.NewAuthService(service.AuthServiceOptions{
		Users:    repos.Users,
		Sessions: redisstore.NewSessionStore(deps.RedisClient),
		Tokens:   token.NewIssuer(deps.Config.Auth.JWTSecret),
		Hasher:   hasher,
		TokenTTL: deps.Config.Auth.TokenTTL,
	})

	return &ServiceContainer{
		Auth: auth,
		Users: service.NewUserService(service.UserServiceOptions{
			Users:  repos.Users,
			Hasher: hasher,
		}),
		Feedbacks: service.NewFeedbackService(service.FeedbackServiceOptions{
			Feedbacks: repos.Feedbacks,
			Users:     repos.Users,
			Analyzer:  insights.NewKeywordAnalyzer(),
		}),
		PDIs: service.NewPDIService(service.PDIServiceOptions{
			PDIs:  repos.PDIs,
			Users: repos.Users,
		}),
		Dashboard: service.NewDashboardService(service.DashboardServiceOptions{
			Repo: repos.Dashboard,
		}),
	}, nil
}

// SeedAdminUser creates the configured admin account when no user with
// that email exists yet. It is idempotent and safe to run on every
// startup.
func SeedAdminUser(ctx context.Context, users ports.UserRepository, hasher ports.PasswordHasher, cfg config.AuthConfig, logger *slog.Logger) error {
	email := strings.ToLower(strings.TrimSpace(cfg.SeedAdminEmail))
	if email == "" {
		return errors.New("seed admin email is empty")
	}

	if _, err := users.GetByEmail(ctx, email); err == nil {
		if logger != nil {
			logger.InfoContext(ctx, "admin user already present", "email", email)
		}
		return nil
	} else if !errors.Is(err, data.ErrUserNotFound) {
		return fmt.Errorf("look up admin user: %w", err)
	}

	hash, err := hasher.Hash(cfg.SeedAdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &model.User{
		Name:         cfg.SeedAdminName,
		Email:        email,
		PasswordHash: hash,
		Active:       true,
		Roles:        []domainauth.Role{domainauth.RoleAdmin},
	}
	if err := users.Create(ctx, admin); err != nil {
		// Another instance may have seeded concurrently.
		if errors.Is(err, data.ErrEmailExists) {
			return nil
		}
		return fmt.Errorf("create admin user: %w", err)
	}

	if logger != nil {
		logger.InfoContext(ctx, "admin user seeded", "email", email, "user_id", admin.ID)
	}
	return nil
}
