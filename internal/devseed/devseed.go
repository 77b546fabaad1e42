// Package devseed populates a development database with a small demo
// team so the dashboard, PDI, and feedback screens have data on a
// fresh checkout. It is only reachable from the admin CLI and is
// never wired into the request path.
package devseed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/progresshq/progress-api/internal/adapters/insights"
	"github.com/progresshq/progress-api/internal/adapters/password"
	"github.com/progresshq/progress-api/internal/data"
	domainauth "github.com/progresshq/progress-api/internal/domain/auth"
	"github.com/progresshq/progress-api/internal/domain/model"
	"github.com/progresshq/progress-api/internal/service"
)

// Services bundles the dependencies needed for development seeding.
type Services struct {
	users     *data.UserRepo
	userSvc   *service.UserService
	pdis      *service.PDIService
	feedbacks *service.FeedbackService
}

// NewServices constructs the seeding services over the provided DB.
// bcrypt.MinCost keeps repeated seeding fast; these are throwaway
// development credentials.
func NewServices(db *sql.DB) Services {
	userRepo := data.NewUserRepo(db)
	hasher := password.NewBcryptHasher(bcrypt.MinCost)

	return Services{
		users:   userRepo,
		userSvc: service.NewUserService(service.UserServiceOptions{Users: userRepo, Hasher: hasher}),
		pdis:    service.NewPDIService(service.PDIServiceOptions{PDIs: data.NewPDIRepo(db), Users: userRepo}),
		feedbacks: service.NewFeedbackService(service.FeedbackServiceOptions{
			Feedbacks: data.NewFeedbackRepo(db),
			Users:     userRepo,
			Analyzer:  insights.NewKeywordAnalyzer(),
		}),
	}
}

const seedMarkerEmail = "marina.lima@demo.progress.local"

// Seed inserts the demo team, one development plan, and two feedbacks.
// It is idempotent: when the demo manager already exists the whole run
// is skipped.
func Seed(ctx context.Context, logger *slog.Logger, svcs Services) error {
	if _, err := svcs.users.GetByEmail(ctx, seedMarkerEmail); err == nil {
		logger.InfoContext(ctx, "development seed data already present, skipping")
		return nil
	} else if !errors.Is(err, data.ErrUserNotFound) {
		return fmt.Errorf("check seed marker: %w", err)
	}

	manager, err := seedManager(ctx, svcs)
	if err != nil {
		return err
	}

	collaborators, err := seedCollaborators(ctx, svcs)
	if err != nil {
		return err
	}

	managerSess := sessionFor(manager)

	if err := seedPDI(ctx, svcs, managerSess, collaborators[0]); err != nil {
		return err
	}
	if err := seedFeedbacks(ctx, svcs, managerSess, collaborators); err != nil {
		return err
	}

	logger.InfoContext(ctx, "development seed data created",
		"manager", manager.Email,
		"collaborators", len(collaborators))
	return nil
}

func seedManager(ctx context.Context, svcs Services) (*model.User, error) {
	manager, err := svcs.userSvc.Create(ctx, model.CreateUserRequest{
		Name:     "Marina Lima",
		Email:    seedMarkerEmail,
		Password: "demo-password",
		JobTitle: strPtr("Engineering Manager"),
		Roles:    []string{domainauth.WireRoleManager},
	})
	if err != nil {
		return nil, fmt.Errorf("seed manager: %w", err)
	}
	return manager, nil
}

func seedCollaborators(ctx context.Context, svcs Services) ([]*model.User, error) {
	specs := []model.CreateUserRequest{
		{
			Name:       "Pedro Santos",
			Email:      "pedro.santos@demo.progress.local",
			Password:   "demo-password",
			JobTitle:   strPtr("Backend Developer"),
			Department: strPtr("Engineering"),
		},
		{
			Name:       "Júlia Costa",
			Email:      "julia.costa@demo.progress.local",
			Password:   "demo-password",
			JobTitle:   strPtr("Frontend Developer"),
			Department: strPtr("Engineering"),
		},
	}

	out := make([]*model.User, 0, len(specs))
	for _, spec := range specs {
		u, err := svcs.userSvc.Create(ctx, spec)
		if err != nil {
			return nil, fmt.Errorf("seed collaborator %s: %w", spec.Email, err)
		}
		out = append(out, u)
	}
	return out, nil
}

func seedPDI(ctx context.Context, svcs Services, sess domainauth.Session, collaborator *model.User) error {
	due := time.Now().AddDate(0, 3, 0)
	_, err := svcs.pdis.Create(ctx, sess, model.CreatePDIRequest{
		Title:          "Evoluir para pleno",
		Description:    strPtr("Plano de desenvolvimento do próximo ciclo."),
		CollaboratorID: collaborator.ID,
		DueDate:        &due,
		Goals: []model.CreatePDIGoalRequest{
			{
				Description: "Concluir curso de SQL avançado",
				Actions:     strPtr("Reservar 2h semanais de estudo"),
			},
			{
				Description: "Assumir a revisão de código do squad",
			},
		},
	})
	if err != nil {
		return fmt.Errorf("seed pdi: %w", err)
	}
	return nil
}

func seedFeedbacks(ctx context.Context, svcs Services, managerSess domainauth.Session, collaborators []*model.User) error {
	// Praise from the manager; the analyzer should mark it positive.
	if _, err := svcs.feedbacks.Create(ctx, managerSess, model.CreateFeedbackRequest{
		RecipientID: collaborators[0].ID,
		Text:        "Excelente trabalho na última entrega, o squad inteiro notou.",
		Skills:      strPtr("comunicação, SQL"),
	}); err != nil {
		return fmt.Errorf("seed praise feedback: %w", err)
	}

	// Peer feedback mentioning a difficulty; exercises the negative
	// insight path including the suggested course.
	peerSess := sessionFor(collaborators[0])
	if _, err := svcs.feedbacks.Create(ctx, peerSess, model.CreateFeedbackRequest{
		RecipientID:  collaborators[1].ID,
		Text:         "Ótima parceria no projeto, mas vi dificuldade em priorizar as tarefas da sprint.",
		Difficulties: strPtr("organização do tempo"),
	}); err != nil {
		return fmt.Errorf("seed peer feedback: %w", err)
	}
	return nil
}

// sessionFor builds an in-process session for seeding; it never
// touches the session store.
func sessionFor(u *model.User) domainauth.Session {
	return domainauth.Session{
		ID:        "devseed",
		UserID:    u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Roles:     u.Roles,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func strPtr(s string) *string { return &s }
