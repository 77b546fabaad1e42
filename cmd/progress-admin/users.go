package main

import (
	"errors"
	"flag"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/crypto/bcrypt"

	"github.com/progresshq/progress-api/internal/adapters/password"
	"github.com/progresshq/progress-api/internal/bootstrap"
	"github.com/progresshq/progress-api/internal/data"
	domainauth "github.com/progresshq/progress-api/internal/domain/auth"
	"github.com/progresshq/progress-api/internal/domain/model"
	"github.com/progresshq/progress-api/internal/service"
)

func runSeedAdmin(cmdCtx *commandContext, _ []string) error {
	db, err := connectDB(cmdCtx)
	if err != nil {
		return err
	}
	defer closeDB(cmdCtx, db)

	hasher := password.NewBcryptHasher(bcrypt.DefaultCost)
	return bootstrap.SeedAdminUser(cmdCtx.Ctx, data.NewUserRepo(db), hasher, cmdCtx.Config.Auth, cmdCtx.Logger)
}

func runCreateUser(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	name := fs.String("name", "", "full name of the user")
	email := fs.String("email", "", "login email")
	pass := fs.String("password", "", "initial password")
	roles := fs.String("roles", "", "comma-separated wire role names (e.g. ROLE_MANAGER); defaults to collaborator")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *email == "" || *pass == "" {
		return errors.New("create-user requires -name, -email and -password")
	}

	db, err := connectDB(cmdCtx)
	if err != nil {
		return err
	}
	defer closeDB(cmdCtx, db)

	users := service.NewUserService(service.UserServiceOptions{
		Users:  data.NewUserRepo(db),
		Hasher: password.NewBcryptHasher(bcrypt.DefaultCost),
	})

	created, err := users.Create(cmdCtx.Ctx, model.CreateUserRequest{
		Name:     *name,
		Email:    *email,
		Password: *pass,
		Roles:    splitRoles(*roles),
	})
	if err != nil {
		return err
	}

	cmdCtx.Logger.InfoContext(cmdCtx.Ctx, "user created",
		"user_id", created.ID,
		"email", created.Email,
		"roles", domainauth.WireNames(created.Roles))
	return nil
}

func runListUsers(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("list-users", flag.ContinueOnError)
	limit := fs.Int("limit", 50, "maximum number of users to list")
	offset := fs.Int("offset", 0, "number of users to skip")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := connectDB(cmdCtx)
	if err != nil {
		return err
	}
	defer closeDB(cmdCtx, db)

	users := service.NewUserService(service.UserServiceOptions{
		Users:  data.NewUserRepo(db),
		Hasher: password.NewBcryptHasher(bcrypt.DefaultCost),
	})

	list, err := users.List(cmdCtx.Ctx, *limit, *offset)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writef(w, "ID\tNAME\tEMAIL\tACTIVE\tROLES\n"); err != nil {
		return err
	}
	for i := range list {
		u := &list[i]
		if err := writef(w, "%d\t%s\t%s\t%t\t%s\n",
			u.ID, u.Name, u.Email, u.Active, strings.Join(domainauth.WireNames(u.Roles), ",")); err != nil {
			return err
		}
	}
	return w.Flush()
}

// splitRoles turns a comma-separated flag value into a role name list.
// An empty value yields nil so the service applies its default.
func splitRoles(value string) []string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	parts := strings.Split(trimmed, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
