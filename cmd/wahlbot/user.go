package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/wahlbot/internal/domain/repository"
	"github.com/dropDatabas3/wahlbot/internal/http/server"
	"github.com/dropDatabas3/wahlbot/internal/observability/logger"
	"github.com/dropDatabas3/wahlbot/internal/security/password"
	"github.com/spf13/cobra"
)

type createUserInput struct {
	Username string
	Email    string
	FullName string
	Password string
	Disabled bool
}

func newUserCmd(opts *rootOptions) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Administración de usuarios",
	}

	var in createUserInput
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Crea un usuario con contraseña argon2id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := server.OpenStore(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			p, err := createUser(ctx, st.Principals(), in)
			if err != nil {
				return err
			}
			logger.L().Info("user created",
				logger.UserID(p.ID), logger.Subject(p.Username), logger.Bool("disabled", p.Disabled))
			fmt.Fprintf(cmd.OutOrStdout(), "created user %q (id=%d)\n", p.Username, p.ID)
			return nil
		},
	}
	createCmd.Flags().StringVar(&in.Username, "username", "", "Nombre de usuario (requerido)")
	createCmd.Flags().StringVar(&in.Email, "email", "", "Email")
	createCmd.Flags().StringVar(&in.FullName, "full-name", "", "Nombre completo")
	createCmd.Flags().StringVar(&in.Password, "password", "", "Contraseña en claro (requerido)")
	createCmd.Flags().BoolVar(&in.Disabled, "disabled", false, "Crear el usuario deshabilitado")
	_ = createCmd.MarkFlagRequired("username")
	_ = createCmd.MarkFlagRequired("password")

	userCmd.AddCommand(createCmd)
	return userCmd
}

func createUser(ctx context.Context, repo repository.PrincipalRepository, in createUserInput) (*repository.Principal, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" {
		return nil, errors.New("user create: --username is required")
	}
	if ok, reasons := password.DefaultPolicy.Validate(in.Password); !ok {
		return nil, fmt.Errorf("user create: weak password: %s", strings.Join(reasons, "; "))
	}

	hash, err := password.Hash(password.Default, in.Password)
	if err != nil {
		return nil, fmt.Errorf("user create: hash: %w", err)
	}
	p, err := repo.Create(ctx, repository.CreatePrincipalInput{
		Username:       in.Username,
		Email:          strings.TrimSpace(in.Email),
		FullName:       strings.TrimSpace(in.FullName),
		Disabled:       in.Disabled,
		HashedPassword: hash,
	})
	if errors.Is(err, repository.ErrConflict) {
		return nil, fmt.Errorf("user create: username %q already exists", in.Username)
	}
	if err != nil {
		return nil, fmt.Errorf("user create: %w", err)
	}
	return p, nil
}
