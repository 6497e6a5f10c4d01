package cli

import (
	"errors"
	"os"

	"github.com/bissquit/hotel-booking/internal/client"
	"github.com/spf13/cobra"
)

func newRegisterCommand(rt *runtime) *cobra.Command {
	var input client.RegisterInput

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input.Password = passwordOrEnv(input.Password)
			if input.Password == "" {
				return errors.New("password is required (--password or HOTELCTL_PASSWORD)")
			}

			user, err := rt.api.Register(cmd.Context(), input)
			if err != nil {
				return err
			}
			rt.printf("Registered %s (%s). Log in with `hotelctl login --email %s`.\n", user.DisplayName, user.Email, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Email, "email", "", "email address")
	cmd.Flags().StringVar(&input.Password, "password", "", "password, at least 8 characters")
	cmd.Flags().StringVar(&input.DisplayName, "name", "", "display name")
	cmd.Flags().StringVar(&input.PhoneNumber, "phone", "", "phone number in E.164 format")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newLoginCommand(rt *runtime) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password = passwordOrEnv(password)
			if password == "" {
				return errors.New("password is required (--password or HOTELCTL_PASSWORD)")
			}

			identity, token, err := rt.api.Authenticate(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			rt.session.Login(cmd.Context(), identity, token)
			rt.printf("Logged in as %s (%s)\n", identity.DisplayName, identity.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newLogoutCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt.session.Logout(cmd.Context())
			rt.printf("Logged out\n")
			return nil
		},
	}
}

func newWhoamiCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			current := rt.session.Current()
			if !current.IsAuthenticated() {
				return ErrNotLoggedIn
			}

			id := current.Identity
			rt.printf("%s <%s>\nrole: %s\nid:   %s\n", id.DisplayName, id.Email, id.Role, id.ID)
			return nil
		},
	}
}

func passwordOrEnv(password string) string {
	if password != "" {
		return password
	}
	return os.Getenv("HOTELCTL_PASSWORD")
}
