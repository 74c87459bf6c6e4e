package client

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

type sessionResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
}

// RegisterCmd returns the register command
func RegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and store the session token",
		RunE:  runRegister,
	}
	cmd.Flags().StringP("email", "e", "", "Email address (required)")
	cmd.Flags().StringP("password", "p", "", "Password (prompted if omitted)")
	cmd.MarkFlagRequired("email")
	return cmd
}

// LoginCmd returns the login command
func LoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		RunE:  runLogin,
	}
	cmd.Flags().StringP("email", "e", "", "Email address (required)")
	cmd.Flags().StringP("password", "p", "", "Password (prompted if omitted)")
	cmd.MarkFlagRequired("email")
	return cmd
}

// LogoutCmd returns the logout command
func LogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := DeleteGlobalConfig(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

// WhoamiCmd returns the whoami command
func WhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity behind the stored token",
		RunE:  runWhoami,
	}
}

func runRegister(cmd *cobra.Command, args []string) error {
	return runAuth(cmd, "/api/auth/register")
}

func runLogin(cmd *cobra.Command, args []string) error {
	return runAuth(cmd, "/api/auth/login")
}

func runAuth(cmd *cobra.Command, path string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	if password == "" {
		var err error
		password, err = promptPassword(cmd)
		if err != nil {
			return err
		}
	}

	c, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	var session sessionResponse
	if err := c.Post(path, map[string]string{
		"email":    email,
		"password": password,
	}, &session); err != nil {
		return err
	}

	config := &GlobalConfig{
		Token:  session.Token,
		Email:  session.Email,
		APIURL: c.baseURL,
	}
	if err := SaveGlobalConfig(config); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", session.Email)
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	c, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	var resp struct {
		Valid  bool   `json:"valid"`
		UserID string `json:"userId"`
		Email  string `json:"email"`
	}
	if err := c.Get("/api/auth/verify", &resp); err != nil {
		return err
	}

	if !resp.Valid {
		fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (user %s)\n", resp.Email, resp.UserID)
	return nil
}

func promptPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSuffix(strings.TrimSuffix(input, "\n"), "\r"), nil
}
