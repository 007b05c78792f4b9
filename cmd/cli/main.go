package main

import (
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"

	"connectcargo/app/database"
)

const (
	apiBaseURL    = "http://localhost:3000/api"
	apiManagement = "v1/management"
)

var apiKey string

type ResponseError struct {
	Message string `json:"message"`
}

var apiServiceBase = func() *resty.Client {
	return resty.New().
		SetBaseURL(apiBaseURL).
		SetHeader("Accept", "application/json").
		SetHeader("X-API-Key", apiKey).
		SetError(&ResponseError{}).
		OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
			if resp.StatusCode() >= 400 {
				// Error bodies are not always JSON.
				if respErr, ok := resp.Error().(*ResponseError); ok && respErr.Message != "" {
					return fmt.Errorf("%s", respErr.Message)
				}
				return fmt.Errorf("request failed: %s", resp.Status())
			}

			return nil
		})
}

var rootCmd = &cobra.Command{
	Use:   "connectcargo",
	Short: "ConnectCargo CLI",
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered users",
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := apiServiceBase().R().
			SetResult(&[]database.User{}).
			Get(apiManagement + "/user")

		if err != nil {
			fmt.Println("Error:", err)
			return
		}

		users := resp.Result().(*[]database.User)

		for _, user := range *users {
			fmt.Printf("%s  %-30s %-8s %s\n", user.ID, user.Email, user.Role, user.AccountStatus)
		}
	},
}

var userShowCmd = &cobra.Command{
	Use:   "show <user_id>",
	Short: "Show a user",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := apiServiceBase().R().
			SetResult(&database.User{}).
			Get(fmt.Sprintf("%s/user/%s", apiManagement, args[0]))

		if err != nil {
			fmt.Println("Error:", err)
			return
		}

		user := resp.Result().(*database.User)

		fmt.Println("User ID :", user.ID)
		fmt.Println("Email   :", user.Email)
		fmt.Println("Role    :", user.Role)
		fmt.Println("Status  :", user.AccountStatus)
		fmt.Println("Verified:", user.EmailVerified)
	},
}

func setStatusCmd(use, short, status string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <user_id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := apiServiceBase().R().
				SetBody(map[string]string{"status": status}).
				SetResult(&database.User{}).
				Post(fmt.Sprintf("%s/user/%s/status", apiManagement, args[0]))

			if err != nil {
				fmt.Println("Error:", err)
				return
			}

			user := resp.Result().(*database.User)
			fmt.Printf("User %s is now %s\n", user.Email, user.AccountStatus)
		},
	}
}

var userUnlockCmd = &cobra.Command{
	Use:   "unlock <user_id>",
	Short: "Clear a login lockout",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := apiServiceBase().R().
			SetResult(&database.User{}).
			Post(fmt.Sprintf("%s/user/%s/unlock", apiManagement, args[0]))

		if err != nil {
			fmt.Println("Error:", err)
			return
		}

		user := resp.Result().(*database.User)
		fmt.Printf("User %s unlocked\n", user.Email)
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", os.Getenv("CONNECTCARGO_API_KEY"), "Management API key")

	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userShowCmd)
	userCmd.AddCommand(setStatusCmd("suspend", "Suspend a user account", database.StatusSuspended))
	userCmd.AddCommand(setStatusCmd("activate", "Activate a user account", database.StatusActive))
	userCmd.AddCommand(setStatusCmd("deactivate", "Deactivate a user account", database.StatusInactive))
	userCmd.AddCommand(userUnlockCmd)

	rootCmd.AddCommand(userCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
