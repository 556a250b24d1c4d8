package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/tax-e/taxe-admin/internal/adminclient"
	"github.com/tax-e/taxe-admin/internal/console"
	"github.com/tax-e/taxe-admin/internal/lifecycle"
	"github.com/tax-e/taxe-admin/internal/models"
)

// stdioPrompter collects lifecycle gate input from stdin.
type stdioPrompter struct {
	in *bufio.Reader
}

func (p *stdioPrompter) Reason(prompt string) (string, bool) {
	fmt.Printf("%s (empty to cancel): ", prompt)
	line, err := p.in.ReadString('\n')
	if err != nil {
		return "", false
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}
	return line, true
}

func (p *stdioPrompter) Confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	line, err := p.in.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

type app struct {
	client    *adminclient.Client
	presenter *console.Presenter
	prompter  *stdioPrompter
	in        *bufio.Reader

	admin       adminclient.AdminUser
	chatHistory []models.ChatTurn
	authFailed  bool
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, using system environment variables")
	}

	baseURL := os.Getenv("TAXE_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080/api/admin"
	}

	tokens, err := newFileTokenStore()
	if err != nil {
		log.Fatalf("❌ Failed to open session store: %v", err)
	}

	a := &app{in: bufio.NewReader(os.Stdin)}
	a.prompter = &stdioPrompter{in: a.in}

	a.client = adminclient.New(baseURL,
		adminclient.WithTokenStore(tokens),
		adminclient.WithAuthFailureHandler(func() {
			a.authFailed = true
		}),
	)

	dispatcher := lifecycle.NewDispatcher(a.client, a.prompter, lifecycle.DefaultActionTimeout)
	a.presenter = console.NewPresenter(a.client, dispatcher)

	fmt.Println("Tax-e Admin Console")
	fmt.Printf("API: %s\n", baseURL)
	fmt.Println(`Type "help" for commands.`)
	fmt.Println()

	a.loop()
}

func (a *app) loop() {
	for {
		if a.authFailed {
			a.authFailed = false
			fmt.Println("Session expired. Please log in again.")
		}
		if !a.client.HasSession() {
			if !a.login() {
				return
			}
		}

		fmt.Print("taxe> ")
		line, err := a.in.ReadString('\n')
		if err != nil {
			fmt.Println()
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "help":
			a.help()
		case "dashboard":
			a.dashboard()
		case "users":
			a.users(strings.Join(args, " "))
		case "suspend":
			a.lifecycleAction(args, a.presenter.Suspend)
		case "unsuspend":
			a.lifecycleAction(args, a.presenter.Unsuspend)
		case "delete":
			a.lifecycleAction(args, a.presenter.Delete)
		case "receipts":
			a.receipts()
		case "payments":
			a.payments()
		case "profile":
			a.profile()
		case "create-admin":
			a.createAdmin()
		case "chat":
			a.chat(strings.Join(args, " "))
		case "logout":
			a.logout()
		case "quit", "exit":
			return
		default:
			fmt.Printf("Unknown command %q. Type \"help\" for commands.\n", cmd)
		}
	}
}

func (a *app) help() {
	fmt.Println(`Commands:
  dashboard            Show platform statistics
  users [query]        List users, optionally filtered by name/email/phone/TIN
  suspend <n>          Suspend user number <n> from the last listing
  unsuspend <n>        Lift the suspension on user <n>
  delete <n>           Request deletion, or delete permanently if already pending
  receipts             List recent receipts
  payments             List recent payments
  profile              Update your name or password
  create-admin         Create another admin account
  chat <message>       Ask the tax assistant
  logout               Sign out
  quit                 Exit the console`)
}

func (a *app) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func (a *app) login() bool {
	for {
		fmt.Print("Email: ")
		email, err := a.in.ReadString('\n')
		if err != nil {
			return false
		}
		email = strings.TrimSpace(email)
		if email == "" {
			return false
		}

		fmt.Print("Password: ")
		password, err := readPassword()
		if err != nil {
			return false
		}

		ctx, cancel := a.ctx()
		admin, err := a.client.Login(ctx, email, password)
		cancel()
		if err != nil {
			fmt.Printf("Login failed: %v\n", friendly(err))
			continue
		}
		a.admin = admin
		fmt.Printf("Welcome back, %s!\n\n", admin.Name)
		return true
	}
}

// readPassword reads a password without echo, falling back to plain line
// input when stdin is not a terminal.
func readPassword() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(raw)), nil
	}
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (a *app) dashboard() {
	ctx, cancel := a.ctx()
	defer cancel()

	stats, err := a.client.GetStats(ctx)
	if err != nil {
		fmt.Printf("Failed to load stats: %v\n", friendly(err))
		return
	}
	fmt.Printf("Total Users:       %d\n", stats.TotalUsers)
	fmt.Printf("Total Receipts:    %d\n", stats.TotalReceipts)
	fmt.Printf("Total Revenue:     %.2f\n", stats.TotalRevenue)
	fmt.Printf("Pending Payments:  %d\n", stats.PendingPayments)
}

func (a *app) users(query string) {
	ctx, cancel := a.ctx()
	defer cancel()

	if err := a.presenter.Load(ctx); err != nil {
		fmt.Printf("Failed to load users: %v\n", friendly(err))
		return
	}
	a.presenter.Render(os.Stdout, query)
}

// lifecycleAction resolves the listing row number and runs one lifecycle
// mutation. The presenter reloads the listing itself after success; all we
// print here is the outcome.
func (a *app) lifecycleAction(args []string, action func(context.Context, string) error) {
	if len(args) != 1 {
		fmt.Println("Usage: <command> <user number from the last listing>")
		return
	}

	users := a.presenter.Users()
	var idx int
	if _, err := fmt.Sscanf(args[0], "%d", &idx); err != nil || idx < 1 || idx > len(users) {
		fmt.Println("No such user number. Run \"users\" first.")
		return
	}
	user := users[idx-1]

	ctx, cancel := a.ctx()
	defer cancel()

	err := action(ctx, user.ID.Hex())
	switch {
	case err == nil:
		fmt.Println("Done.")
	case errors.Is(err, lifecycle.ErrAborted):
		fmt.Println("Cancelled. Nothing was changed.")
	case errors.Is(err, lifecycle.ErrAlreadySuspended):
		fmt.Printf("%s is already suspended.\n", user.Name)
	case errors.Is(err, lifecycle.ErrNotSuspended):
		fmt.Printf("%s is not suspended.\n", user.Name)
	default:
		fmt.Printf("Action failed: %v\n", friendly(err))
	}
}

func (a *app) receipts() {
	ctx, cancel := a.ctx()
	defer cancel()

	receipts, err := a.client.GetReceipts(ctx)
	if err != nil {
		fmt.Printf("Failed to load receipts: %v\n", friendly(err))
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tUSER\tMERCHANT\tAMOUNT\tTAX")
	for _, r := range receipts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%.2f\n",
			r.Date.Format("2006-01-02"), r.UserName, r.Merchant, r.Amount, r.TaxAmount)
	}
	tw.Flush()
}

func (a *app) payments() {
	ctx, cancel := a.ctx()
	defer cancel()

	payments, err := a.client.GetPayments(ctx)
	if err != nil {
		fmt.Printf("Failed to load payments: %v\n", friendly(err))
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MONTH\tUSER\tTAX DUE\tPAID\tSTATUS")
	for _, p := range payments {
		status := "pending"
		if p.IsPaid {
			status = "paid"
		}
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%s\n", p.Month, p.UserName, p.TotalTax, p.PaidAmount, status)
	}
	tw.Flush()
}

func (a *app) profile() {
	fmt.Print("New name (empty to keep): ")
	name, err := a.in.ReadString('\n')
	if err != nil {
		return
	}
	fmt.Print("New password (empty to keep): ")
	password, err := readPassword()
	if err != nil {
		return
	}
	name = strings.TrimSpace(name)
	if name == "" && password == "" {
		fmt.Println("Nothing to update.")
		return
	}

	ctx, cancel := a.ctx()
	defer cancel()

	if err := a.client.UpdateProfile(ctx, name, password); err != nil {
		fmt.Printf("Failed to update profile: %v\n", friendly(err))
		return
	}
	fmt.Println("Profile updated.")
}

func (a *app) createAdmin() {
	fmt.Print("Name: ")
	name, err := a.in.ReadString('\n')
	if err != nil {
		return
	}
	fmt.Print("Email: ")
	email, err := a.in.ReadString('\n')
	if err != nil {
		return
	}
	fmt.Print("Password: ")
	password, err := readPassword()
	if err != nil {
		return
	}

	ctx, cancel := a.ctx()
	defer cancel()

	err = a.client.CreateAdmin(ctx, strings.TrimSpace(name), strings.TrimSpace(email), password)
	if err != nil {
		fmt.Printf("Failed to create admin: %v\n", friendly(err))
		return
	}
	fmt.Println("Admin account created.")
}

func (a *app) chat(message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		fmt.Println("Usage: chat <message>")
		return
	}

	ctx, cancel := a.ctx()
	defer cancel()

	reply, err := a.client.Chat(ctx, message, a.chatHistory)
	if err != nil {
		fmt.Printf("Assistant unavailable: %v\n", friendly(err))
		return
	}

	a.chatHistory = append(a.chatHistory,
		models.ChatTurn{Role: "user", Content: message},
		reply,
	)
	fmt.Println(reply.Content)
}

func (a *app) logout() {
	ctx, cancel := a.ctx()
	defer cancel()

	if err := a.client.Logout(ctx); err != nil {
		fmt.Printf("Logout failed: %v\n", friendly(err))
		return
	}
	a.authFailed = false
	fmt.Println("Signed out.")
}

// friendly strips client wrapping so operators see the server's message.
func friendly(err error) string {
	var apiErr *adminclient.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, adminclient.ErrUnauthorized) {
		return "session is invalid or expired"
	}
	return err.Error()
}
