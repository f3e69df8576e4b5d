// Package main provides admin account and dashboard utilities for Lifewood.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"lifewood/internal/apiclient"
	"lifewood/internal/cache"
	"lifewood/internal/config"
	"lifewood/internal/dashboard"
	"lifewood/internal/database"
	"lifewood/internal/notifications"
	"lifewood/internal/repository"
	"lifewood/internal/service"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin create <email> <password> [first] [last]  - Create an admin account")
	fmt.Println("  go run ./cmd/admin passwd <email> <password>                 - Change an admin password")
	fmt.Println("  go run ./cmd/admin list-admins                               - List all admins")
	fmt.Println("  go run ./cmd/admin login <email> <password>                  - Sign in against the API and store the token")
	fmt.Println("  go run ./cmd/admin logout                                    - Revoke and forget the stored token")
	fmt.Println("  go run ./cmd/admin export [-o file]                          - Export applicants as CSV")
	fmt.Println("  go run ./cmd/admin watch                                     - Follow applicant events (needs Redis)")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	command, args := os.Args[1], os.Args[2:]

	switch command {
	case "create":
		if len(args) < 2 {
			usage()
			os.Exit(1)
		}
		first, last := optional(args, 2), optional(args, 3)
		admin, err := adminService(cfg).CreateAdmin(ctx, args[0], args[1], first, last)
		if err != nil {
			log.Fatalf("Failed to create admin: %v", err)
		}
		fmt.Printf("✅ Created admin %s (ID: %d)\n", admin.Email, admin.ID)

	case "passwd":
		if len(args) < 2 {
			usage()
			os.Exit(1)
		}
		if err := adminService(cfg).ChangePassword(ctx, args[0], args[1]); err != nil {
			log.Fatalf("Failed to change password: %v", err)
		}
		fmt.Printf("✅ Password changed for %s\n", args[0])

	case "list-admins":
		listAdmins(ctx, adminService(cfg))

	case "login":
		if len(args) < 2 {
			usage()
			os.Exit(1)
		}
		auth, err := apiClient(cfg).SignIn(ctx, args[0], args[1])
		if err != nil {
			log.Fatalf("Login failed: %v", err)
		}
		email := args[0]
		if auth.Admin != nil {
			email = auth.Admin.Email
		}
		fmt.Printf("✅ Signed in as %s\n", email)

	case "logout":
		if err := apiClient(cfg).Logout(ctx); err != nil {
			fmt.Printf("⚠️  Server logout failed, local token removed anyway: %v\n", err)
			return
		}
		fmt.Println("✅ Signed out")

	case "export":
		fs := flag.NewFlagSet("export", flag.ExitOnError)
		out := fs.String("o", "", "output file (default stdout)")
		_ = fs.Parse(args)
		export(ctx, cfg, *out)

	case "watch":
		watch(cfg)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		usage()
		os.Exit(1)
	}
}

func optional(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func adminService(cfg *config.Config) *service.AdminService {
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	return service.NewAdminService(
		repository.NewAdminRepository(db),
		cfg.JWTSecret,
		time.Duration(cfg.JWTTTLHours)*time.Hour,
		service.RedisRevoker{},
	)
}

func tokenStore() apiclient.TokenStore {
	path, err := apiclient.DefaultTokenPath()
	if err != nil {
		log.Fatalf("Failed to locate token file: %v", err)
	}
	return apiclient.NewFileTokenStore(path)
}

func apiClient(cfg *config.Config) *apiclient.Client {
	return apiclient.New(cfg.APIBaseURL, tokenStore())
}

func listAdmins(ctx context.Context, svc *service.AdminService) {
	admins, err := svc.ListAdmins(ctx)
	if err != nil {
		log.Fatalf("Failed to fetch admins: %v", err)
	}
	if len(admins) == 0 {
		fmt.Println("No admins found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tNAME")
	for _, a := range admins {
		fmt.Fprintf(w, "%d\t%s\t%s %s\n", a.ID, a.Email, a.FirstName, a.LastName)
	}
	_ = w.Flush()
}

// export uses the stored token, like the dashboard's export button.
func export(ctx context.Context, cfg *config.Config, out string) {
	tokens := tokenStore()
	dash := dashboard.New(apiclient.New(cfg.APIBaseURL, tokens), tokens, nil)
	if err := dash.Load(ctx); err != nil {
		log.Fatalf("Failed to load applicants: %v", err)
	}

	w := os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			log.Fatalf("Failed to create %s: %v", out, err)
		}
		defer f.Close()
		w = f
	}
	if err := dash.ExportCSV(w); err != nil {
		log.Fatalf("Export failed: %v", err)
	}
	if out != "" {
		fmt.Printf("✅ Exported %d applicants to %s\n", len(dash.Applicants()), out)
	}
}

// watch prints applicant events until interrupted.
func watch(cfg *config.Config) {
	rdb := cache.InitRedis(cfg.RedisURL)
	if rdb == nil {
		log.Fatalf("Redis is not reachable at %q; events are only published through Redis", cfg.RedisURL)
	}
	defer cache.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := notifications.NewNotifier(rdb).Subscribe(ctx, func(ev notifications.Event) {
		fmt.Printf("%s  %-26s #%d  %s  %s\n",
			ev.At.Local().Format(time.DateTime), ev.Type, ev.ApplicantID, ev.Status, ev.Project)
	})
	if err != nil {
		log.Fatalf("Failed to subscribe: %v", err)
	}
	fmt.Println("👀 Watching applicant events, Ctrl+C to stop")
	<-ctx.Done()
}
